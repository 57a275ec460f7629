package export

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"
	"github.com/terra-agro/terrabot/store"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	os.Exit(m.Run())
}

func newTestExporter(t *testing.T, precreateDays int) (*Exporter, sqlmock.Sqlmock, string) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dir := t.TempDir()
	e := New(store.New(sqlx.NewDb(mockDB, "sqlmock")), coreconfig.ExportConfig{
		Enabled:       true,
		Dir:           dir,
		Prefix:        "TERRA",
		PrecreateDays: precreateDays,
	}, time.UTC)
	return e, mock, dir
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriterCreatesHeader(t *testing.T) {
	w := NewWriter(t.TempDir(), "TERRA")

	name := w.Name(2026, 8)
	assert.Equal(t, "TERRA_WA_2026_08", name)

	path, err := w.Ensure(name)
	require.NoError(t, err)

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, headerRow, rows[0])
}

func TestWriterEnsureIsIdempotent(t *testing.T) {
	w := NewWriter(t.TempDir(), "TERRA")
	name := w.Name(2026, 8)

	first, err := w.Ensure(name)
	require.NoError(t, err)
	_, err = w.Append(name, [][]any{{"2026-08-30", "Иванов Иван", "Северное", "пахота", 8}})
	require.NoError(t, err)

	second, err := w.Ensure(name)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, readRows(t, second), 2, "re-ensuring must not truncate data")
}

func TestWriterAppendReturnsRowNumbers(t *testing.T) {
	w := NewWriter(t.TempDir(), "TERRA")
	name := w.Name(2026, 8)

	first, err := w.Append(name, [][]any{
		{"2026-08-29", "Иванов Иван", "Северное", "пахота", 8},
		{"2026-08-30", "Петров Петр", "Фазенда", "сев", 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	next, err := w.Append(name, [][]any{
		{"2026-08-31", "Иванов Иван", "Склад", "ремонт", 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	rows := readRows(t, w.Path(name))
	require.Len(t, rows, 4)
	assert.Equal(t, "Петров Петр", rows[2][1])
	assert.Equal(t, "ремонт", rows[3][3])
}

func TestExportNowNothingToExport(t *testing.T) {
	e, mock, dir := newTestExporter(t, 3)

	mock.ExpectQuery(`SELECT r.id, r.work_date`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "work_date", "reg_name", "location", "activity", "hours"}))

	count, msg, err := e.ExportNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, "Нет новых отчетов для экспорта", msg)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "empty export must not create workbooks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportNowWritesBatchAndRecords(t *testing.T) {
	e, mock, _ := newTestExporter(t, 3)
	workDate := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT r.id, r.work_date`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "work_date", "reg_name", "location", "activity", "hours"}).
			AddRow(11, workDate, "Иванов Иван", "Северное", "пахота", 8).
			AddRow(12, workDate, "Петров Петр", "Фазенда", "сев", 6))
	mock.ExpectQuery(`SELECT id, year, month`).
		WithArgs(2026, 8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "year", "month", "workbook", "sheet_url", "created_at"}))
	mock.ExpectExec(`INSERT INTO monthly_sheets`).
		WithArgs(2026, 8, "TERRA_WA_2026_08", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sheet_exports`).
		WithArgs(int64(11), "TERRA_WA_2026_08", SheetName, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO sheet_exports`).
		WithArgs(int64(12), "TERRA_WA_2026_08", SheetName, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	count, msg, err := e.ExportNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Экспортировано записей: 2", msg)

	rows := readRows(t, e.writer.Path("TERRA_WA_2026_08"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2026-08-30", "Иванов Иван", "Северное", "пахота", "8"}, rows[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureNextMonthCreatesWorkbook(t *testing.T) {
	e, mock, _ := newTestExporter(t, 40)
	next := time.Date(time.Now().UTC().Year(), time.Now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	name := e.writer.Name(next.Year(), int(next.Month()))

	emptySheet := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "year", "month", "workbook", "sheet_url", "created_at"})
	}
	mock.ExpectQuery(`SELECT id, year, month`).
		WithArgs(next.Year(), int(next.Month())).
		WillReturnRows(emptySheet())
	mock.ExpectQuery(`SELECT id, year, month`).
		WithArgs(next.Year(), int(next.Month())).
		WillReturnRows(emptySheet())
	mock.ExpectExec(`INSERT INTO monthly_sheets`).
		WithArgs(next.Year(), int(next.Month()), name, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, msg, err := e.EnsureNextMonth(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, msg, name)
	assert.FileExists(t, e.writer.Path(name))
}

func TestEnsureNextMonthSkipsExisting(t *testing.T) {
	e, mock, dir := newTestExporter(t, 40)
	next := time.Date(time.Now().UTC().Year(), time.Now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT id, year, month`).
		WithArgs(next.Year(), int(next.Month())).
		WillReturnRows(sqlmock.NewRows([]string{"id", "year", "month", "workbook", "sheet_url", "created_at"}).
			AddRow(1, next.Year(), int(next.Month()), "TERRA_WA_X", "", time.Now()))

	created, _, err := e.EnsureNextMonth(context.Background())
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
