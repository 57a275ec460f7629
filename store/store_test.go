package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T) (sqlmock.Sqlmock, *Store) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return mock, New(db)
}

func TestUpsertUser(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("79991234567", "Иванов Иван", "Europe/Moscow", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertUser(context.Background(), "79991234567", "Иванов Иван", "Europe/Moscow")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserNotFound(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`SELECT user_id`).
		WithArgs("79990000000").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "tz", "created_at"}))

	_, err := s.GetUser(context.Background(), "79990000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddActivityDuplicate(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`INSERT INTO activities`).
		WithArgs("прополка", GroupHand).
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.AddActivity(context.Background(), GroupHand, "прополка")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRemoveLocationNotFound(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`DELETE FROM locations`).
		WithArgs("Неизвестное").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RemoveLocation(context.Background(), "Неизвестное")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActivitiesWithID(t *testing.T) {
	mock, s := setupMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "name", "grp"}).
		AddRow(1, "пахота", GroupTech).
		AddRow(2, "сев", GroupTech)
	mock.ExpectQuery(`SELECT id, name, grp FROM activities`).
		WithArgs(GroupTech).
		WillReturnRows(rows)

	items, err := s.ListActivitiesWithID(context.Background(), GroupTech)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "пахота", items[0].Name)
	assert.Equal(t, int64(2), items[1].ID)
}

func TestInsertReportReturnsID(t *testing.T) {
	mock, s := setupMockStore(t)

	workDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(sqlmock.AnyArg(), "79991234567", "Иванов Иван", "Северное", GroupFields,
			"пахота", GroupTech, workDate, 8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := s.InsertReport(context.Background(), &Report{
		UserID:      "79991234567",
		RegName:     "Иванов Иван",
		Location:    "Северное",
		LocationGrp: GroupFields,
		Activity:    "пахота",
		ActivityGrp: GroupTech,
		WorkDate:    workDate,
		Hours:       8,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestSumHoursForDate(t *testing.T) {
	mock, s := setupMockStore(t)
	workDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(hours\), 0\) FROM reports`).
		WithArgs("79991234567", workDate).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(16))

	total, err := s.SumHoursForDate(context.Background(), "79991234567", workDate, 0)
	require.NoError(t, err)
	assert.Equal(t, 16, total)
}

func TestSumHoursForDateExcludesReport(t *testing.T) {
	mock, s := setupMockStore(t)
	workDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(hours\), 0\) FROM reports`).
		WithArgs("79991234567", workDate, int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8))

	total, err := s.SumHoursForDate(context.Background(), "79991234567", workDate, 42)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestDeleteReportScopedToOwner(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`DELETE FROM reports`).
		WithArgs(int64(42), "79990000000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteReport(context.Background(), 42, "79990000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReportHours(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectExec(`UPDATE reports SET hours`).
		WithArgs(6, int64(42), "79991234567").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateReportHours(context.Background(), 42, "79991234567", 6)
	assert.NoError(t, err)
}

func TestUnexportedReports(t *testing.T) {
	mock, s := setupMockStore(t)

	workDate := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "work_date", "reg_name", "location", "activity", "hours"}).
		AddRow(1, workDate, "Иванов Иван", "Северное", "пахота", 8)
	mock.ExpectQuery(`SELECT r.id, r.work_date`).WillReturnRows(rows)

	reports, err := s.UnexportedReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Северное", reports[0].Location)
}

func TestMarkExportedCommitsBatch(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sheet_exports`).
		WithArgs(int64(1), "exports/WorkLog_2026_08.xlsx", "2026-08", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO sheet_exports`).
		WithArgs(int64(2), "exports/WorkLog_2026_08.xlsx", "2026-08", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.MarkExported(context.Background(), []ExportRecord{
		{ReportID: 1, Workbook: "exports/WorkLog_2026_08.xlsx", SheetName: "2026-08", RowNumber: 2},
		{ReportID: 2, Workbook: "exports/WorkLog_2026_08.xlsx", SheetName: "2026-08", RowNumber: 3},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkExportedRollsBackOnDuplicate(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sheet_exports`).
		WithArgs(int64(1), "wb", "2026-08", 2, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := s.MarkExported(context.Background(), []ExportRecord{
		{ReportID: 1, Workbook: "wb", SheetName: "2026-08", RowNumber: 2},
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetMonthlySheetNotFound(t *testing.T) {
	mock, s := setupMockStore(t)

	mock.ExpectQuery(`SELECT id, year, month`).
		WithArgs(2026, 9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "year", "month", "workbook", "sheet_url", "created_at"}))

	_, err := s.GetMonthlySheet(context.Background(), 2026, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsTodayAll(t *testing.T) {
	mock, s := setupMockStore(t)
	workDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	name := "Иванов Иван"
	rows := sqlmock.NewRows([]string{"user_id", "full_name", "location", "activity", "hours"}).
		AddRow("79991234567", &name, "Северное", "пахота", 8).
		AddRow("79997654321", nil, "Склад", "монтаж", 4)
	// Ordering by user_id keeps each user's rows contiguous even when
	// full names collide or are NULL.
	mock.ExpectQuery(`(?s)SELECT r\.user_id, u\.full_name.*ORDER BY r\.user_id, r\.location, r\.activity`).
		WithArgs(workDate).
		WillReturnRows(rows)

	stats, err := s.StatsTodayAll(context.Background(), workDate)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.NotNil(t, stats[0].FullName)
	assert.Equal(t, "Иванов Иван", *stats[0].FullName)
	assert.Nil(t, stats[1].FullName)
}
