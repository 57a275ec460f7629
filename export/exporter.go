package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/logger"
	"github.com/terra-agro/terrabot/store"
)

// Exporter moves accumulated reports into per-month workbooks and
// records what was written, so each report is exported at most once.
type Exporter struct {
	store  *store.Store
	writer *Writer
	cfg    coreconfig.ExportConfig
	loc    *time.Location
}

// New builds an Exporter writing under cfg.Dir.
func New(s *store.Store, cfg coreconfig.ExportConfig, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{
		store:  s,
		writer: NewWriter(cfg.Dir, cfg.Prefix),
		cfg:    cfg,
		loc:    loc,
	}
}

type monthKey struct {
	Year  int
	Month int
}

// ExportNow exports all unexported reports grouped by the month of
// their work date. Batches already committed stay exported even when a
// later batch fails.
func (e *Exporter) ExportNow(ctx context.Context) (int, string, error) {
	reports, err := e.store.UnexportedReports(ctx)
	if err != nil {
		return 0, "", err
	}
	if len(reports) == 0 {
		return 0, "Нет новых отчетов для экспорта", nil
	}

	batches := make(map[monthKey][]store.UnexportedReport)
	var order []monthKey
	for _, r := range reports {
		k := monthKey{Year: r.WorkDate.Year(), Month: int(r.WorkDate.Month())}
		if _, seen := batches[k]; !seen {
			order = append(order, k)
		}
		batches[k] = append(batches[k], r)
	}

	total := 0
	for _, k := range order {
		n, err := e.exportBatch(ctx, k, batches[k])
		total += n
		if err != nil {
			if total > 0 {
				return total, fmt.Sprintf("Экспортировано записей: %d", total), err
			}
			return 0, "", err
		}
	}
	return total, fmt.Sprintf("Экспортировано записей: %d", total), nil
}

func (e *Exporter) exportBatch(ctx context.Context, k monthKey, batch []store.UnexportedReport) (int, error) {
	workbook, err := e.ensureMonthlySheet(ctx, k.Year, k.Month)
	if err != nil {
		return 0, err
	}

	rows := make([][]any, 0, len(batch))
	for _, r := range batch {
		rows = append(rows, []any{
			r.WorkDate.Format("2006-01-02"),
			r.RegName,
			r.Location,
			r.Activity,
			r.Hours,
		})
	}
	firstRow, err := e.writer.Append(workbook, rows)
	if err != nil {
		return 0, err
	}

	records := make([]store.ExportRecord, 0, len(batch))
	for i, r := range batch {
		records = append(records, store.ExportRecord{
			ReportID:  r.ID,
			Workbook:  workbook,
			SheetName: SheetName,
			RowNumber: firstRow + i,
		})
	}
	if err := e.store.MarkExported(ctx, records); err != nil {
		return 0, err
	}

	logger.Info(ctx, "export", "export.batch",
		slog.String("workbook", workbook),
		slog.Int("exported", len(batch)),
	)
	return len(batch), nil
}

// ensureMonthlySheet returns the workbook name for a month, creating
// the file and its registry row on first use. A concurrent creation
// losing the registry race falls back to the winner's row.
func (e *Exporter) ensureMonthlySheet(ctx context.Context, year, month int) (string, error) {
	if ms, err := e.store.GetMonthlySheet(ctx, year, month); err == nil {
		return ms.Workbook, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	name := e.writer.Name(year, month)
	path, err := e.writer.Ensure(name)
	if err != nil {
		return "", err
	}
	if err := e.store.RecordMonthlySheet(ctx, year, month, name, path); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			ms, err := e.store.GetMonthlySheet(ctx, year, month)
			if err != nil {
				return "", err
			}
			return ms.Workbook, nil
		}
		return "", err
	}
	logger.Info(ctx, "export", "export.workbook.created",
		slog.String("workbook", name),
	)
	return name, nil
}

// EnsureNextMonth pre-creates the next month's workbook when the
// current month is within the configured precreate window.
func (e *Exporter) EnsureNextMonth(ctx context.Context) (bool, string, error) {
	now := time.Now().In(e.loc)
	monthEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, e.loc).AddDate(0, 1, 0)
	daysLeft := int(monthEnd.Sub(now).Hours() / 24)
	if daysLeft > e.cfg.PrecreateDays {
		return false, "", nil
	}

	next := monthEnd
	if _, err := e.store.GetMonthlySheet(ctx, next.Year(), int(next.Month())); err == nil {
		return false, "", nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, "", err
	}

	name, err := e.ensureMonthlySheet(ctx, next.Year(), int(next.Month()))
	if err != nil {
		return false, "", err
	}
	return true, fmt.Sprintf("Создана таблица на следующий месяц: %s", name), nil
}
