package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UnexportedReports lists reports without an export record, ordered for
// stable workbook row placement.
func (s *Store) UnexportedReports(ctx context.Context) ([]UnexportedReport, error) {
	var reports []UnexportedReport
	err := s.db.SelectContext(ctx, &reports, `
		SELECT r.id, r.work_date, r.reg_name, r.location, r.activity, r.hours
		FROM reports r
		LEFT JOIN sheet_exports se ON r.id = se.report_id
		WHERE se.report_id IS NULL
		ORDER BY r.work_date, r.created_at`)
	if err != nil {
		return nil, fmt.Errorf("unexported reports: %w", err)
	}
	return reports, nil
}

// MarkExported inserts export records for one workbook batch in a single
// transaction, so a batch is either fully recorded or not at all.
func (s *Store) MarkExported(ctx context.Context, records []ExportRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sheet_exports (report_id, workbook, sheet_name, row_number, exported_at, last_updated)
			VALUES ($1, $2, $3, $4, $5, $5)`,
			rec.ReportID, rec.Workbook, rec.SheetName, rec.RowNumber, now); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("mark exported: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// GetMonthlySheet returns the export destination for a month or ErrNotFound.
func (s *Store) GetMonthlySheet(ctx context.Context, year, month int) (*MonthlySheet, error) {
	var ms MonthlySheet
	err := s.db.GetContext(ctx, &ms, `
		SELECT id, year, month, workbook, COALESCE(sheet_url, '') AS sheet_url, created_at
		FROM monthly_sheets WHERE year = $1 AND month = $2`,
		year, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get monthly sheet: %w", err)
	}
	return &ms, nil
}

// RecordMonthlySheet registers a freshly created workbook for a month.
// A concurrent creation of the same month returns ErrDuplicate.
func (s *Store) RecordMonthlySheet(ctx context.Context, year, month int, workbook, sheetURL string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monthly_sheets (year, month, workbook, sheet_url, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		year, month, workbook, sheetURL, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("record monthly sheet: %w", err)
	}
	return nil
}
