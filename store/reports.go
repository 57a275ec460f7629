package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MaxDailyHours caps the total logged hours per user per work date.
const MaxDailyHours = 24

// InsertReport persists a new report and returns its id.
func (s *Store) InsertReport(ctx context.Context, r *Report) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reports (created_at, user_id, reg_name, location, location_grp,
		                     activity, activity_grp, work_date, hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		time.Now(), r.UserID, r.RegName, r.Location, r.LocationGrp,
		r.Activity, r.ActivityGrp, r.WorkDate, r.Hours,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return id, nil
}

// GetReport returns a report by id or ErrNotFound.
func (s *Store) GetReport(ctx context.Context, id int64) (*Report, error) {
	var r Report
	err := s.db.GetContext(ctx, &r, `
		SELECT id, created_at, user_id, reg_name, location, location_grp,
		       activity, activity_grp, work_date, hours
		FROM reports WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &r, nil
}

// SumHoursForDate returns the user's total hours on a work date,
// optionally excluding one report (used when editing that report).
func (s *Store) SumHoursForDate(ctx context.Context, userID string, workDate time.Time, excludeID int64) (int, error) {
	var total int
	var err error
	if excludeID > 0 {
		err = s.db.GetContext(ctx, &total, `
			SELECT COALESCE(SUM(hours), 0) FROM reports
			WHERE user_id = $1 AND work_date = $2 AND id <> $3`,
			userID, workDate, excludeID)
	} else {
		err = s.db.GetContext(ctx, &total, `
			SELECT COALESCE(SUM(hours), 0) FROM reports
			WHERE user_id = $1 AND work_date = $2`,
			userID, workDate)
	}
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}
	return total, nil
}

// RecentReports lists the user's reports created within the last 24 hours,
// newest first. These are the only records the edit flow may touch.
func (s *Store) RecentReports(ctx context.Context, userID string) ([]Report, error) {
	cutoff := time.Now().Add(-24 * time.Hour)
	var reports []Report
	err := s.db.SelectContext(ctx, &reports, `
		SELECT id, created_at, user_id, reg_name, location, location_grp,
		       activity, activity_grp, work_date, hours
		FROM reports
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`,
		userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent reports: %w", err)
	}
	return reports, nil
}

// DeleteReport removes a report owned by the user; ErrNotFound otherwise.
func (s *Store) DeleteReport(ctx context.Context, id int64, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReportHours changes the hours of a report owned by the user.
func (s *Store) UpdateReportHours(ctx context.Context, id int64, userID string, hours int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reports SET hours = $1 WHERE id = $2 AND user_id = $3`,
		hours, id, userID)
	if err != nil {
		return fmt.Errorf("update report hours: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report hours: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// StatsTodayAll aggregates everyone's hours for the given work date.
func (s *Store) StatsTodayAll(ctx context.Context, workDate time.Time) ([]TodayStat, error) {
	var stats []TodayStat
	err := s.db.SelectContext(ctx, &stats, `
		SELECT r.user_id, u.full_name, r.location, r.activity, SUM(r.hours) AS hours
		FROM reports r
		LEFT JOIN users u ON u.user_id = r.user_id
		WHERE r.work_date = $1
		GROUP BY r.user_id, u.full_name, r.location, r.activity
		ORDER BY r.user_id, r.location, r.activity`,
		workDate)
	if err != nil {
		return nil, fmt.Errorf("stats today: %w", err)
	}
	return stats, nil
}

// StatsRangeForUser aggregates one user's hours between two dates inclusive.
func (s *Store) StatsRangeForUser(ctx context.Context, userID string, start, end time.Time) ([]UserRangeStat, error) {
	var stats []UserRangeStat
	err := s.db.SelectContext(ctx, &stats, `
		SELECT work_date, location, activity, SUM(hours) AS hours
		FROM reports
		WHERE user_id = $1 AND work_date BETWEEN $2 AND $3
		GROUP BY work_date, location, activity
		ORDER BY work_date DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("stats range user: %w", err)
	}
	return stats, nil
}

// StatsRangeAll aggregates all users' hours between two dates inclusive.
func (s *Store) StatsRangeAll(ctx context.Context, start, end time.Time) ([]RangeStat, error) {
	var stats []RangeStat
	err := s.db.SelectContext(ctx, &stats, `
		SELECT u.full_name, r.work_date, r.location, r.activity, SUM(r.hours) AS hours
		FROM reports r
		LEFT JOIN users u ON u.user_id = r.user_id
		WHERE r.work_date BETWEEN $1 AND $2
		GROUP BY u.full_name, r.work_date, r.location, r.activity
		ORDER BY r.work_date DESC, u.full_name`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("stats range all: %w", err)
	}
	return stats, nil
}
