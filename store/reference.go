package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Reference groups: activities are split into machine and manual work,
// locations into fields and the warehouse.
const (
	GroupTech      = "техника"
	GroupHand      = "ручная"
	GroupFields    = "поля"
	GroupWarehouse = "склад"
)

// ListActivities returns activity names for a group ordered by name.
func (s *Store) ListActivities(ctx context.Context, grp string) ([]string, error) {
	return s.listNames(ctx, "activities", grp)
}

// ListActivitiesWithID returns activities for a group with their ids.
func (s *Store) ListActivitiesWithID(ctx context.Context, grp string) ([]RefItem, error) {
	return s.listItems(ctx, "activities", grp)
}

// GetActivity resolves an activity by id; returns ErrNotFound for missing rows.
func (s *Store) GetActivity(ctx context.Context, id int64) (*RefItem, error) {
	return s.getItem(ctx, "activities", id)
}

// AddActivity inserts a new activity; duplicate names return ErrDuplicate.
func (s *Store) AddActivity(ctx context.Context, grp, name string) error {
	return s.addItem(ctx, "activities", grp, name)
}

// RemoveActivity deletes an activity by exact name; missing names return ErrNotFound.
func (s *Store) RemoveActivity(ctx context.Context, name string) error {
	return s.removeItem(ctx, "activities", name)
}

// ListLocations returns location names for a group ordered by name.
func (s *Store) ListLocations(ctx context.Context, grp string) ([]string, error) {
	return s.listNames(ctx, "locations", grp)
}

// ListLocationsWithID returns locations for a group with their ids.
func (s *Store) ListLocationsWithID(ctx context.Context, grp string) ([]RefItem, error) {
	return s.listItems(ctx, "locations", grp)
}

// GetLocation resolves a location by id; returns ErrNotFound for missing rows.
func (s *Store) GetLocation(ctx context.Context, id int64) (*RefItem, error) {
	return s.getItem(ctx, "locations", id)
}

// AddLocation inserts a new location; duplicate names return ErrDuplicate.
func (s *Store) AddLocation(ctx context.Context, grp, name string) error {
	return s.addItem(ctx, "locations", grp, name)
}

// RemoveLocation deletes a location by exact name; missing names return ErrNotFound.
func (s *Store) RemoveLocation(ctx context.Context, name string) error {
	return s.removeItem(ctx, "locations", name)
}

// table is always one of the two fixed reference table names, never user input.

func (s *Store) listNames(ctx context.Context, table, grp string) ([]string, error) {
	var names []string
	query := fmt.Sprintf(`SELECT name FROM %s WHERE grp = $1 ORDER BY name`, table)
	if err := s.db.SelectContext(ctx, &names, query, grp); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return names, nil
}

func (s *Store) listItems(ctx context.Context, table, grp string) ([]RefItem, error) {
	var items []RefItem
	query := fmt.Sprintf(`SELECT id, name, grp FROM %s WHERE grp = $1 ORDER BY name`, table)
	if err := s.db.SelectContext(ctx, &items, query, grp); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return items, nil
}

func (s *Store) getItem(ctx context.Context, table string, id int64) (*RefItem, error) {
	var item RefItem
	query := fmt.Sprintf(`SELECT id, name, grp FROM %s WHERE id = $1`, table)
	if err := s.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return &item, nil
}

func (s *Store) addItem(ctx context.Context, table, grp, name string) error {
	query := fmt.Sprintf(`INSERT INTO %s (name, grp) VALUES ($1, $2)`, table)
	if _, err := s.db.ExecContext(ctx, query, name, grp); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("add to %s: %w", table, err)
	}
	return nil
}

func (s *Store) removeItem(ctx context.Context, table, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, table)
	res, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
