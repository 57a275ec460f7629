package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertUser creates or updates the user's name and timezone.
func (s *Store) UpsertUser(ctx context.Context, userID, fullName, tz string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, full_name, tz, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET full_name = EXCLUDED.full_name, tz = EXCLUDED.tz`,
		userID, fullName, tz, time.Now())
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser returns the user row or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `
		SELECT user_id, COALESCE(full_name, '') AS full_name, COALESCE(tz, '') AS tz, created_at
		FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
