package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Quota returns the current quota record for a user.
func (s *Store) Quota(ctx context.Context, userID string) (*QuotaState, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT user_id, used, monthly_limit, last_reset FROM user_quota WHERE user_id = ?`,
		userID,
	)
	var (
		state    QuotaState
		resetRaw string
	)
	if err := row.Scan(&state.UserID, &state.Used, &state.MonthlyLimit, &resetRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan quota: %w", err)
	}
	if reset, err := parseTimeString(resetRaw); err == nil {
		state.LastReset = reset
	}
	return &state, nil
}

// ResetQuota zeroes the usage counter and stamps a new reset time. The WHERE
// clause re-checks staleness so two concurrent lazy resets only apply once.
func (s *Store) ResetQuota(ctx context.Context, userID string, now, staleBefore time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE user_quota SET used = 0, last_reset = ? WHERE user_id = ? AND last_reset < ?`,
		now.UTC().Format(time.RFC3339Nano),
		userID,
		staleBefore.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("reset quota: %w", err)
	}
	return nil
}

// TryIncrementQuota performs the admission check-and-increment in one
// conditional update so overlapping requests cannot both slip under the limit.
func (s *Store) TryIncrementQuota(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE user_quota SET used = used + 1 WHERE user_id = ? AND used < monthly_limit`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("increment quota: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetQuotaLimit updates a user's monthly limit.
func (s *Store) SetQuotaLimit(ctx context.Context, userID string, limit int) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE user_quota SET monthly_limit = ? WHERE user_id = ?`,
		limit,
		userID,
	)
	if err != nil {
		return fmt.Errorf("set quota limit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
