package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateUser inserts a new user with an empty quota record.
func (s *Store) CreateUser(ctx context.Context, apiToken string, monthlyLimit int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.NewString(),
		APIToken:  apiToken,
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO users (id, api_token, created_at) VALUES (?, ?, ?)`,
		user.ID, user.APIToken, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO user_quota (user_id, used, monthly_limit, last_reset) VALUES (?, 0, ?, ?)`,
		user.ID, monthlyLimit, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert quota: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}
	return user, nil
}

// UserByToken resolves an API token to its owning user.
func (s *Store) UserByToken(ctx context.Context, token string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, api_token, created_at FROM users WHERE api_token = ?`, token)
	return scanUser(row)
}

// UserByID fetches a user by identifier.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, api_token, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user       User
		createdRaw string
	)
	if err := row.Scan(&user.ID, &user.APIToken, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		user.CreatedAt = created
	}
	return &user, nil
}

// CreateProfile inserts a discovery profile for a user.
func (s *Store) CreateProfile(ctx context.Context, profile *Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO profiles (id, user_id, name, min_audience, guest_only, target_count, active, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.UserID,
		profile.Name,
		profile.MinAudience,
		boolToInt(profile.GuestOnly),
		profile.TargetCount,
		boolToInt(profile.Active),
		profile.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// ActiveProfile returns the user's active discovery profile.
func (s *Store) ActiveProfile(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, name, min_audience, guest_only, target_count, active, created_at
         FROM profiles WHERE user_id = ? AND active = 1 ORDER BY created_at LIMIT 1`,
		userID,
	)
	return scanProfile(row)
}

// UpdateProfile persists changes to an existing profile's discovery settings.
func (s *Store) UpdateProfile(ctx context.Context, profile *Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE profiles SET name = ?, min_audience = ?, guest_only = ?, target_count = ?, active = ?
         WHERE id = ?`,
		profile.Name,
		profile.MinAudience,
		boolToInt(profile.GuestOnly),
		profile.TargetCount,
		boolToInt(profile.Active),
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
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

func scanProfile(row *sql.Row) (*Profile, error) {
	var (
		profile    Profile
		guestOnly  int
		active     int
		createdRaw string
	)
	if err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.MinAudience,
		&guestOnly,
		&profile.TargetCount,
		&active,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	profile.GuestOnly = guestOnly != 0
	profile.Active = active != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		profile.CreatedAt = created
	}
	return &profile, nil
}

// EnsureDefaultUser creates a user and active profile on first daemon start.
// The token comes from config; an empty token still gets a user so local
// (auth-disabled) setups have a quota record.
func (s *Store) EnsureDefaultUser(ctx context.Context, token string, monthlyLimit, targetCount int) (*User, *Profile, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		return nil, nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		user, err := s.firstUser(ctx)
		if err != nil {
			return nil, nil, err
		}
		profile, err := s.ActiveProfile(ctx, user.ID)
		if err != nil {
			return nil, nil, err
		}
		return user, profile, nil
	}

	user, err := s.CreateUser(ctx, token, monthlyLimit)
	if err != nil {
		return nil, nil, err
	}
	profile := &Profile{
		UserID:      user.ID,
		Name:        "default",
		TargetCount: targetCount,
		Active:      true,
	}
	if err := s.CreateProfile(ctx, profile); err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func (s *Store) firstUser(ctx context.Context) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, api_token, created_at FROM users ORDER BY created_at LIMIT 1`)
	return scanUser(row)
}
