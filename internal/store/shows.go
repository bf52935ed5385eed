package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const showColumns = "id, profile_id, source_id, platform, name, host, description, platform_url, feed_url, email, audience, score, avg_views, status, created_at"

// CreateShow persists a discovered show. ErrDuplicateShow is returned when the
// record collides with an existing one on any dedup key.
func (s *Store) CreateShow(ctx context.Context, show *Show) error {
	if show == nil {
		return errors.New("show is nil")
	}
	if show.ID == "" {
		show.ID = uuid.NewString()
	}
	if show.Status == "" {
		show.Status = StatusNew
	}
	show.CreatedAt = time.Now().UTC()

	var avgViews any
	if show.AvgViews != nil {
		avgViews = *show.AvgViews
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO shows (`+showColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		show.ID,
		show.ProfileID,
		show.SourceID,
		show.Platform,
		show.Name,
		nullableString(show.Host),
		nullableString(show.Description),
		nullableString(show.PlatformURL),
		nullableString(show.FeedURL),
		nullableString(show.Email),
		show.Audience,
		show.Score,
		avgViews,
		show.Status,
		show.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateShow, show.Name)
		}
		return fmt.Errorf("insert show: %w", err)
	}
	return nil
}

// FindShowByKeys checks the dedup keys in priority order: platform unique id,
// then platform URL, then feed URL. Name matching is deliberately excluded.
func (s *Store) FindShowByKeys(ctx context.Context, profileID, sourceID, platformURL, feedURL string) (*Show, error) {
	if sourceID != "" {
		if show, err := s.showByColumn(ctx, profileID, "source_id", sourceID); err != nil || show != nil {
			return show, err
		}
	}
	if platformURL != "" {
		if show, err := s.showByColumn(ctx, profileID, "platform_url", platformURL); err != nil || show != nil {
			return show, err
		}
	}
	if feedURL != "" {
		if show, err := s.showByColumn(ctx, profileID, "feed_url", feedURL); err != nil || show != nil {
			return show, err
		}
	}
	return nil, nil
}

func (s *Store) showByColumn(ctx context.Context, profileID, column, value string) (*Show, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+showColumns+` FROM shows WHERE profile_id = ? AND `+column+` = ? LIMIT 1`,
		profileID,
		value,
	)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find show by %s: %w", column, err)
	}
	return show, nil
}

// ShowFilter narrows ListShows results.
type ShowFilter struct {
	Platform string
	HasEmail *bool
}

// ListShows returns a profile's persisted shows, newest first.
func (s *Store) ListShows(ctx context.Context, profileID string, filter ShowFilter) ([]*Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows WHERE profile_id = ?`
	args := []any{profileID}
	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, filter.Platform)
	}
	if filter.HasEmail != nil {
		if *filter.HasEmail {
			query += ` AND email IS NOT NULL AND email != ''`
		} else {
			query += ` AND (email IS NULL OR email = '')`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var shows []*Show
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	return shows, rows.Err()
}

// UpdateShowStatus moves a show between lifecycle statuses.
func (s *Store) UpdateShowStatus(ctx context.Context, id string, status ShowStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE shows SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update show status: %w", err)
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

// Stats aggregates a profile's persisted shows by platform and contact presence.
func (s *Store) Stats(ctx context.Context, profileID string) (ShowStats, error) {
	stats := ShowStats{ByPlatform: make(map[string]int)}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT platform, COUNT(1) FROM shows WHERE profile_id = ? GROUP BY platform`,
		profileID,
	)
	if err != nil {
		return stats, fmt.Errorf("show stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return stats, err
		}
		stats.ByPlatform[platform] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM shows WHERE profile_id = ? AND email IS NOT NULL AND email != ''`,
		profileID,
	)
	if err := row.Scan(&stats.WithEmail); err != nil {
		return stats, fmt.Errorf("email stats: %w", err)
	}
	stats.WithoutEmail = stats.Total - stats.WithEmail
	return stats, nil
}

func scanShow(scanner interface{ Scan(dest ...any) error }) (*Show, error) {
	var (
		show        Show
		host        sql.NullString
		description sql.NullString
		platformURL sql.NullString
		feedURL     sql.NullString
		email       sql.NullString
		avgViews    sql.NullFloat64
		statusStr   string
		createdRaw  string
	)
	if err := scanner.Scan(
		&show.ID,
		&show.ProfileID,
		&show.SourceID,
		&show.Platform,
		&show.Name,
		&host,
		&description,
		&platformURL,
		&feedURL,
		&email,
		&show.Audience,
		&show.Score,
		&avgViews,
		&statusStr,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	show.Host = host.String
	show.Description = description.String
	show.PlatformURL = platformURL.String
	show.FeedURL = feedURL.String
	show.Email = email.String
	show.Status = ShowStatus(statusStr)
	if avgViews.Valid {
		v := avgViews.Float64
		show.AvgViews = &v
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		show.CreatedAt = created
	}
	return &show, nil
}
