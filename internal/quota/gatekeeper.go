// Package quota enforces the per-user monthly run limit.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"showscout/internal/logging"
	"showscout/internal/store"
)

// ResetWindow is how long a usage period lasts before counters reset.
const ResetWindow = 30 * 24 * time.Hour

// ExceededError reports a rejected admission with the machine-readable time
// at which the counter resets.
type ExceededError struct {
	Used    int
	Limit   int
	ResetAt time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("monthly quota exhausted (%d/%d), resets %s", e.Used, e.Limit, e.ResetAt.UTC().Format(time.RFC3339))
}

// Gatekeeper gates run admission against persisted quota counters. The reset
// rule is evaluated lazily on each gated request; there is no background
// scheduler.
type Gatekeeper struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes the gatekeeper.
type Option func(*Gatekeeper)

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(g *Gatekeeper) {
		if now != nil {
			g.now = now
		}
	}
}

// New constructs a gatekeeper over the given store.
func New(st *store.Store, logger *slog.Logger, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		store:  st,
		logger: logging.WithComponent(logger, "quota"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Admit checks and consumes one unit of quota for the user. Each admitted
// invocation counts as exactly one request regardless of how many candidates
// the run later discovers. A rejection returns *ExceededError.
func (g *Gatekeeper) Admit(ctx context.Context, userID string) error {
	now := g.now().UTC()
	state, err := g.resetIfDue(ctx, userID, now)
	if err != nil {
		return err
	}

	admitted, err := g.store.TryIncrementQuota(ctx, userID)
	if err != nil {
		return err
	}
	if !admitted {
		g.logger.Info("run rejected",
			logging.String("user", userID),
			logging.Int("used", state.Used),
			logging.Int("limit", state.MonthlyLimit),
		)
		return &ExceededError{
			Used:    state.Used,
			Limit:   state.MonthlyLimit,
			ResetAt: state.LastReset.Add(ResetWindow),
		}
	}
	return nil
}

// Status returns the user's current counters and next reset time, applying a
// lazy reset first so the report never shows a stale period.
func (g *Gatekeeper) Status(ctx context.Context, userID string) (*store.QuotaState, time.Time, error) {
	state, err := g.resetIfDue(ctx, userID, g.now().UTC())
	if err != nil {
		return nil, time.Time{}, err
	}
	return state, state.LastReset.Add(ResetWindow), nil
}

func (g *Gatekeeper) resetIfDue(ctx context.Context, userID string, now time.Time) (*store.QuotaState, error) {
	state, err := g.store.Quota(ctx, userID)
	if err != nil {
		return nil, err
	}
	if now.Sub(state.LastReset) < ResetWindow {
		return state, nil
	}

	// The conditional update makes concurrent lazy resets apply once.
	cutoff := now.Add(-ResetWindow)
	if err := g.store.ResetQuota(ctx, userID, now, cutoff.Add(time.Nanosecond)); err != nil {
		return nil, err
	}
	g.logger.Debug("quota reset", logging.String("user", userID))
	return g.store.Quota(ctx, userID)
}
