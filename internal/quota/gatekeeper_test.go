package quota_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"showscout/internal/logging"
	"showscout/internal/quota"
	"showscout/internal/testsupport"
)

func TestAdmitRejectsAfterLimitWithFutureReset(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	user, _ := testsupport.SeedUser(t, st, "token", 3)
	ctx := context.Background()

	now := time.Now().UTC()
	gate := quota.New(st, logging.NewNop(), quota.WithClock(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		if err := gate.Admit(ctx, user.ID); err != nil {
			t.Fatalf("admission %d: %v", i+1, err)
		}
	}

	err := gate.Admit(ctx, user.ID)
	var exceeded *quota.ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected ExceededError, got %v", err)
	}
	if !exceeded.ResetAt.After(now) {
		t.Fatalf("reset time %s should be strictly in the future", exceeded.ResetAt)
	}
	if exceeded.Used != 3 || exceeded.Limit != 3 {
		t.Fatalf("unexpected counters: %+v", exceeded)
	}
}

func TestAdmitResetsLazilyAfterWindow(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	user, _ := testsupport.SeedUser(t, st, "token", 1)
	ctx := context.Background()

	now := time.Now().UTC()
	gate := quota.New(st, logging.NewNop(), quota.WithClock(func() time.Time { return now }))

	if err := gate.Admit(ctx, user.ID); err != nil {
		t.Fatalf("first admission: %v", err)
	}
	if err := gate.Admit(ctx, user.ID); err == nil {
		t.Fatal("second admission should be rejected")
	}

	// Advance past the reset window; the next gated request resets lazily.
	now = now.Add(quota.ResetWindow + time.Minute)
	if err := gate.Admit(ctx, user.ID); err != nil {
		t.Fatalf("admission after window should succeed: %v", err)
	}

	state, resetAt, err := gate.Status(ctx, user.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Used != 1 {
		t.Fatalf("expected counter restarted at 1, got %d", state.Used)
	}
	if !resetAt.After(now) {
		t.Fatalf("next reset %s should be after the new period start", resetAt)
	}
}

func TestStatusDoesNotConsumeQuota(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	user, _ := testsupport.SeedUser(t, st, "token", 2)
	ctx := context.Background()

	gate := quota.New(st, logging.NewNop())
	for i := 0; i < 5; i++ {
		if _, _, err := gate.Status(ctx, user.ID); err != nil {
			t.Fatalf("Status: %v", err)
		}
	}
	state, _, err := gate.Status(ctx, user.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Used != 0 {
		t.Fatalf("status checks must not consume quota, used=%d", state.Used)
	}
}
