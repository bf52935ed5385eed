// Package testsupport provides shared fixtures for store-backed tests.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"showscout/internal/config"
	"showscout/internal/store"
)

// NewConfig returns a validated config rooted in a per-test temp directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	return &cfg
}

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedUser creates a user with an active profile for tests.
func SeedUser(t testing.TB, st *store.Store, token string, monthlyLimit int) (*store.User, *store.Profile) {
	t.Helper()

	user, err := st.CreateUser(context.Background(), token, monthlyLimit)
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	profile := &store.Profile{
		UserID:      user.ID,
		Name:        "default",
		TargetCount: 10,
		Active:      true,
	}
	if err := st.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("store.CreateProfile: %v", err)
	}
	return user, profile
}
