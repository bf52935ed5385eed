package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"showscout/internal/api"
	"showscout/internal/config"
	"showscout/internal/discovery"
	"showscout/internal/logging"
	"showscout/internal/quota"
	"showscout/internal/services/llm"
	"showscout/internal/sources"
	"showscout/internal/store"
)

// Daemon owns the long-running showscout process: the store, the
// discovery engine, the quota gatekeeper, and the HTTP API, with
// flock-based locking to prevent multiple instances.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *store.Store
	engine     *discovery.Engine
	gatekeeper *quota.Gatekeeper
	llmClient  *llm.Client
	adapters   []sources.Adapter

	lockPath string
	lock     *flock.Flock

	apiSrv *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The LLM client
// may be unconfigured; contact-dependent run modes are then refused per
// request.
func New(cfg *config.Config, st *store.Store, engine *discovery.Engine, gatekeeper *quota.Gatekeeper, llmClient *llm.Client, adapters []sources.Adapter, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || engine == nil || gatekeeper == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, engine, gatekeeper, and logger")
	}

	lockPath := cfg.LockFilePath()
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		store:      st,
		engine:     engine,
		gatekeeper: gatekeeper,
		llmClient:  llmClient,
		adapters:   adapters,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = srv
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another showscout daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if d.apiSrv != nil {
		if err := d.apiSrv.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("showscout daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("showscout daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or empty before Start.
func (d *Daemon) APIAddr() string {
	if d.apiSrv == nil || d.apiSrv.listener == nil {
		return ""
	}
	return d.apiSrv.listener.Addr().String()
}

// Status reports daemon runtime information.
func (d *Daemon) Status() api.DaemonStatus {
	catalogs := make([]string, 0, len(d.adapters))
	for _, adapter := range d.adapters {
		catalogs = append(catalogs, adapter.Platform())
	}
	return api.DaemonStatus{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		DatabasePath:  d.cfg.DatabasePath(),
		LockFilePath:  d.lockPath,
		Catalogs:      catalogs,
		LLMConfigured: d.llmClient.Configured(),
	}
}
