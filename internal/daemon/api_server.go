package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"showscout/internal/api"
	"showscout/internal/config"
	"showscout/internal/discovery"
	"showscout/internal/logging"
	"showscout/internal/progress"
	"showscout/internal/quota"
	"showscout/internal/services"
	"showscout/internal/store"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/discover", srv.handleDiscover)
	mux.HandleFunc("/api/discover/batch", srv.handleDiscoverBatch)
	mux.HandleFunc("/api/profile", srv.handleProfile)
	mux.HandleFunc("/api/shows", srv.handleShows)
	mux.HandleFunc("/api/quota", srv.handleQuota)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Discovery runs stream NDJSON for minutes; no write timeout.
		IdleTimeout: 60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// authenticate resolves the bearer token to a user and their active
// profile. Handlers that do not need the profile pass wantProfile=false
// and tolerate a nil result.
func (s *apiServer) authenticate(w http.ResponseWriter, r *http.Request, wantProfile bool) (*store.User, *store.Profile, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		s.writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

	user, err := s.daemon.store.UserByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, nil, false
	}

	if !wantProfile {
		return user, nil, true
	}
	profile, err := s.daemon.store.ActiveProfile(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusConflict, "no active profile")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, nil, false
	}
	return user, profile, true
}

// handleDiscover validates the request, consumes quota, then streams
// NDJSON progress events for the run. All failure modes are rejected
// before the first byte of the stream; once the stream opens, the run
// proceeds to natural termination even if the caller disconnects.
func (s *apiServer) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, profile, ok := s.authenticate(w, r, true)
	if !ok {
		return
	}

	var request api.DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	runRequest, ok := s.admitRun(r.Context(), w, user, profile, request)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	reporter := progress.NewNDJSONReporter(w)

	// The run outlives the connection: a dropped caller must not abort
	// work that already consumed quota.
	runCtx := context.WithoutCancel(r.Context())
	if _, err := s.daemon.engine.Run(runCtx, runRequest, reporter); err != nil {
		s.logger.Error("discovery run failed", logging.Error(err))
		reporter.Publish(progress.Event{Type: progress.EventError, Err: err.Error()})
	}
}

func (s *apiServer) handleDiscoverBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, profile, ok := s.authenticate(w, r, true)
	if !ok {
		return
	}

	var request api.BatchDiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(request.Runs) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one run is required")
		return
	}

	runCtx := context.WithoutCancel(r.Context())
	results := make([]api.BatchRunResult, 0, len(request.Runs))
	for _, runReq := range request.Runs {
		result := api.BatchRunResult{Topics: runReq.Topics}

		runRequest, admitErr := s.buildRun(runCtx, user, profile, runReq)
		if admitErr != nil {
			result.Error = admitErr.Error()
			results = append(results, result)
			continue
		}

		summary, err := s.daemon.engine.Run(runCtx, runRequest, progress.Nop{})
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.Discovered = summary.Discovered
		result.Target = summary.Target
		result.QueriesRun = summary.QueriesRun
		result.Shows = api.FromShows(summary.Shows)
		results = append(results, result)
	}
	s.writeJSON(w, http.StatusOK, api.BatchDiscoverResponse{Results: results})
}

// admitRun performs the pre-stream checks for an interactive run and
// writes the rejection itself on failure.
func (s *apiServer) admitRun(ctx context.Context, w http.ResponseWriter, user *store.User, profile *store.Profile, request api.DiscoverRequest) (discovery.RunRequest, bool) {
	runRequest, err := s.buildRun(ctx, user, profile, request)
	if err != nil {
		var exceeded *quota.ExceededError
		if errors.As(err, &exceeded) {
			resetAt := exceeded.ResetAt
			s.writeJSON(w, http.StatusTooManyRequests, api.ErrorResponse{Error: err.Error(), ResetAt: &resetAt})
		} else {
			s.writeError(w, services.HTTPStatus(err), err.Error())
		}
		return discovery.RunRequest{}, false
	}
	return runRequest, true
}

// buildRun validates a request and consumes one unit of quota.
func (s *apiServer) buildRun(ctx context.Context, user *store.User, profile *store.Profile, request api.DiscoverRequest) (discovery.RunRequest, error) {
	var zero discovery.RunRequest
	topics := make([]string, 0, len(request.Topics))
	for _, topic := range request.Topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	if len(topics) == 0 {
		return zero, services.Wrap(services.ErrValidation, "api-server", "discover", "at least one topic is required", nil)
	}

	// Contact-dependent modes need the extraction service; fail before any
	// quota is consumed or the stream opens.
	if (request.RequireEmail || request.DeepResearch) && !s.daemon.llmClient.Configured() {
		return zero, services.Wrap(services.ErrConfiguration, "api-server", "discover", "contact extraction requires llm credentials", nil)
	}

	if err := s.daemon.gatekeeper.Admit(ctx, user.ID); err != nil {
		return zero, err
	}

	return discovery.RunRequest{
		Profile:        profile,
		Topics:         topics,
		RequireEmail:   request.RequireEmail,
		DeepResearch:   request.DeepResearch,
		TargetOverride: request.TargetCount,
	}, nil
}

func (s *apiServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		_, profile, ok := s.authenticate(w, r, true)
		if !ok {
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromProfile(profile))
	case http.MethodPut:
		_, profile, ok := s.authenticate(w, r, true)
		if !ok {
			return
		}
		var update api.Profile
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if update.MinAudience < 0 || update.TargetCount < 0 {
			s.writeError(w, http.StatusBadRequest, "audience floor and target count must not be negative")
			return
		}
		if name := strings.TrimSpace(update.Name); name != "" {
			profile.Name = name
		}
		profile.MinAudience = update.MinAudience
		profile.GuestOnly = update.GuestOnly
		if update.TargetCount > 0 {
			profile.TargetCount = update.TargetCount
		}
		if err := s.daemon.store.UpdateProfile(r.Context(), profile); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromProfile(profile))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleShows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	_, profile, ok := s.authenticate(w, r, true)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := store.ShowFilter{Platform: strings.TrimSpace(query.Get("platform"))}
	if value := strings.TrimSpace(query.Get("has_email")); value != "" {
		hasEmail := strings.EqualFold(value, "true") || value == "1"
		filter.HasEmail = &hasEmail
	}

	shows, err := s.daemon.store.ListShows(r.Context(), profile.ID, filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response := api.ShowListResponse{Shows: api.FromShows(shows)}
	if strings.EqualFold(query.Get("stats"), "true") {
		stats, err := s.daemon.store.Stats(r.Context(), profile.ID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.Stats = api.FromStats(stats)
	}
	s.writeJSON(w, http.StatusOK, response)
}

func (s *apiServer) handleQuota(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	user, _, ok := s.authenticate(w, r, false)
	if !ok {
		return
	}
	state, resetAt, err := s.daemon.gatekeeper.Status(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.Quota{
		Used:    state.Used,
		Limit:   state.MonthlyLimit,
		ResetAt: resetAt,
	})
}

// handleStatus is the one unauthenticated endpoint so it can double as a
// liveness probe.
func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
