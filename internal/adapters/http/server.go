package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fitpulse/fitpulse/internal/logging"
	"github.com/fitpulse/fitpulse/pkg/auth"
	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/fitpulse/fitpulse/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionStatus is the public view of the session. It never carries the token.
type SessionStatus struct {
	Loading  bool   `json:"loading"`
	SignedIn bool   `json:"signed_in"`
	UserID   *int64 `json:"user_id,omitempty"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the auth session over a small local JSON API.
type Server struct {
	Session  *auth.Session
	Gatherer prometheus.Gatherer
	Version  string
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer mounts GET /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for sess.
func NewHandler(sess *auth.Session, opts ...Option) http.Handler {
	s := &Server{
		Session: sess,
		Version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/session", s.GetSession)
	r.Post("/session", s.SignIn)
	r.Delete("/session", s.SignOut)
	r.Get("/session/events", s.SubscribeEvents)
	if s.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// StatusOf builds the public view of a store snapshot.
func StatusOf(snap session.Snapshot) SessionStatus {
	st := SessionStatus{Loading: snap.State == domain.Loading}
	if snap.Value == nil {
		return st
	}
	user, err := domain.DecodeUser(*snap.Value)
	if err != nil {
		return st
	}
	st.SignedIn = true
	st.UserID = &user.ID
	return st
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "fitpulse",
		"version": s.Version,
		"backend": s.Session.BaseURL(),
	})
}

// GetSession handles GET /session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusOf(s.Session.Store().Snapshot()))
}

// SignIn handles POST /session.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var body signInRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		s.logger.Warn("SignIn: Invalid request body", "err", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := s.Session.SignIn(r.Context(), body.Email, body.Password); err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			s.writeError(w, http.StatusUnauthorized, auth.MsgSignInFailed)
			return
		}
		s.logger.Error("SignIn failed", "err", err)
		if errors.Is(err, domain.ErrStorage) {
			s.writeError(w, http.StatusInternalServerError, auth.MsgSessionUnavailable)
			return
		}
		s.writeError(w, http.StatusBadGateway, "authentication service unavailable")
		return
	}
	s.GetSession(w, r)
}

// SignOut handles DELETE /session.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.SignOut(r.Context()); err != nil {
		s.logger.Error("SignOut failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, auth.MsgSignOutFailed)
		return
	}
	s.GetSession(w, r)
}

// SubscribeEvents handles GET /session/events (SSE). The current status is sent
// first, then one event per change.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ch, cancel := s.Session.Store().Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(snap session.Snapshot) bool {
		data, err := json.Marshal(StatusOf(snap))
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	s.logger.Debug("SSE client connected")
	if !send(s.Session.Store().Snapshot()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case snap, ok := <-ch:
			if !ok || !send(snap) {
				return
			}
		}
	}
}
