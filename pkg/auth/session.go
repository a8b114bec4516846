package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fitpulse/fitpulse/internal/logging"
	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/fitpulse/fitpulse/pkg/session"
	"golang.org/x/oauth2"
)

// User-facing messages sent through the Notifier.
const (
	MsgSignInFailed       = "Sign in failed. Please check your credentials and try again."
	MsgSignOutFailed      = "Sign out failed. Please try again."
	MsgRegisterSucceeded  = "Registration successful!"
	MsgRegisterFailed     = "Registration failed. Please try again."
	MsgSessionUnavailable = "Could not save your session on this device."
)

// Session is the auth session layer: it signs in against the backend and keeps
// the resulting user in a session.Store.
type Session struct {
	store    *session.Store
	client   *Client
	notifier ports.Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier sets where failure (and registration success) feedback goes.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics records sign-in outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession creates the auth layer over store and client.
func NewSession(store *session.Store, client *Client, opts ...Option) *Session {
	s := &Session{
		store:    store,
		client:   client,
		notifier: ports.NoopNotifier,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying session store.
func (s *Session) Store() *session.Store {
	return s.store
}

// SignIn issues one login request. On success the user is encoded and written to
// the store. On any failure the store is left untouched, the notifier fires once
// and the error is returned. No retry is attempted.
func (s *Session) SignIn(ctx context.Context, identifier, secret string) error {
	user, err := s.client.Login(ctx, identifier, secret)
	s.metrics.ObserveSignIn(err)
	if err != nil {
		s.logger.InfoContext(ctx, "Sign in rejected", "err", err)
		s.notify(ctx, ports.NotifyFailure, MsgSignInFailed, err)
		return err
	}

	encoded, err := domain.EncodeUser(*user)
	if err != nil {
		s.notify(ctx, ports.NotifyFailure, MsgSignInFailed, err)
		return err
	}

	if err := s.store.Set(ctx, encoded); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist session", "err", err)
		s.notify(ctx, ports.NotifyFailure, MsgSessionUnavailable, err)
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "Signed in", "user_id", user.ID)
	return nil
}

// SignInAsync runs SignIn in the background for fire-and-forget callers.
// The returned channel yields the result once and is then closed.
func (s *Session) SignInAsync(ctx context.Context, identifier, secret string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.SignIn(ctx, identifier, secret)
	}()
	return done
}

// SignOut clears the stored session. No network call is made, and signing out
// while signed out succeeds.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to clear session", "err", err)
		s.notify(ctx, ports.NotifyFailure, MsgSignOutFailed, err)
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	s.logger.InfoContext(ctx, "Signed out")
	return nil
}

// CurrentUser decodes the held session. It returns nil when no session is held
// or the stored payload is malformed.
func (s *Session) CurrentUser() *domain.User {
	val, ok := s.store.Value()
	if !ok {
		return nil
	}
	user, err := domain.DecodeUser(val)
	if err != nil {
		s.logger.Warn("Ignoring malformed session", "key", s.store.Key(), "err", err)
		return nil
	}
	return user
}

// BaseURL returns the backend the session signs in against.
func (s *Session) BaseURL() string {
	return s.client.BaseURL()
}

// IsLoading mirrors the store's load state.
func (s *Session) IsLoading() bool {
	return s.store.IsLoading()
}

// Register creates an account. It does not sign in.
func (s *Session) Register(ctx context.Context, email, password string) error {
	if err := s.client.Register(ctx, email, password); err != nil {
		s.logger.InfoContext(ctx, "Registration rejected", "err", err)
		s.notify(ctx, ports.NotifyFailure, MsgRegisterFailed, err)
		return err
	}
	s.notify(ctx, ports.NotifySuccess, MsgRegisterSucceeded, nil)
	return nil
}

// HTTPClient returns a client that sends "Authorization: Bearer <token>" for the
// current user on every request, over the auth client's transport.
func (s *Session) HTTPClient(ctx context.Context) (*http.Client, error) {
	user := s.CurrentUser()
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	base := context.WithValue(ctx, oauth2.HTTPClient, s.client.HTTPClient())
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: user.Token,
		TokenType:   "Bearer",
	})
	return oauth2.NewClient(base, src), nil
}

func (s *Session) notify(ctx context.Context, kind ports.NotificationKind, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.notifier.Notify(ctx, ports.Notification{Kind: kind, Message: msg, Err: err})
}
