package fitpulse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fitpulse/fitpulse/internal/logging"
	"github.com/fitpulse/fitpulse/pkg/adapters/file"
	"github.com/fitpulse/fitpulse/pkg/auth"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/fitpulse/fitpulse/pkg/persistence/middleware"
	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/fitpulse/fitpulse/pkg/session"
)

// Version of the fitpulse client.
var Version = "0.1.0"

// DefaultBaseURL is the backend address used when New is given an empty one.
const DefaultBaseURL = "http://127.0.0.1:3000"

// Client is the high-level entry point: a session store bound to durable
// storage plus the auth layer on top of it.
type Client struct {
	session *auth.Session
	store   *session.Store
	kv      ports.KeyValueStore
	logger  *slog.Logger
	closers []io.Closer
}

type options struct {
	kv            ports.KeyValueStore
	middlewares   []middleware.Middleware
	sessionKey    string
	locker        ports.DistributedLocker
	notifier      ports.Notifier
	logger        *slog.Logger
	metrics       *observability.Metrics
	clientOptions []auth.ClientOption
	closers       []io.Closer
}

// Option configures a Client.
type Option func(*options)

// WithKeyValueStore injects the durable storage, bypassing the default file store.
func WithKeyValueStore(kv ports.KeyValueStore) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithMiddleware wraps the durable storage. The first middleware is the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}

// WithSessionKey overrides session.DefaultKey.
func WithSessionKey(key string) Option {
	return func(o *options) {
		o.sessionKey = key
	}
}

// WithLocker guards session writes across processes sharing the storage.
func WithLocker(l ports.DistributedLocker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithNotifier sets where user feedback goes.
func WithNotifier(n ports.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithLogger sets a structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records storage and sign-in metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClientOptions passes options through to auth.NewClient.
func WithClientOptions(opts ...auth.ClientOption) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithCloser registers a resource released by Client.Close, such as the
// connection behind an injected store.
func WithCloser(c io.Closer) Option {
	return func(o *options) {
		o.closers = append(o.closers, c)
	}
}

// New builds a Client for the backend at baseURL and starts loading the
// persisted session in the background.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := &options{
		sessionKey: session.DefaultKey,
		notifier:   ports.NoopNotifier,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if o.kv == nil {
		o.kv = file.New("")
	}

	kv := o.kv
	if o.metrics != nil {
		kv = middleware.Chain(kv, middleware.NewInstrumentMiddleware(o.metrics, o.logger))
	}
	kv = middleware.Chain(kv, o.middlewares...)

	clientOpts := append([]auth.ClientOption{auth.WithClientLogger(o.logger)}, o.clientOptions...)
	client, err := auth.NewClient(baseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	storeOpts := []session.Option{
		session.WithLogger(o.logger),
		session.WithMetrics(o.metrics),
	}
	if o.locker != nil {
		storeOpts = append(storeOpts, session.WithLocker(o.locker))
	}
	store := session.NewStore(kv, o.sessionKey, storeOpts...)
	store.Initialize(context.Background())

	sess := auth.NewSession(store, client,
		auth.WithNotifier(o.notifier),
		auth.WithLogger(o.logger),
		auth.WithMetrics(o.metrics),
	)

	return &Client{
		session: sess,
		store:   store,
		kv:      kv,
		logger:  o.logger,
		closers: o.closers,
	}, nil
}

// Session returns the auth session layer.
func (c *Client) Session() *auth.Session {
	return c.session
}

// Store returns the persistent session store.
func (c *Client) Store() *session.Store {
	return c.store
}

// KeyValueStore returns the durable storage as seen by the store, middlewares included.
func (c *Client) KeyValueStore() ports.KeyValueStore {
	return c.kv
}

// Wait blocks until the persisted session has been loaded.
func (c *Client) Wait(ctx context.Context) error {
	return c.store.Wait(ctx)
}

// SignIn signs in and persists the session.
func (c *Client) SignIn(ctx context.Context, identifier, secret string) error {
	return c.session.SignIn(ctx, identifier, secret)
}

// SignOut clears the persisted session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.session.SignOut(ctx)
}

// HTTPClient returns a client authenticated as the current user.
func (c *Client) HTTPClient(ctx context.Context) (*http.Client, error) {
	return c.session.HTTPClient(ctx)
}

// Close releases the resources registered with WithCloser.
func (c *Client) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
