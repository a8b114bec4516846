package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fitpulse/fitpulse/internal/logging"
	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/fitpulse/fitpulse/pkg/ports"
)

// DefaultKey is the storage key of the session record.
const DefaultKey = "session"

// DefaultLockTTL bounds how long a crashed writer can hold the distributed lock.
const DefaultLockTTL = 30 * time.Second

// Snapshot is the observable state of a Store at one instant.
type Snapshot struct {
	State domain.LoadState
	// Value is nil when no value is held.
	Value *string
}

// Store is a single piece of named, durable state with an asynchronous initial load.
// It is the sole writer of its key. Safe for concurrent use.
type Store struct {
	kv  ports.KeyValueStore
	key string

	once  sync.Once
	ready chan struct{}

	mu      sync.RWMutex
	state   domain.LoadState
	value   *string
	loadErr error
	written bool // a write resolved before the initial load did

	writeMu sync.Mutex // serializes durable writes with mirror updates

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the Store.
type Option func(*Store)

// WithLocker guards writes with a distributed lock, for processes sharing one backend.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Store) {
		s.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics records the signed-in gauge as the held value changes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates a Store for key backed by kv. The store starts in the Loading state;
// call Initialize to begin the read.
func NewStore(kv ports.KeyValueStore, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		kv:      kv,
		key:     key,
		ready:   make(chan struct{}),
		state:   domain.Loading,
		subs:    make(map[int]chan Snapshot),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key owned by the store.
func (s *Store) Key() string {
	return s.key
}

// Initialize starts the asynchronous read of the key. Only the first call has any
// effect; the read is never repeated for this instance. Cancelling ctx after the
// call does not abort the read.
func (s *Store) Initialize(ctx context.Context) {
	s.once.Do(func() {
		go s.load(context.WithoutCancel(ctx))
	})
}

func (s *Store) load(ctx context.Context) {
	val, err := s.kv.Get(ctx, s.key)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.written:
		// A newer write already defines the value.
	case err == nil:
		s.value = &val
	case errors.Is(err, domain.ErrKeyNotFound):
		s.value = nil
	default:
		// Unreadable storage is treated as "no value"; the cause stays available via LoadErr.
		s.value = nil
		s.loadErr = err
		s.logger.Warn("Failed to load persisted value, treating as absent",
			"key", s.key,
			"err", err,
		)
	}

	s.state = domain.Ready
	close(s.ready)
	s.metrics.SetSignedIn(s.value != nil)
	s.publishLocked()
}

// Wait blocks until the initial load has resolved or ctx is done.
// It calls Initialize if nobody has yet.
func (s *Store) Wait(ctx context.Context) error {
	s.Initialize(ctx)
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready returns a channel that is closed once the initial load has resolved.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns the current load state and value.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state}
	if s.value != nil {
		v := *s.value
		snap.Value = &v
	}
	return snap
}

// State returns the current load state.
func (s *Store) State() domain.LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsLoading reports whether the initial load is still outstanding.
func (s *Store) IsLoading() bool {
	return s.State() == domain.Loading
}

// Value returns the held value and whether one is held.
func (s *Store) Value() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.value == nil {
		return "", false
	}
	return *s.value, true
}

// LoadErr returns the storage error hit by the initial load, if any.
// A non-nil error means the store reports "no value" because storage was unreadable,
// not because the key was absent.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Write replaces the value (non-nil) or clears it (nil). The durable write happens
// first; if it fails the error is returned and the in-memory value is left unchanged.
// Once Write returns nil, every later read in this process observes the new value.
func (s *Store) Write(ctx context.Context, value *string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.key, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", s.key,
					"err", err,
				)
			}
		}()
	}

	var err error
	if value == nil {
		err = s.kv.Delete(ctx, s.key)
	} else {
		err = s.kv.Set(ctx, s.key, *value)
	}
	if err != nil {
		return fmt.Errorf("failed to persist %q: %w", s.key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		s.value = nil
	} else {
		v := *value
		s.value = &v
	}
	if s.state == domain.Loading {
		s.written = true
	}
	s.metrics.SetSignedIn(s.value != nil)
	s.publishLocked()

	return nil
}

// Set is Write with a non-nil value.
func (s *Store) Set(ctx context.Context, value string) error {
	return s.Write(ctx, &value)
}

// Clear is Write(nil). Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	return s.Write(ctx, nil)
}

// Subscribe returns a channel receiving a Snapshot after every change (load
// completion, write). Slow readers only see the latest snapshot. The returned
// function cancels the subscription and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// publishLocked fans the current snapshot out to subscribers. Callers hold s.mu,
// which keeps deliveries in the same order as the changes.
func (s *Store) publishLocked() {
	snap := s.snapshotLocked()

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		// Drop a stale pending snapshot so the newest one always fits.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
