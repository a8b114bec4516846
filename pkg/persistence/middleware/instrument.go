package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/fitpulse/fitpulse/pkg/ports"
)

type instrumentMiddleware struct {
	next    ports.KeyValueStore
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewInstrumentMiddleware records metrics and debug logs for every store operation.
// A missing key is not counted as an error.
func NewInstrumentMiddleware(metrics *observability.Metrics, logger *slog.Logger) Middleware {
	return func(next ports.KeyValueStore) ports.KeyValueStore {
		return &instrumentMiddleware{next: next, metrics: metrics, logger: logger}
	}
}

func (m *instrumentMiddleware) observe(ctx context.Context, op, key string, start time.Time, err error) {
	took := time.Since(start)
	if errors.Is(err, domain.ErrKeyNotFound) {
		err = nil
	}
	m.metrics.ObserveStoreOp(op, took, err)
	if m.logger == nil {
		return
	}
	if err != nil {
		m.logger.WarnContext(ctx, "Store operation failed", "op", op, "key", key, "took", took, "err", err)
		return
	}
	m.logger.DebugContext(ctx, "Store operation", "op", op, "key", key, "took", took)
}

func (m *instrumentMiddleware) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := m.next.Get(ctx, key)
	m.observe(ctx, "get", key, start, err)
	return val, err
}

func (m *instrumentMiddleware) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := m.next.Set(ctx, key, value)
	m.observe(ctx, "set", key, start, err)
	return err
}

func (m *instrumentMiddleware) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	m.observe(ctx, "delete", key, start, err)
	return err
}

func (m *instrumentMiddleware) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := m.next.Keys(ctx)
	m.observe(ctx, "keys", "", start, err)
	return keys, err
}
