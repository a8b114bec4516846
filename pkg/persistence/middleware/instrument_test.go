package middleware_test

import (
	"context"
	"testing"

	"github.com/fitpulse/fitpulse/pkg/adapters/memory"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/fitpulse/fitpulse/pkg/persistence/middleware"
	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentMiddleware_Contract(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	ports.RunKeyValueStoreContract(t, middleware.NewInstrumentMiddleware(metrics, nil)(memory.NewStore()))
}

func TestInstrumentMiddleware_CountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store := middleware.Chain(memory.NewStore(), middleware.NewInstrumentMiddleware(metrics, nil))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session", "v"))
	_, _ = store.Get(ctx, "session")
	_, _ = store.Get(ctx, "missing")
	require.NoError(t, store.Delete(ctx, "session"))

	// set/ok, get/ok (the missing key counts as ok), delete/ok
	count, err := testutil.GatherAndCount(reg, "fitpulse_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestChain_Order(t *testing.T) {
	key := make([]byte, 32)
	underlying := memory.NewStore()
	store := middleware.Chain(underlying,
		middleware.NewInstrumentMiddleware(nil, nil),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "secret"))

	raw, err := underlying.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", raw)

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "secret", val)
}
