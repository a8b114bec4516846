package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitpulse/fitpulse"
	"github.com/fitpulse/fitpulse/internal/config"
	"github.com/fitpulse/fitpulse/internal/logging"
	"github.com/fitpulse/fitpulse/pkg/adapters/file"
	"github.com/fitpulse/fitpulse/pkg/adapters/memory"
	"github.com/fitpulse/fitpulse/pkg/adapters/redis"
	"github.com/fitpulse/fitpulse/pkg/auth"
	"github.com/fitpulse/fitpulse/pkg/persistence/middleware"
)

// encryptionInfo binds derived keys to this use so the same secret yields
// different keys elsewhere.
const encryptionInfo = "fitpulse session store v1"

// createLogger configures the application logger. Debug forces the debug level.
func createLogger(cfg *config.Config, debug bool, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithWriter(w, level, logging.Format(cfg.Log.Format)), nil
}

// createClient builds the fitpulse client described by cfg.
func createClient(cfg *config.Config, logger *slog.Logger, extra ...fitpulse.Option) (*fitpulse.Client, error) {
	opts, err := storageOptions(cfg)
	if err != nil {
		return nil, err
	}

	opts = append(opts,
		fitpulse.WithLogger(logger.With("backend", cfg.Storage.Backend)),
		fitpulse.WithSessionKey(cfg.Storage.SessionKey),
		fitpulse.WithClientOptions(
			auth.WithLoginPath(cfg.API.LoginPath),
			auth.WithRegisterPath(cfg.API.RegisterPath),
			auth.WithHTTPClient(newHTTPClient(cfg.API.Timeout)),
		),
	)
	opts = append(opts, extra...)

	return fitpulse.New(cfg.API.BaseURL, opts...)
}

// storageOptions selects the durable store and its middlewares.
func storageOptions(cfg *config.Config) ([]fitpulse.Option, error) {
	var opts []fitpulse.Option

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		opts = append(opts, fitpulse.WithKeyValueStore(memory.NewStore()))
	case config.BackendFile:
		opts = append(opts, fitpulse.WithKeyValueStore(file.New(cfg.Storage.Dir)))
	case config.BackendRedis:
		rc := cfg.Storage.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix),
			redis.WithTTL(rc.TTL),
			redis.WithoutTTL(cfg.Storage.SessionKey),
		)
		opts = append(opts,
			fitpulse.WithKeyValueStore(store),
			fitpulse.WithLocker(redis.NewLocker(store.Client(), rc.Prefix)),
			fitpulse.WithCloser(store),
		)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.EncryptionKey != "" {
		key, err := middleware.DeriveKey([]byte(cfg.Storage.EncryptionKey), encryptionInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to derive encryption key: %w", err)
		}
		opts = append(opts, fitpulse.WithMiddleware(
			middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
		))
	}

	return opts, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
