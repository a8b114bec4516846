package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fitpulse/fitpulse"
	"github.com/fitpulse/fitpulse/internal/config"
	"github.com/fitpulse/fitpulse/internal/presentation/tui"
	"github.com/fitpulse/fitpulse/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Options holds the flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// App bundles the configured client and the ambient pieces a command needs.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Client   *fitpulse.Client
	Notifier *tui.Notifier
	Stdout   io.Writer
}

// NewApp loads configuration and builds the client stack it describes.
func NewApp(opts Options) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, err := createLogger(cfg, opts.Debug, opts.Stderr)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	notifier := tui.NewNotifier(opts.Stderr, opts.Debug)

	client, err := createClient(cfg, logger,
		fitpulse.WithMetrics(observability.NewMetrics(reg)),
		fitpulse.WithNotifier(notifier),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing client: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Client:   client,
		Notifier: notifier,
		Stdout:   opts.Stdout,
	}, nil
}

// Close releases the client's storage connections.
func (a *App) Close() error {
	return a.Client.Close()
}
