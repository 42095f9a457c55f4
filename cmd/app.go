package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/etnz/coinwatch"
	"github.com/etnz/coinwatch/coingecko"
	"github.com/etnz/coinwatch/config"
	"github.com/etnz/coinwatch/slot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// env is everything a subcommand needs, opened from the configuration.
type env struct {
	cfg     *config.Config
	log     *logrus.Logger
	reg     *prometheus.Registry
	app     *coinwatch.App
	closers []io.Closer
}

// loadConfig loads the configuration, and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *stateFile != "" {
		cfg.State.Kind = "file"
		cfg.State.Path = *stateFile
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if *verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	return log
}

// openSlot opens the configured state slot. The closer is nil when there is
// nothing to close.
func openSlot(cfg *config.Config) (coinwatch.Slot, io.Closer, error) {
	switch cfg.State.Kind {
	case "memory":
		return slot.NewMemory(cfg.State.Name), nil, nil
	case "file":
		return slot.NewFile(cfg.State.Path), nil, nil
	case "redis":
		s, err := slot.NewRedis(cfg.State.RedisURL, cfg.State.Name)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "sqlite":
		s, err := slot.OpenSQLite(cfg.State.SQLitePath, cfg.State.Name)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown state kind %q", cfg.State.Kind)
}

func newGateway(cfg *config.Config, log logrus.FieldLogger, fresh bool) *coingecko.Client {
	ttl := cfg.Gateway.CacheTTL
	if fresh {
		ttl = 0
	}
	return coingecko.New(
		coingecko.WithBaseURL(cfg.Gateway.BaseURL),
		coingecko.WithVsCurrency(cfg.Gateway.VsCurrency),
		coingecko.WithAPIKey(cfg.Gateway.APIKey),
		coingecko.WithHTTPClient(&http.Client{Timeout: cfg.Gateway.Timeout}),
		coingecko.WithRate(cfg.Gateway.RequestsPerMinute),
		coingecko.WithListingCache(cfg.Gateway.CacheDir, ttl),
		coingecko.WithLogger(log),
	)
}

// openEnv restores the app from the configured slot. fresh bypasses the
// catalog cache.
func openEnv(ctx context.Context, fresh bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)
	s, closer, err := openSlot(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot open state: %w", err)
	}
	e := &env{cfg: cfg, log: log, reg: prometheus.NewRegistry()}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}
	log.WithField("slot", s.Name()).Debug("opening state")
	e.app = coinwatch.Open(ctx, newGateway(cfg, log, fresh), s,
		coinwatch.WithLogger(log),
		coinwatch.WithMetrics(coinwatch.NewMetrics(e.reg)),
	)
	return e, nil
}

// Close waits for the state to be saved, and releases the slot.
func (e *env) Close() {
	e.app.Close()
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.log.WithError(err).Warn("cannot close state")
		}
	}
}

func (e *env) currency() string { return e.cfg.Gateway.VsCurrency }
