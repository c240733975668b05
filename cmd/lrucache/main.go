package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lrucache/internal/cache"
	"lrucache/internal/config"
	"lrucache/internal/server"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}

	logger := newLogger(cfg)

	// Signal-aware context is the root of ownership for long-lived background work.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("exited with error")
		os.Exit(1)
	}
}

// loadConfig parses command-line flags, loads the config file if one is
// given and applies flags that were set explicitly on top of it.
func loadConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("lrucache", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to JSON config file")
		addr       = fs.String("addr", "", "listen address (overrides config)")
		capacity   = fs.Int("capacity", 0, "maximum number of entries (overrides config)")
	)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "capacity":
			cfg.Capacity = *capacity
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	c, err := cache.New(cache.Config{
		MaxEntries:      cfg.Capacity,
		CleanupInterval: time.Duration(cfg.CleanupInterval),
		Logger:          &logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		// Close is idempotent; safe to call in defer.
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("cache close")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(c, time.Duration(cfg.DefaultTTL), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Int("capacity", cfg.Capacity).
			Dur("cleanup_interval", time.Duration(cfg.CleanupInterval)).
			Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
