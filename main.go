package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pinhal/hal"
	"pinhal/logging"
)

// Entry point for the continuity collector
func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the collector configuration file")
	flag.Parse()

	cfgMgr := NewConfigManager(*configPath)
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg := cfgMgr.Get()

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		log.Fatalf("initialisation error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger, os.Stdout)
	stop()
	_ = logger.DisableFileLogging()
	if err != nil {
		log.Fatalf("collector exited: %v", err)
	}
}

// newLogger builds the process logger from cfg.  Console output is human
// readable; the optional log file receives JSON lines.
func newLogger(cfg Config, console io.Writer) (*logging.Logger, error) {
	logger := logging.New(zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339})
	if cfg.LogLevel != "" {
		lv, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(lv)
	}
	if cfg.LogFile != "" {
		if err := logger.EnableFileLogging(cfg.LogFile); err != nil {
			return nil, err
		}
	}
	return logger, nil
}

// newBackend constructs the GPIO backend named in cfg.
func newBackend(cfg Config, logger *logging.Logger) (hal.GPIO, error) {
	t, err := hal.ParseBackendType(cfg.Backend)
	if err != nil {
		return nil, err
	}
	opts := []hal.Option{hal.WithLogger(logger)}
	if cfg.Seed != 0 {
		opts = append(opts, hal.WithSeed(cfg.Seed))
	}
	if cfg.Drift != nil {
		opts = append(opts, hal.WithDrift(*cfg.Drift))
	}
	logger.Info(collectorTag, "using %s gpio backend", t)
	return hal.NewGPIO(t, opts...), nil
}

// run sets up the collector, scans until done or cancelled, and releases
// every pin and report file on the way out.  Cancellation is a normal exit.
func run(ctx context.Context, cfg Config, logger *logging.Logger, stdout io.Writer) (err error) {
	g, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}
	reporters, closeReports, err := initReporters(cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeReports()) }()

	c := NewCollector(g, cfg.Nets, logger)
	if err := c.Setup(); err != nil {
		return errors.Join(err, c.Teardown())
	}
	defer func() { err = errors.Join(err, c.Teardown()) }()

	if cfg.Pattern != nil {
		if v, ok := g.(*hal.Virtual); ok {
			v.SimulateContinuityPattern(hal.MaxPins, *cfg.Pattern)
		} else {
			logger.Warn(collectorTag, "pattern is only staged on the virtual backend; ignoring")
		}
	}

	err = c.Run(ctx, cfg.Interval(), cfg.Scans, reporters)
	if errors.Is(err, context.Canceled) {
		logger.Info(collectorTag, "interrupted")
		return nil
	}
	return err
}
