package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/user/insvframe/pkg/adapters/hevcdecoder"
	"github.com/user/insvframe/pkg/adapters/imagerenderer"
	"github.com/user/insvframe/pkg/adapters/logger"
	"github.com/user/insvframe/pkg/adapters/miniosource"
	"github.com/user/insvframe/pkg/adapters/osfilesystem"
	"github.com/user/insvframe/pkg/batch"
	"github.com/user/insvframe/pkg/config"
	"github.com/user/insvframe/pkg/extractor"
	"github.com/user/insvframe/pkg/metrics"
	"github.com/user/insvframe/pkg/ports"
)

// runEnv holds everything a command needs once flags are resolved.
type runEnv struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg       config.Config
	log       ports.Logger
	collector *metrics.Collector // nil unless --metrics-addr is set
	extractor *extractor.Extractor
	runner    *batch.Runner
}

func (e *runEnv) Close() {
	e.cancel()
}

// loadConfig resolves configuration in order: defaults, YAML file,
// INSVFRAME_* environment, command-line flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}

	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("bucket") {
		cfg.MinIO.Bucket = c.String("bucket")
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config, quiet bool) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	level, _ := ports.ParseLogLevel(cfg.LogLevel)
	return logger.NewConsole(level)
}

func newSource(cfg config.Config, fs *osfilesystem.FileSystem) (ports.RangeSource, error) {
	switch cfg.Source {
	case config.SourceMinIO:
		return miniosource.New(cfg.ToMinIOConfig())
	default:
		return fs, nil
	}
}

// setup builds the adapters and the extractor for a command. The returned
// context is cancelled on SIGINT or SIGTERM.
func setup(c *cli.Context) (*runEnv, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	log := newLogger(cfg, c.Bool("quiet"))

	ctx, cancel := context.WithCancel(c.Context)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	env := &runEnv{ctx: ctx, cancel: cancel, cfg: cfg, log: log}

	fs := osfilesystem.New()
	src, err := newSource(cfg, fs)
	if err != nil {
		cancel()
		return nil, err
	}

	if cfg.MetricsAddr != "" {
		env.collector = metrics.NewCollector()
		src = env.collector.Instrument(src)
		if _, err := env.collector.Serve(ctx, cfg.MetricsAddr, log); err != nil {
			cancel()
			return nil, fmt.Errorf("start metrics server: %w", err)
		}
	}

	decoder, err := hevcdecoder.New(cfg.FFmpegPath, log)
	if err != nil {
		cancel()
		return nil, err
	}

	env.extractor = extractor.New(src, decoder, imagerenderer.New(), fs, log, cfg.ToExtractorConfig())

	var observer batch.Observer
	if env.collector != nil {
		observer = env.collector
	}
	env.runner = batch.New(src, env.extractor, observer, log, cfg.ToBatchConfig())

	return env, nil
}
