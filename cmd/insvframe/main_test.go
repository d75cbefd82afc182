package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/insvframe/pkg/config"
)

// resolve runs loadConfig behind the real flag set.
func resolve(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var cfg config.Config
	var loadErr error
	app := &cli.App{
		Flags: commonFlags(),
		Action: func(c *cli.Context) error {
			cfg, loadErr = loadConfig(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"insvframe"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return cfg, loadErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := resolve(t)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Source != config.SourceLocal || cfg.Quality != 90 || cfg.Width != 640 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insvframe.yaml")
	content := "quality: 60\nworkers: 2\noutput: /from/file\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INSVFRAME_WORKERS", "7")
	t.Setenv("INSVFRAME_OUTPUT", "/from/env")

	cfg, err := resolve(t, "--config", path, "-o", "/from/flag", "--timeout", "90s")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Quality != 60 {
		t.Errorf("expected quality from file, got %d", cfg.Quality)
	}
	if cfg.Workers != 7 {
		t.Errorf("expected workers from env, got %d", cfg.Workers)
	}
	if cfg.OutputDir != "/from/flag" {
		t.Errorf("expected output from flag, got %s", cfg.OutputDir)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %s", cfg.Timeout)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := resolve(t, "--quality", "0"); err == nil {
		t.Error("expected error for quality 0")
	}
	if _, err := resolve(t, "--source", "minio"); err == nil {
		t.Error("expected error for minio source without bucket")
	}
	if _, err := resolve(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestNewSource(t *testing.T) {
	cfg := config.Defaults()
	cfg.Source = config.SourceMinIO
	cfg.MinIO.Bucket = "captures"

	src, err := newSource(cfg, nil)
	if err != nil {
		t.Fatalf("newSource failed: %v", err)
	}
	if src == nil {
		t.Fatal("expected a minio source")
	}
}
