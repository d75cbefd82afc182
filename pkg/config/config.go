// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/user/insvframe/pkg/adapters/miniosource"
	"github.com/user/insvframe/pkg/batch"
	"github.com/user/insvframe/pkg/extractor"
	"github.com/user/insvframe/pkg/ports"
)

// Source kinds.
const (
	SourceLocal = "local"
	SourceMinIO = "minio"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "INSVFRAME_"

// Config represents the full configuration for insvframe.
type Config struct {
	// Input
	Source string      `yaml:"source" env:"SOURCE"`
	MinIO  MinIOConfig `yaml:"minio" envPrefix:"MINIO_"`

	// Output
	OutputDir string `yaml:"output" env:"OUTPUT"`
	Width     int    `yaml:"width" env:"WIDTH"`
	Height    int    `yaml:"height" env:"HEIGHT"`
	Quality   int    `yaml:"quality" env:"QUALITY"`

	// Batch
	Workers    int           `yaml:"workers" env:"WORKERS"`
	Extensions []string      `yaml:"extensions" env:"EXTENSIONS"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// Decoder
	FFmpegPath string `yaml:"ffmpeg_path" env:"FFMPEG"`

	// Diagnostics
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

// MinIOConfig represents the object store connection.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	Region    string `yaml:"region" env:"REGION"`
	UseSSL    bool   `yaml:"use_ssl" env:"USE_SSL"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	def := extractor.DefaultConfig()
	return Config{
		Source: SourceLocal,
		MinIO: MinIOConfig{
			Endpoint: "localhost:9000",
		},

		OutputDir: "./frames",
		Width:     def.Width,
		Height:    def.Height,
		Quality:   def.Quality,

		Extensions: append([]string(nil), batch.DefaultExtensions...),

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with INSVFRAME_* environment variables. Unset
// variables leave the current value alone.
func ApplyEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Source {
	case SourceLocal:
	case SourceMinIO:
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("minio source requires a bucket")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("output size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ToExtractorConfig converts Config to extractor.Config.
func (c Config) ToExtractorConfig() extractor.Config {
	return extractor.Config{
		Width:   c.Width,
		Height:  c.Height,
		Quality: c.Quality,
	}
}

// ToBatchConfig converts Config to batch.Config.
func (c Config) ToBatchConfig() batch.Config {
	return batch.Config{
		Workers:    c.Workers,
		Extensions: c.Extensions,
		Timeout:    c.Timeout,
	}
}

// ToMinIOConfig converts Config to miniosource.Config.
func (c Config) ToMinIOConfig() miniosource.Config {
	return miniosource.Config{
		Endpoint:  c.MinIO.Endpoint,
		AccessKey: c.MinIO.AccessKey,
		SecretKey: c.MinIO.SecretKey,
		UseSSL:    c.MinIO.UseSSL,
		Bucket:    c.MinIO.Bucket,
		Region:    c.MinIO.Region,
	}
}
