// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
)

// Config represents the full configuration for frameconv.
type Config struct {
	// Conversion
	Codec              string  `yaml:"codec"`
	MaxDurationSeconds float64 `yaml:"max_duration_seconds"`
	BitrateBps         int     `yaml:"bitrate_bps"`
	FrameRate          float64 `yaml:"frame_rate"`

	// Tools
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Output
	OutputDir string `yaml:"output_dir"`
	LogLevel  string `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig represents the HTTP API settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	UploadDir      string   `yaml:"upload_dir"`
}

// MetricsConfig represents Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	d := transcoder.DefaultConfig()
	return Config{
		Codec:              d.Codec,
		MaxDurationSeconds: d.MaxDurationSeconds,
		BitrateBps:         d.BitrateBps,

		OutputDir: ".",
		LogLevel:  "info",

		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 512 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Fields missing from
// the file keep their defaults.
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

// Validate checks the configuration for values no job could run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := transcoder.ParseCodec(c.Codec); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("max_duration_seconds must be positive, got %v", c.MaxDurationSeconds))
	}
	if c.BitrateBps <= 0 {
		errs = append(errs, fmt.Errorf("bitrate_bps must be positive, got %d", c.BitrateBps))
	}
	if c.FrameRate < 0 {
		errs = append(errs, fmt.Errorf("frame_rate must not be negative, got %v", c.FrameRate))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes))
	}
	return errors.Join(errs...)
}

// ToTranscoderConfig converts Config to transcoder.Config.
func (c Config) ToTranscoderConfig() transcoder.Config {
	return transcoder.Config{
		Codec:              c.Codec,
		MaxDurationSeconds: c.MaxDurationSeconds,
		BitrateBps:         c.BitrateBps,
		FrameRate:          c.FrameRate,
	}
}

// Level returns the parsed log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}
