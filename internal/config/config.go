// Package config holds runtime settings for the audit tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is loadable from a JSON file; zero-valued fields take defaults.
type Config struct {
	Workers        int    `json:"workers" validate:"gte=1,lte=256"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=1"`
	DelaySeconds   int    `json:"delay_seconds" validate:"gte=0"`
	MaxBodyBytes   int64  `json:"max_body_bytes" validate:"gte=1024"`
	ReportPath     string `json:"report_path" validate:"required"`
	ExportPath     string `json:"export_path" validate:"required"`
	LogPath        string `json:"log_path"`
	ListenAddr     string `json:"listen_addr" validate:"required"`
}

// Default returns the stock configuration: 10 workers, 30 s fetch timeout,
// 1 s per-completion delay.
func Default() Config {
	return Config{
		Workers:        10,
		TimeoutSeconds: 30,
		DelaySeconds:   1,
		MaxBodyBytes:   5 * 1024 * 1024,
		ReportPath:     "crawler_report.pdf",
		ExportPath:     "crawler_data.json",
		LogPath:        "crawler.log",
		ListenAddr:     ":8080",
	}
}

// Load reads a JSON config file, fills defaults for missing fields and
// validates the result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	merge(&cfg, fileCfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c Config) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }
func (c Config) Delay() time.Duration   { return time.Duration(c.DelaySeconds) * time.Second }

func merge(dst *Config, src Config) {
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.TimeoutSeconds != 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.DelaySeconds != 0 {
		dst.DelaySeconds = src.DelaySeconds
	}
	if src.MaxBodyBytes != 0 {
		dst.MaxBodyBytes = src.MaxBodyBytes
	}
	if src.ReportPath != "" {
		dst.ReportPath = src.ReportPath
	}
	if src.ExportPath != "" {
		dst.ExportPath = src.ExportPath
	}
	if src.LogPath != "" {
		dst.LogPath = src.LogPath
	}
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
}
