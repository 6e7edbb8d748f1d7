package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of the configuration. Durations are strings
// ("15s") so every format decodes them the same way.
type File struct {
	Port            string  `json:"port" yaml:"port" toml:"port"`
	LogLevel        string  `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile         string  `json:"log_file" yaml:"log_file" toml:"log_file"`
	HTTPTimeout     string  `json:"http_timeout" yaml:"http_timeout" toml:"http_timeout"`
	DataSourceURL   string  `json:"data_source_url" yaml:"data_source_url" toml:"data_source_url"`
	SinkURL         string  `json:"sink_url" yaml:"sink_url" toml:"sink_url"`
	SinkSecret      string  `json:"sink_secret" yaml:"sink_secret" toml:"sink_secret"`
	MaxUploadBytes  int64   `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	MaxDatasets     int     `json:"max_datasets" yaml:"max_datasets" toml:"max_datasets"`
	UploadRPS       float64 `json:"upload_rps" yaml:"upload_rps" toml:"upload_rps"`
	UploadBurst     int     `json:"upload_burst" yaml:"upload_burst" toml:"upload_burst"`
	ShutdownTimeout string  `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// ReadFile decodes a TOML, YAML or JSON config file chosen by extension.
func ReadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}
	return &f, nil
}

// ApplyFile overlays the non-zero values of the file at path onto cfg.
func ApplyFile(cfg *Config, path string) error {
	f, err := ReadFile(path)
	if err != nil {
		return err
	}
	return f.applyTo(cfg)
}

func (f *File) applyTo(cfg *Config) error {
	if f.Port != "" {
		cfg.Port = f.Port
	}
	if f.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(f.LogLevel)); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if f.LogFile != "" {
		cfg.LogFile = f.LogFile
	}
	if err := setDuration(&cfg.HTTPTimeout, "http_timeout", f.HTTPTimeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.ShutdownTimeout, "shutdown_timeout", f.ShutdownTimeout); err != nil {
		return err
	}
	if f.DataSourceURL != "" {
		cfg.DataSourceURL = f.DataSourceURL
	}
	if f.SinkURL != "" {
		cfg.SinkURL = f.SinkURL
	}
	if f.SinkSecret != "" {
		cfg.SinkSecret = f.SinkSecret
	}
	if f.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = f.MaxUploadBytes
	}
	if f.MaxDatasets > 0 {
		cfg.MaxDatasets = f.MaxDatasets
	}
	if f.UploadRPS > 0 {
		cfg.UploadRPS = f.UploadRPS
	}
	if f.UploadBurst > 0 {
		cfg.UploadBurst = f.UploadBurst
	}
	return nil
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
