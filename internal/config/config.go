package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            string        `envconfig:"PORT" validate:"required,numeric"`
	LogLevel        slog.Level    `envconfig:"LOG_LEVEL"`
	LogFile         string        `envconfig:"LOG_FILE"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" validate:"gt=0"`
	DataSourceURL   string        `envconfig:"DATA_SOURCE_URL" validate:"omitempty,url"`
	SinkURL         string        `envconfig:"SINK_URL" validate:"omitempty,url"`
	SinkSecret      string        `envconfig:"SINK_SECRET"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	MaxDatasets     int           `envconfig:"MAX_DATASETS" validate:"gte=2"`
	UploadRPS       float64       `envconfig:"UPLOAD_RPS" validate:"gt=0"`
	UploadBurst     int           `envconfig:"UPLOAD_BURST" validate:"gte=1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

func Default() Config {
	return Config{
		Port:            "8080",
		LogLevel:        slog.LevelInfo,
		HTTPTimeout:     15 * time.Second,
		MaxUploadBytes:  20 << 20,
		MaxDatasets:     32,
		UploadRPS:       5,
		UploadBurst:     10,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Load builds the config from defaults, then CONFIG_FILE (if set), then the
// environment. Later sources win.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := ApplyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c Config) SinkConfigured() bool { return c.SinkURL != "" && c.SinkSecret != "" }
