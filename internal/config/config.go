package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers for visitor state.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Driver string `yaml:"driver"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		FeedbackDelay string `yaml:"feedback_delay"`
		CatalogPath   string `yaml:"catalog_path"`
		CatalogID     string `yaml:"catalog_id"`
	} `yaml:"quiz"`
	Webhook struct {
		URL string `yaml:"url"`
	} `yaml:"webhook"`
	Booking struct {
		URL             string `yaml:"url"`
		FormEmbedScript string `yaml:"form_embed_script"`
	} `yaml:"booking"`
}

// Load reads YAML config from path. A missing file yields the defaults.
// WEBHOOK_URL, BOOKING_URL and FORM_EMBED_SCRIPT override the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("BOOKING_URL"); v != "" {
		cfg.Booking.URL = v
	}
	if v := os.Getenv("FORM_EMBED_SCRIPT"); v != "" {
		cfg.Booking.FormEmbedScript = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
