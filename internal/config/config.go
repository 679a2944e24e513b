package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from an optional YAML file and
// then overridden by environment variables. Env wins so that container
// deployments can keep one base file.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"databaseUrl"`
	RedisURL    string `yaml:"redisUrl"`
	APIToken    string `yaml:"apiToken"`

	GraphPath    string `yaml:"graphPath"`
	SnapshotPath string `yaml:"snapshotPath"`

	WebhookMaxAttempts int `yaml:"webhookMaxAttempts"`

	Solar SolarAPIConfig `yaml:"solar"`
}

// SolarAPIConfig configures the irradiance fetcher.
type SolarAPIConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	APIKey      string        `yaml:"apiKey"`
	RatePerSec  float64       `yaml:"ratePerSec"`
	Burst       int           `yaml:"burst"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
	GridStepDeg float64       `yaml:"gridStepDeg"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:               "8080",
		WebhookMaxAttempts: 10,
		Solar: SolarAPIConfig{
			BaseURL:     "https://power.larc.nasa.gov/api/temporal/hourly/point",
			RatePerSec:  2,
			Burst:       5,
			CacheTTL:    6 * time.Hour,
			GridStepDeg: 0.05,
		},
	}
}

// Load reads path (if non-empty and present) over the defaults, then applies
// env overrides. A missing file is an error only when explicitly requested.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if cfg.WebhookMaxAttempts <= 0 {
		cfg.WebhookMaxAttempts = 10
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("GRAPH_PATH"); v != "" {
		c.GraphPath = v
	}
	if v := os.Getenv("GRAPH_SNAPSHOT_PATH"); v != "" {
		c.SnapshotPath = v
	}
	if v := os.Getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WebhookMaxAttempts = n
		}
	}
	if v := os.Getenv("SOLAR_API_URL"); v != "" {
		c.Solar.BaseURL = v
	}
	if v := os.Getenv("SOLAR_API_KEY"); v != "" {
		c.Solar.APIKey = v
	}
}
