package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds the full service configuration. Values come from an optional
// JSON file, with environment variables taking precedence.
type Config struct {
	ListenAddr string `json:"listenAddr"`
	LogLevel   string `json:"logLevel"`

	GammaBaseURL   string `json:"gammaBaseUrl"`
	ClobBaseURL    string `json:"clobBaseUrl"`
	DataAPIBaseURL string `json:"dataApiBaseUrl"`

	UpstreamTimeoutSeconds int     `json:"upstreamTimeoutSeconds"`
	UpstreamMaxRPS         float64 `json:"upstreamMaxRps"`

	RedisAddr     string `json:"redisAddr"`
	RedisPassword string `json:"redisPassword"`

	AdminSecret string `json:"adminSecret"`

	// RouteLimits overrides per-route capacities, keyed by route template
	// (e.g. "/api/markets", "/api/markets/[param]"). Requests per minute.
	RouteLimits map[string]int `json:"routeLimits"`
}

func defaults() Config {
	return Config{
		ListenAddr:             ":8080",
		LogLevel:               "info",
		UpstreamTimeoutSeconds: 10,
		UpstreamMaxRPS:         10,
	}
}

// Load reads the config file at path (skipped when path is empty) and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.UpstreamTimeoutSeconds <= 0 {
		cfg.UpstreamTimeoutSeconds = 10
	}
	if cfg.UpstreamMaxRPS <= 0 {
		cfg.UpstreamMaxRPS = 10
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.ListenAddr, "MARKETBOARD_ADDR")
	setString(&cfg.LogLevel, "MARKETBOARD_LOG_LEVEL")
	setString(&cfg.GammaBaseURL, "MARKETBOARD_GAMMA_URL")
	setString(&cfg.ClobBaseURL, "MARKETBOARD_CLOB_URL")
	setString(&cfg.DataAPIBaseURL, "MARKETBOARD_DATA_API_URL")
	setString(&cfg.RedisAddr, "MARKETBOARD_REDIS_ADDR")
	setString(&cfg.RedisPassword, "MARKETBOARD_REDIS_PASSWORD")
	setString(&cfg.AdminSecret, "MARKETBOARD_ADMIN_SECRET")

	if v := os.Getenv("MARKETBOARD_ROUTE_LIMITS"); v != "" {
		overrides := map[string]int{}
		if err := json.Unmarshal([]byte(v), &overrides); err != nil {
			return fmt.Errorf("parse MARKETBOARD_ROUTE_LIMITS: %w", err)
		}
		if cfg.RouteLimits == nil {
			cfg.RouteLimits = make(map[string]int, len(overrides))
		}
		for template, n := range overrides {
			cfg.RouteLimits[template] = n
		}
	}
	return nil
}

// UpstreamTimeout returns the configured upstream timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}
