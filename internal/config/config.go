// Package config loads the tool's settings from an optional YAML file, a .env
// file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	APIREST    = "rest"
	APIGraphQL = "graphql"
)

// Config holds every tunable setting. The token is deliberately absent: it is
// only ever read from the interactive prompt.
type Config struct {
	// Timezone is the reference zone all (year, month) comparisons are made in.
	Timezone string `yaml:"timezone" env:"GITHUB_REVIEW_STATS_TIMEZONE" env-default:"America/Denver"`
	API      string `yaml:"api" env:"GITHUB_REVIEW_STATS_API" env-default:"rest"`

	// Leave empty for github.com.
	RESTBaseURL string `yaml:"rest_base_url" env:"GITHUB_REVIEW_STATS_REST_BASE_URL"`
	GraphQLURL  string `yaml:"graphql_url" env:"GITHUB_REVIEW_STATS_GRAPHQL_URL"`
	PageSize    int    `yaml:"page_size" env:"GITHUB_REVIEW_STATS_PAGE_SIZE" env-default:"100"`

	Strict    bool `yaml:"strict" env:"GITHUB_REVIEW_STATS_STRICT"`
	CountOnce bool `yaml:"count_once" env:"GITHUB_REVIEW_STATS_COUNT_ONCE"`

	RequestsPerSecond   float64       `yaml:"requests_per_second" env:"GITHUB_REVIEW_STATS_RPS" env-default:"0"`
	MaxRetries          int           `yaml:"max_retries" env:"GITHUB_REVIEW_STATS_MAX_RETRIES" env-default:"3"`
	RetryInterval       time.Duration `yaml:"retry_interval" env:"GITHUB_REVIEW_STATS_RETRY_INTERVAL" env-default:"500ms"`
	RateLimitSleepLimit time.Duration `yaml:"rate_limit_sleep_limit" env:"GITHUB_REVIEW_STATS_RATE_LIMIT_SLEEP_LIMIT" env-default:"1h"`

	location *time.Location
}

// Load reads .env (if present), then path (if not empty), then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and resolves the timezone. It must be called again
// after fields are overridden.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	switch c.API {
	case APIREST, APIGraphQL:
	default:
		return fmt.Errorf("invalid api %q: must be %q or %q", c.API, APIREST, APIGraphQL)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("invalid page size %d: must be between 1 and 100", c.PageSize)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid requests per second %v: must not be negative", c.RequestsPerSecond)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries %d: must not be negative", c.MaxRetries)
	}
	if (c.RESTBaseURL == "") != (c.GraphQLURL == "") && c.API == APIGraphQL {
		return errors.New("rest_base_url and graphql_url must be set together when using the graphql api")
	}
	return nil
}

// Location returns the resolved reference timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
