// Package config loads portal client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// TokenKey is the fixed storage key of the session token, used as the file
// name under Home and as the Redis key.
const TokenKey = "ccc_token"

// Config holds every setting of the ccc client. All variables carry the
// CCC_ prefix, e.g. CCC_API_URL.
type Config struct {
	// APIURL is the portal backend.
	APIURL string `env:"API_URL" envDefault:"http://localhost:8001"`

	// PortalURL is the web portal origin the payment processor redirects back to.
	PortalURL string `env:"RETURN_URL" envDefault:"http://localhost:3000"`

	// Token overrides any stored session token.
	Token string `env:"TOKEN"`

	// Home holds the token file and the log. Defaults to ~/.ccc.
	Home string `env:"HOME"`

	MediaURL    string        `env:"MEDIA_URL"    envDefault:"https://api.cloudinary.com/v1_1"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	Redis RedisConfig `envPrefix:"REDIS_"`
	Log   LogConfig   `envPrefix:"LOG_"`
	Poll  PollConfig  `envPrefix:"POLL_"`
}

// RedisConfig selects the shared token store. Empty URL means the file store.
type RedisConfig struct {
	URL string `env:"URL"`
	Key string `env:"KEY" envDefault:"ccc_token"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	File  string `env:"FILE"`
}

// PollConfig controls payment confirmation polling.
type PollConfig struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"2s"`
	Attempts int           `env:"ATTEMPTS" envDefault:"5"`
}

// Load reads .env files (when present) and then the environment.
// Variables already set in the environment win over .env values.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CCC_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.PortalURL = strings.TrimRight(strings.TrimSpace(c.PortalURL), "/")
	c.MediaURL = strings.TrimRight(strings.TrimSpace(c.MediaURL), "/")
	c.Token = strings.TrimSpace(c.Token)

	if c.Home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Home = filepath.Join(home, ".ccc")
		} else {
			c.Home = ".ccc"
		}
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.Home, "ccc.log")
	}
	if c.Redis.Key == "" {
		c.Redis.Key = TokenKey
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.Poll.Attempts < 1 {
		c.Poll.Attempts = 5
	}
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = 2 * time.Second
	}
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CCC_API_URL %q: must be an http(s) URL", c.APIURL)
	}
	return nil
}

// TokenPath is the file the session token is persisted to.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Home, TokenKey)
}
