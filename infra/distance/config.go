package distance

import (
	"fmt"
	"time"

	"github.com/kilianp07/fieldroute/auth"
	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/logger"
)

// CacheConfig enables the Redis matrix cache.
type CacheConfig struct {
	RedisURL   string `json:"redis_url"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// Config selects the road-duration source.
type Config struct {
	// OSRMURL is the base URL of an OSRM server. Empty disables road
	// durations and the engine uses haversine estimates.
	OSRMURL       string      `json:"osrm_url"`
	TimeoutMS     int         `json:"timeout_ms"`
	RatePerSecond float64     `json:"rate_per_second"`
	MaxPoints     int         `json:"max_points"`
	Cache         CacheConfig `json:"cache"`
	// Auth enables OAuth2 client credentials for hosted servers.
	Auth *auth.Conf `json:"auth"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 5
	}
	if c.MaxPoints <= 0 {
		c.MaxPoints = DefaultMaxPoints
	}
	if c.Cache.RedisURL != "" && c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 24 * 3600
	}
}

// Validate checks numeric ranges.
func (c Config) Validate() error {
	if c.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	return nil
}

// NewProvider builds the configured provider chain. It returns a nil
// provider when no OSRM server is configured.
func NewProvider(cfg Config, log logger.Logger) (geo.MatrixProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OSRMURL == "" {
		return nil, nil
	}
	opts := []Option{
		WithTimeout(time.Duration(cfg.TimeoutMS) * time.Millisecond),
		WithRate(cfg.RatePerSecond),
		WithMaxPoints(cfg.MaxPoints),
		WithLogger(log),
	}
	if cfg.Auth.Enabled() {
		opts = append(opts, WithAuth(*cfg.Auth))
	}
	var p geo.MatrixProvider = NewOSRMProvider(cfg.OSRMURL, opts...)
	if cfg.Cache.RedisURL != "" {
		cached, err := NewRedisCache(cfg.Cache.RedisURL, p, time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
		if err != nil {
			return nil, fmt.Errorf("matrix cache: %w", err)
		}
		p = cached
	}
	return p, nil
}
