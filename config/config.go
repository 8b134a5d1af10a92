package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fieldroute/api/routes"
	"github.com/kilianp07/fieldroute/core/metrics"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/infra/distance"
	"github.com/kilianp07/fieldroute/infra/monitoring"
	"github.com/kilianp07/fieldroute/infra/mqtt"
)

// EnvPrefix marks environment variables that override file settings.
// K_ROUTING__PROFILE=highway sets routing.profile.
const EnvPrefix = "K_"

type Config struct {
	Routing  routing.Config  `json:"routing"`
	Distance distance.Config `json:"distance"`
	Metrics  metrics.Config  `json:"metrics"`
	Logging  LoggingConfig   `json:"logging"`
	MQTT     mqtt.Config     `json:"mqtt"`
	// API enables the HTTP endpoints when Addr is set.
	API    routes.Config     `json:"api"`
	Sentry monitoring.Config `json:"sentry"`
}

// Default returns a configuration with every section defaulted. It is used
// when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.Routing.SetDefaults()
	c.Distance.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. MQTT is only checked when a broker is set.
func (c *Config) Validate() error {
	if err := c.Routing.Validate(); err != nil {
		return fmt.Errorf("routing: %w", err)
	}
	if err := c.Distance.Validate(); err != nil {
		return fmt.Errorf("distance: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.MQTT.Broker != "" {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
