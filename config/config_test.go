package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/fieldroute/core/geo"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `routing:
  profile: suburban
  naive_factor: 1.6
  solver:
    type: vroom
    conf:
      url: "http://vroom:3000"
distance:
  osrm_url: "http://osrm:5000"
  cache:
    redis_url: "redis://localhost:6379/0"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
logging:
  backend: sqlite
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "acme"
  qos: 1
  retain: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"profile", cfg.Routing.Profile, "suburban"},
		{"naive_factor", cfg.Routing.NaiveFactor, 1.6},
		{"solver", cfg.Routing.Solver.Type, "vroom"},
		{"solver.url", cfg.Routing.Solver.Conf["url"], "http://vroom:3000"},
		{"osrm_url", cfg.Distance.OSRMURL, "http://osrm:5000"},
		{"distance.timeout", cfg.Distance.TimeoutMS, 5000},
		{"cache.ttl", cfg.Distance.Cache.TTLSeconds, 24 * 3600},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"logging.backend", cfg.Logging.Backend, "sqlite"},
		{"logging.path", cfg.Logging.Path, "schedules.db"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "acme"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"retain", cfg.MQTT.Retain, true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"routing":{"profile":"urban"}}`)
	t.Setenv("K_ROUTING__PROFILE", "highway")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Routing.Profile != string(geo.ProfileHighway) {
		t.Fatalf("env override ignored: %s", cfg.Routing.Profile)
	}
	if cfg.Routing.Solver.Type != "lp" {
		t.Fatalf("default solver not applied: %s", cfg.Routing.Solver.Type)
	}
	if cfg.Logging.Path != "schedules.jsonl" {
		t.Fatalf("default log path not applied: %s", cfg.Logging.Path)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"profile":  "routing:\n  profile: offroad\n",
		"factor":   "routing:\n  naive_factor: 0.5\n",
		"backend":  "logging:\n  backend: mongo\n",
		"mqtt qos": "mqtt:\n  broker: tcp://b:1883\n  qos: 3\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := Load(writeConfig(t, "config.toml", "")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Logging.Enabled() != true {
		t.Fatal("default logging should be enabled")
	}
	if (LoggingConfig{Backend: "none"}).Enabled() {
		t.Fatal("none backend should disable logging")
	}
}
