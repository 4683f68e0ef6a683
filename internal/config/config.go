// Package config loads the CLI configuration from YAML and command-line overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration shared by the weave commands.
type Config struct {
	LogLevel string  `yaml:"log_level" mapstructure:"log_level"`
	Demo     Demo    `yaml:"demo" mapstructure:"demo"`
	Metrics  Metrics `yaml:"metrics" mapstructure:"metrics"`
	Redis    Redis   `yaml:"redis" mapstructure:"redis"`
}

// Demo sizes the demo workload.
type Demo struct {
	Dispatches int           `yaml:"dispatches" mapstructure:"dispatches"`
	Workers    int           `yaml:"workers" mapstructure:"workers"`
	Fetches    int           `yaml:"fetches" mapstructure:"fetches"`
	Tick       time.Duration `yaml:"tick" mapstructure:"tick"`
	Ticks      int           `yaml:"ticks" mapstructure:"ticks"`
	History    int           `yaml:"history" mapstructure:"history"`
}

// Metrics configures the serve command's HTTP endpoint.
type Metrics struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// Redis optionally feeds actions into the served store from a Pub/Sub channel.
type Redis struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Channel  string `yaml:"channel" mapstructure:"channel"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Demo: Demo{
			Dispatches: 1000,
			Workers:    8,
			Fetches:    4,
			Tick:       50 * time.Millisecond,
			Ticks:      5,
			History:    64,
		},
		Metrics: Metrics{
			Addr:      ":2112",
			Namespace: "weave",
		},
		Redis: Redis{
			Channel: "weave:actions",
		},
	}
}

// Load reads path on top of the defaults and then applies overrides of the
// form "demo.workers=4". An empty path skips the file.
func Load(path string, overrides []string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if len(overrides) > 0 {
		raw, err := parseOverrides(overrides)
		if err != nil {
			return cfg, err
		}
		if err := decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid override: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the commands cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Demo.Dispatches < 0:
		return fmt.Errorf("demo.dispatches must not be negative")
	case c.Demo.Workers < 1:
		return fmt.Errorf("demo.workers must be at least 1")
	case c.Demo.Fetches < 0:
		return fmt.Errorf("demo.fetches must not be negative")
	case c.Demo.Ticks < 0:
		return fmt.Errorf("demo.ticks must not be negative")
	case c.Demo.History < 0:
		return fmt.Errorf("demo.history must not be negative")
	case c.Demo.Tick <= 0:
		return fmt.Errorf("demo.tick must be positive")
	}
	return nil
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// parseOverrides turns ["a.b=1"] into {"a": {"b": "1"}}.
func parseOverrides(overrides []string) (map[string]any, error) {
	raw := map[string]any{}
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("override %q must be key=value", o)
		}
		parts := strings.Split(key, ".")
		node := raw
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return raw, nil
}
