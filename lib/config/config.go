// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/orchdash/orchdash/lib/cli"
	"github.com/orchdash/orchdash/lib/codec"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "ORCHDASH_CONFIG"

// Config is the orchdash configuration.
type Config struct {
	// Dashboard configures the terminal dashboard.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Authority configures the fake orchestrator.
	Authority AuthorityConfig `yaml:"authority"`
}

// DashboardConfig configures the dashboard's connection and logging.
type DashboardConfig struct {
	// URL is the authority websocket endpoint.
	// Default: ws://localhost:8080/ws
	URL string `yaml:"url"`

	// Encoding is the frame encoding: "json" or "cbor".
	// Default: json
	Encoding string `yaml:"encoding"`

	// InitialBackoff and MaxBackoff bound reconnect delays.
	// Default: 1s and 30s
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`

	// PingInterval, ReadTimeout, and WriteTimeout tune connection
	// liveness. Default: 20s, 60s, 10s
	PingInterval string `yaml:"ping_interval"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`

	// LogLevel is the minimum level shown in the status line.
	// Default: info
	LogLevel string `yaml:"log_level"`
}

// AuthorityConfig configures the fake orchestrator server.
type AuthorityConfig struct {
	// Listen is the HTTP listen address.
	// Default: localhost:8080
	Listen string `yaml:"listen"`

	// Endpoint is the websocket path.
	// Default: /ws
	Endpoint string `yaml:"endpoint"`

	// FlushDelay coalesces state changes before they are broadcast.
	// Default: 200ms
	FlushDelay string `yaml:"flush_delay"`

	// LogLevel is the minimum level logged to stderr.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// Components are the simulated components, in display order.
	// Their position in this list is their id.
	Components []ComponentConfig `yaml:"components"`
}

// ComponentConfig describes one simulated component.
type ComponentConfig struct {
	Name string `yaml:"name"`

	// Delay is the startup delay in seconds; a component with a
	// positive delay starts DELAYED and launches itself when it
	// expires.
	Delay float64 `yaml:"delay"`

	// Revive restarts the component when it fails.
	Revive bool `yaml:"revive"`

	// AutoStart starts the component at launch. Default: true
	AutoStart *bool `yaml:"auto_start,omitempty"`

	// StartDelay is how long the component stays STARTING.
	// Default: 1s
	StartDelay string `yaml:"start_delay"`
}

// StartsAutomatically reports whether the component starts at launch.
func (c ComponentConfig) StartsAutomatically() bool {
	return c.AutoStart == nil || *c.AutoStart
}

// Default returns the default configuration. Every field a file may
// leave out has a usable value here.
func Default() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			URL:            "ws://localhost:8080/ws",
			Encoding:       "json",
			InitialBackoff: "1s",
			MaxBackoff:     "30s",
			PingInterval:   "20s",
			ReadTimeout:    "60s",
			WriteTimeout:   "10s",
			LogLevel:       "info",
		},
		Authority: AuthorityConfig{
			Listen:     "localhost:8080",
			Endpoint:   "/ws",
			FlushDelay: "200ms",
			LogLevel:   "info",
		},
	}
}

// Load loads configuration from the file named by ORCHDASH_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, cli.Validation("%s environment variable not set", EnvVar).
			WithHint("set it to the path of an orchdash config file, or pass --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of [Default], expands
// variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid config %s: %v", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is non-empty, then ORCHDASH_CONFIG
// when set, and otherwise returns the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	return Default(), nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Validation("reading config: %v", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// YAML is a superset of JSON, so the stripped document goes
		// through the same decoder and struct tags.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return cli.Validation("parsing config %s: %v", path, err)
	}
	return nil
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVariables expands ${VAR} and ${VAR:-default} in addresses.
func (c *Config) expandVariables() {
	c.Dashboard.URL = expandVars(c.Dashboard.URL)
	c.Authority.Listen = expandVars(c.Authority.Listen)
}

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Dashboard.URL == "" {
		errs = append(errs, errors.New("dashboard.url is required"))
	} else if parsed, err := url.Parse(c.Dashboard.URL); err != nil {
		errs = append(errs, fmt.Errorf("dashboard.url: %w", err))
	} else if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		errs = append(errs, fmt.Errorf("dashboard.url: scheme %q is not ws or wss", parsed.Scheme))
	}
	if _, err := codec.ByName(c.Dashboard.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("dashboard.encoding: %w", err))
	}
	if _, err := cli.ParseLevel(c.Dashboard.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("dashboard.log_level: %w", err))
	}
	for _, field := range []struct {
		name, value string
	}{
		{"dashboard.initial_backoff", c.Dashboard.InitialBackoff},
		{"dashboard.max_backoff", c.Dashboard.MaxBackoff},
		{"dashboard.ping_interval", c.Dashboard.PingInterval},
		{"dashboard.read_timeout", c.Dashboard.ReadTimeout},
		{"dashboard.write_timeout", c.Dashboard.WriteTimeout},
	} {
		if err := positiveDuration(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		}
	}

	if c.Authority.Listen == "" {
		errs = append(errs, errors.New("authority.listen is required"))
	}
	if !strings.HasPrefix(c.Authority.Endpoint, "/") {
		errs = append(errs, fmt.Errorf("authority.endpoint %q must start with /", c.Authority.Endpoint))
	}
	if duration, err := time.ParseDuration(c.Authority.FlushDelay); err != nil || duration < 0 {
		errs = append(errs, fmt.Errorf("authority.flush_delay %q is not a non-negative duration", c.Authority.FlushDelay))
	}
	if _, err := cli.ParseLevel(c.Authority.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("authority.log_level: %w", err))
	}
	for index, component := range c.Authority.Components {
		if component.Name == "" {
			errs = append(errs, fmt.Errorf("authority.components[%d].name is required", index))
		}
		if math.IsNaN(component.Delay) || math.IsInf(component.Delay, 0) || component.Delay < 0 {
			errs = append(errs, fmt.Errorf("authority.components[%d].delay must be a finite number >= 0", index))
		}
		if component.StartDelay != "" {
			if duration, err := time.ParseDuration(component.StartDelay); err != nil || duration < 0 {
				errs = append(errs, fmt.Errorf("authority.components[%d].start_delay %q is not a non-negative duration", index, component.StartDelay))
			}
		}
	}

	return errors.Join(errs...)
}

func positiveDuration(value string) error {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if duration <= 0 {
		return fmt.Errorf("%s is not positive", value)
	}
	return nil
}

// Duration parses a duration field that Validate has already checked.
// An empty value yields fallback.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}
