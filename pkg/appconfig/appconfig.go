// Package appconfig is the demo apps' configuration layer (§1.1 ambient
// stack). It combines a JSON-file loader, grounded on pkg/migration's
// Config/DefaultConfig/Validate trio, with the functional-options pattern
// used throughout the teacher (pkg/consumer/options.go,
// pkg/cron_worker/options.go) for overriding individual fields at call
// sites without hand-building the whole struct.
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the configuration shared by the demo applications: Kafka
// connectivity, the timezone the Scheduler runs against, and the topics the
// Dispatcher binds.
type Config struct {
	ServiceName      string        `json:"service_name"`
	Environment      string        `json:"environment"`
	BootstrapServers []string      `json:"bootstrap_servers"`
	GroupID          string        `json:"group_id"`
	Topics           []string      `json:"topics"`
	ActionLogTopic   string        `json:"action_log_topic"`
	Timezone         string        `json:"timezone"`
	ShutdownTimeout  time.Duration `json:"shutdown_timeout"`
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		ServiceName:      "actionlog-demo",
		Environment:      "development",
		BootstrapServers: []string{"localhost:9092"},
		GroupID:          "actionlog-demo",
		ActionLogTopic:   "action-logs",
		Timezone:         "UTC",
		ShutdownTimeout:  10 * time.Second,
	}
}

// Validate checks the configuration for obviously invalid values, the same
// shape as pkg/migration.Config.Validate.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("appconfig: service_name cannot be empty")
	}
	if len(c.BootstrapServers) == 0 {
		return fmt.Errorf("appconfig: bootstrap_servers cannot be empty")
	}
	if strings.TrimSpace(c.GroupID) == "" {
		return fmt.Errorf("appconfig: group_id cannot be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("appconfig: shutdown_timeout must be positive, got %v", c.ShutdownTimeout)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("appconfig: %w", err)
	}
	return nil
}

// Location resolves Timezone to a *time.Location for the Scheduler.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads path as JSON over DefaultConfig, applies opts, then validates.
// A missing file is not an error: defaults (plus opts) are used as-is,
// which keeps the demo apps runnable without an accompanying config file.
func Load(path string, opts ...Option) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("appconfig: failed to read %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("appconfig: failed to parse %s: %w", path, err)
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option is a functional option for overriding individual Config fields
// after loading, mirroring pkg/consumer.Option / pkg/cron_worker.Option.
type Option func(*Config)

// WithServiceName overrides the service name.
func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

// WithBootstrapServers overrides the Kafka bootstrap servers.
func WithBootstrapServers(servers ...string) Option {
	return func(c *Config) { c.BootstrapServers = servers }
}

// WithTopics overrides the topics the Dispatcher binds.
func WithTopics(topics ...string) Option {
	return func(c *Config) { c.Topics = topics }
}

// WithTimezone overrides the Scheduler's timezone.
func WithTimezone(tz string) Option {
	return func(c *Config) { c.Timezone = tz }
}

// WithShutdownTimeout overrides the graceful-shutdown deadline.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) { c.ShutdownTimeout = d }
}
