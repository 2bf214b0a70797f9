package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"github.com/go-playground/validator/v10"
)

var _ configloader.Validator = (*Config)(nil)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Store      StoreConfig             `koanf:"store"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Nats       NatsConfig              `koanf:"nats"`
	Notifier   NotifierConfig          `koanf:"notifier"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// StoreConfig selects the stock storage. Seed inserts the demo items on start-up when they are missing.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	Seed   bool   `koanf:"seed"`
}

// NatsConfig enables publishing notifications to JetStream. Without it notifications are only logged.
type NatsConfig struct {
	Enabled           bool `koanf:"enabled"`
	config.NATSConfig `koanf:",squash"`
}

type NotifierConfig struct {
	Recipient      string                      `koanf:"recipient"`
	Timeout        time.Duration               `koanf:"timeout"`
	Stream         StreamConfig                `koanf:"stream"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// StreamConfig describes the JetStream stream notifications are published to.
type StreamConfig struct {
	MaxAge     time.Duration `koanf:"maxage"`
	Duplicates time.Duration `koanf:"duplicates"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Store.Driver))
	b.WriteString(fmt.Sprintf("  seed: %t\n", c.Store.Seed))
	b.WriteString(c.GRPC.String())
	b.WriteString(fmt.Sprintf("\n--- NATS (enabled: %t) ---", c.Nats.Enabled))
	b.WriteString(c.Nats.NATSConfig.String())
	b.WriteString("\n--- Notifier ---\n")
	b.WriteString(fmt.Sprintf("  recipient: %s\n", c.Notifier.Recipient))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Notifier.Timeout))
	b.WriteString(fmt.Sprintf("  stream.maxage: %s\n", c.Notifier.Stream.MaxAge))
	b.WriteString(fmt.Sprintf("  stream.duplicates: %s\n", c.Notifier.Stream.Duplicates))
	b.WriteString(c.Notifier.CircuitBreaker.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q, expected %q or %q", c.Store.Driver, StoreDriverPostgres, StoreDriverMemory)
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	if c.Nats.Enabled {
		if err := c.Nats.NATSConfig.Validate(); err != nil {
			return err
		}
		if err := c.Notifier.CircuitBreaker.Validate(); err != nil {
			return err
		}
	}
	if err := c.Notifier.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	return c.Shutdown.Validate()
}

// Validate accepts a blank recipient, which disables notifications.
func (c *NotifierConfig) Validate() error {
	if err := validator.New().Var(c.Recipient, "omitempty,email"); err != nil {
		return fmt.Errorf("invalid notifier recipient %q", c.Recipient)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("notifier timeout must be greater than 0")
	}
	return nil
}
