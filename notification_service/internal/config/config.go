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

type Config struct {
	Log          config.LogConfig        `koanf:"log"`
	PProf        config.PProfConfig      `koanf:"pprof"`
	Nats         config.NATSConfig       `koanf:"nats"`
	Subscriber   config.SubscriberConfig `koanf:"subscriber"`
	Stream       StreamConfig            `koanf:"stream"`
	Mail         MailConfig              `koanf:"mail"`
	Telemetry    config.TelemetryConfig  `koanf:"telemetry"`
	ProbesConfig config.ProbesConfig     `koanf:"probes"`
	Shutdown     config.ShutdownConfig   `koanf:"shutdown"`
}

// StreamConfig must match the producer's stream settings, both sides provision the stream.
type StreamConfig struct {
	MaxAge     time.Duration `koanf:"maxage"`
	Duplicates time.Duration `koanf:"duplicates"`
}

// MailConfig selects the outgoing mail channel. Without an SMTP host mails are only logged.
type MailConfig struct {
	SMTP SMTPConfig `koanf:"smtp"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Enabled reports whether an SMTP relay is configured.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func (c *MailConfig) String() string {
	password := ""
	if c.SMTP.Password != "" {
		password = "********"
	}
	var b strings.Builder
	b.WriteString("\n--- Mail ---\n")
	b.WriteString(fmt.Sprintf("  smtp.host: %s\n", c.SMTP.Host))
	b.WriteString(fmt.Sprintf("  smtp.port: %d\n", c.SMTP.Port))
	b.WriteString(fmt.Sprintf("  smtp.username: %s\n", c.SMTP.Username))
	b.WriteString(fmt.Sprintf("  smtp.password: %s\n", password))
	b.WriteString(fmt.Sprintf("  smtp.from: %s\n", c.SMTP.From))
	return b.String()
}

func (c *MailConfig) Validate() error {
	if !c.SMTP.Enabled() {
		return nil
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("mail: smtp port %d is out of range", c.SMTP.Port)
	}
	if err := validator.New().Var(c.SMTP.From, "required,email"); err != nil {
		return fmt.Errorf("mail: smtp from must be a valid address: %w", err)
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Nats.String())
	b.WriteString(c.Subscriber.String())
	b.WriteString(fmt.Sprintf("\n--- Stream ---\n  maxage: %s\n  duplicates: %s\n", c.Stream.MaxAge, c.Stream.Duplicates))
	b.WriteString(c.Mail.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.ProbesConfig.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Nats.Validate(); err != nil {
		return err
	}
	if err := c.Subscriber.Validate(); err != nil {
		return err
	}
	if err := c.Mail.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.ProbesConfig.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}

	return nil
}
