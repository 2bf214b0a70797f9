package config

import (
	"strings"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Services   Services                `koanf:"services"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Log        config.LogConfig        `koanf:"log"`
}

type Services struct {
	Inventory struct {
		Grpc config.GrpcClientConfig `koanf:"grpc"`
	} `koanf:"inventory"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Services Configuration ---\n")
	b.WriteString("  inventory.grpc:")
	b.WriteString(c.Services.Inventory.Grpc.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Log.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Services.Inventory.Grpc.Validate(); err != nil {
		return err
	}
	if err := c.Resilience.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
