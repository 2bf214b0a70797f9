package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`
	Notifier struct {
		Recipient string        `koanf:"recipient"`
		Timeout   time.Duration `koanf:"timeout"`
	} `koanf:"notifier"`
}

func (c *testConfig) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("invalid port")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_Priority(t *testing.T) {
	dir := t.TempDir()
	yamlFile := writeFile(t, dir, "config.yaml", `
server:
  port: 8080
notifier:
  recipient: yaml@example.com
  timeout: 2s
`)
	envFile := writeFile(t, dir, ".env", "TESTSVC_NOTIFIER_RECIPIENT=dotenv@example.com\nOTHER_VALUE=ignored\n")

	testCases := []struct {
		name              string
		env               map[string]string
		expectedPort      int
		expectedRecipient string
	}{
		{
			name:              "yaml overridden by .env",
			expectedPort:      8080,
			expectedRecipient: "dotenv@example.com",
		},
		{
			name:              "system env wins",
			env:               map[string]string{"TESTSVC_SERVER_PORT": "9090", "TESTSVC_NOTIFIER_RECIPIENT": "env@example.com"},
			expectedPort:      9090,
			expectedRecipient: "env@example.com",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			// when
			cfg, err := LoadFrom[*testConfig]("testsvc", yamlFile, envFile)

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPort, cfg.Server.Port)
			assert.Equal(t, tc.expectedRecipient, cfg.Notifier.Recipient)
			assert.Equal(t, 2*time.Second, cfg.Notifier.Timeout)
		})
	}
}

func TestLoadFrom_ValidationError(t *testing.T) {
	// given
	dir := t.TempDir()
	yamlFile := writeFile(t, dir, "config.yaml", "server:\n  port: 0\n")

	// when
	_, err := LoadFrom[*testConfig]("testsvc", yamlFile, filepath.Join(dir, "missing.env"))

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestEnvPrefix(t *testing.T) {
	assert.Equal(t, "INVENTORY_", EnvPrefix("inventory"))
}
