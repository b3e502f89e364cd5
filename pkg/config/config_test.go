package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(PathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, "http", cfg.Source.Kind)
	assert.Equal(t, "America/Sao_Paulo", cfg.Dashboard.Timezone)
	assert.Equal(t, 30, cfg.Dashboard.OrdersDays)
	assert.Equal(t, 6, cfg.Dashboard.RetentionMonths)
	assert.InDelta(t, 0.2, cfg.Dashboard.NewTarget, 1e-9)
	assert.Equal(t, 4, cfg.Dashboard.Concurrency)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://metrics.internal:8080
  timeout: 3s
source:
  kind: dir
  dir: /srv/payloads
dashboard:
  timezone: UTC
  retention_months: 12
`), 0o600))

	t.Setenv("DELUPO_API_BASE_URL", "http://override:9000")
	t.Setenv("DELUPO_LOGGING_LEVEL", "debug")
	t.Setenv("DELUPO_DASHBOARD_CONCURRENCY", "2")
	t.Setenv("DELUPO_UNKNOWN", "ignored")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "dir", cfg.Source.Kind)
	assert.Equal(t, "/srv/payloads", cfg.Source.Dir)
	assert.Equal(t, 12, cfg.Dashboard.RetentionMonths)
	assert.Equal(t, 3, cfg.Dashboard.ClientsMonths)
	assert.Equal(t, 2, cfg.Dashboard.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, time.UTC.String(), cfg.Location().String())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"kind", func(c *Config) { c.Source.Kind = "ftp" }},
		{"mysql sans dsn", func(c *Config) { c.Source.Kind = "mysql" }},
		{"timezone", func(c *Config) { c.Dashboard.Timezone = "Nowhere/City" }},
		{"timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"concurrency", func(c *Config) { c.Dashboard.Concurrency = 0 }},
		{"target", func(c *Config) { c.Dashboard.ReturningTarget = 1.5 }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("DELUPO_API_BASE_URL"))
	assert.Equal(t, "dashboard.new_target", envKey("DELUPO_DASHBOARD_NEW_TARGET"))
	assert.Equal(t, "", envKey("DELUPO_API_"))
	assert.Equal(t, "", envKey("DELUPO_WHATEVER"))
}
