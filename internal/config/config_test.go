package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
esi:
  base_url: https://esi.evetech.net/latest
  user_agent: evemarket-test/0.1
database:
  host: localhost
  port: 5432
  name: evemarket
  user: testuser
  password: testpass
regions:
  - 10000002
  - 10000043
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ESI.UserAgent != "evemarket-test/0.1" {
		t.Errorf("ESI.UserAgent = %q, want %q", cfg.ESI.UserAgent, "evemarket-test/0.1")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if len(cfg.Regions) != 2 || cfg.Regions[0] != 10000002 || cfg.Regions[1] != 10000043 {
		t.Errorf("Regions = %v, want [10000002 10000043]", cfg.Regions)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  host: localhost
  name: evemarket
  user: testuser
  password: ${TEST_DB_PASSWORD}
regions: [10000002]
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
database:
  host: localhost
  name: evemarket
  user: testuser
  password: testpass
regions: [10000002]
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.ESI.BaseURL != DefaultBaseURL {
		t.Errorf("ESI.BaseURL = %q, want default %q", cfg.ESI.BaseURL, DefaultBaseURL)
	}
	if cfg.ESI.Permits != DefaultPermits {
		t.Errorf("ESI.Permits = %d, want %d", cfg.ESI.Permits, DefaultPermits)
	}
	if cfg.ESI.Timeout != 30*time.Second {
		t.Errorf("ESI.Timeout = %v, want 30s", cfg.ESI.Timeout)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Schedules.History != DefaultHistoryCron {
		t.Errorf("Schedules.History = %q, want %q", cfg.Schedules.History, DefaultHistoryCron)
	}
	if cfg.Schedules.Orders != DefaultOrdersCron {
		t.Errorf("Schedules.Orders = %q, want %q", cfg.Schedules.Orders, DefaultOrdersCron)
	}
	if cfg.Pipelines.HistoryChunkSize != DefaultHistoryChunkSize {
		t.Errorf("Pipelines.HistoryChunkSize = %d, want %d", cfg.Pipelines.HistoryChunkSize, DefaultHistoryChunkSize)
	}
	if cfg.Pipelines.OrderBatchSize != DefaultOrderBatchSize {
		t.Errorf("Pipelines.OrderBatchSize = %d, want %d", cfg.Pipelines.OrderBatchSize, DefaultOrderBatchSize)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Database: DBConfig{
				Host:     "localhost",
				Name:     "evemarket",
				User:     "u",
				Password: "p",
			},
			Regions: []int64{10000002},
		}
		cfg.applyDefaults()
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no regions", mutate: func(c *Config) { c.Regions = nil }},
		{name: "bad region id", mutate: func(c *Config) { c.Regions = []int64{0} }},
		{name: "zero permits", mutate: func(c *Config) { c.ESI.Permits = -1 }},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }},
		{name: "min conns above max", mutate: func(c *Config) { c.Database.MinConns = 50 }},
		{name: "zero chunk size", mutate: func(c *Config) { c.Pipelines.HistoryChunkSize = -1 }},
		{name: "bad health port", mutate: func(c *Config) { c.Health.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
