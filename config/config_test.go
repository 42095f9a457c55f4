package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Default(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Refresh.Interval != 60*time.Second {
		t.Errorf("refresh interval = %v, want 60s", cfg.Refresh.Interval)
	}
	if cfg.View.PageSize != 10 || cfg.View.SearchLimit != 50 {
		t.Errorf("page size, search limit = %d, %d, want 10, 50", cfg.View.PageSize, cfg.View.SearchLimit)
	}
	if cfg.State.Kind != "file" || cfg.State.Path == "" {
		t.Errorf("state = %+v, want a file slot", cfg.State)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coinwatch.yaml")
	content := `
gateway:
  vs_currency: eur
  cache_ttl: 0s
state:
  kind: sqlite
  sqlite_path: /var/lib/coinwatch/state.db
refresh:
  interval: 2m
view:
  page_size: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.VsCurrency != "eur" || cfg.Gateway.CacheTTL != 0 {
		t.Errorf("gateway = %+v", cfg.Gateway)
	}
	if cfg.State.Kind != "sqlite" || cfg.State.SQLitePath != "/var/lib/coinwatch/state.db" {
		t.Errorf("state = %+v", cfg.State)
	}
	if cfg.Refresh.Interval != 2*time.Minute {
		t.Errorf("refresh interval = %v, want 2m", cfg.Refresh.Interval)
	}
	if cfg.View.PageSize != 25 || cfg.View.SearchLimit != 50 {
		t.Errorf("view = %+v, want page size 25 and the default search limit", cfg.View)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "CG-secret")
	t.Setenv("COINWATCH_STATE_KIND", "redis")
	t.Setenv("COINWATCH_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("COINWATCH_REFRESH_INTERVAL", "30s")
	t.Setenv("COINWATCH_PAGE_SIZE", "not a number") // ignored
	t.Setenv("COINWATCH_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.APIKey != "CG-secret" {
		t.Errorf("api key = %q", cfg.Gateway.APIKey)
	}
	if cfg.State.Kind != "redis" || cfg.State.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("state = %+v", cfg.State)
	}
	if cfg.Refresh.Interval != 30*time.Second {
		t.Errorf("refresh interval = %v, want 30s", cfg.Refresh.Interval)
	}
	if cfg.View.PageSize != 10 {
		t.Errorf("page size = %d, want the default 10", cfg.View.PageSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "Default", modify: func(*Config) {}},
		{name: "Unknown slot", modify: func(c *Config) { c.State.Kind = "s3" }, wantErr: "Kind"},
		{name: "Redis without url", modify: func(c *Config) { c.State.Kind = "redis" }, wantErr: "RedisURL"},
		{name: "SQLite without path", modify: func(c *Config) { c.State.Kind = "sqlite" }, wantErr: "SQLitePath"},
		{name: "Invalid base url", modify: func(c *Config) { c.Gateway.BaseURL = "not a url" }, wantErr: "BaseURL"},
		{name: "Zero interval", modify: func(c *Config) { c.Refresh.Interval = 0 }, wantErr: "Interval"},
		{name: "Zero page size", modify: func(c *Config) { c.View.PageSize = 0 }, wantErr: "PageSize"},
		{name: "Unknown level", modify: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "Level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %s", err, tc.wantErr)
			}
		})
	}
}
