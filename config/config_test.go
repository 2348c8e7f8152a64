package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file did not yield defaults (-want +got):\n%s", diff)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
port = 8080

[storage]
driver = "sqlite"

[rate_limit]
create_max = 10

[api]
validate_create = false
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := Default()
	want.Server.Port = 8080
	want.Storage.Driver = "sqlite"
	want.RateLimit.CreateMax = 10
	want.API.ValidateCreate = false
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.RateLimit.CreateWindow(); got != time.Minute {
		t.Errorf("CreateWindow = %v, want 1m", got)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("CONTACTDASH_PORT", "3000")
	t.Setenv("CONTACTDASH_AUTH_EMAIL", "ops@example.com")
	t.Setenv("CONTACTDASH_AUTH_PASSWORD", "pw")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 3000 || cfg.Auth.Email != "ops@example.com" || cfg.Auth.Password != "pw" {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv("CONTACTDASH_PORT", "many")
	if _, err := LoadConfig(""); err == nil {
		t.Error("invalid port accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"prefix", func(c *Config) { c.Server.APIPrefix = "api" }},
		{"driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"rate", func(c *Config) { c.RateLimit.CreateMax = 0 }},
		{"window", func(c *Config) { c.RateLimit.WindowSeconds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate accepted invalid config")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestAPIBase(t *testing.T) {
	c := Default()
	if got := c.APIBase(); got != "http://127.0.0.1:2000/api" {
		t.Errorf("APIBase = %q", got)
	}
	c.Dashboard.APIURL = "https://contact.example.com/api/"
	if got := c.APIBase(); got != "https://contact.example.com/api" {
		t.Errorf("APIBase = %q", got)
	}
}
