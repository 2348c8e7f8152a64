package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port      int    `toml:"port"`
	APIPrefix string `toml:"api_prefix"`
}

type StorageConfig struct {
	Driver string `toml:"driver"` // "bolt" or "sqlite"
	Path   string `toml:"path"`   // data directory
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type RateLimitConfig struct {
	CreateMax     int `toml:"create_max"`     // creations allowed per window
	WindowSeconds int `toml:"window_seconds"` // window length
}

type APIConfig struct {
	ValidateCreate bool `toml:"validate_create"`
}

// AuthConfig holds the single credential pair of the dashboard login gate.
// It is a UI gate, not an access-control boundary.
type AuthConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Role     string `toml:"role"`
	Secret   string `toml:"secret"` // signs the session marker
}

type DashboardConfig struct {
	Enabled bool   `toml:"enabled"`
	APIURL  string `toml:"api_url"` // empty means in-process store access
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	CORS      CORSConfig      `toml:"cors"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	API       APIConfig       `toml:"api"`
	Auth      AuthConfig      `toml:"auth"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Log       LogConfig       `toml:"log"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      2000,
			APIPrefix: "/api",
		},
		Storage: StorageConfig{
			Driver: "bolt",
			Path:   "./data",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			CreateMax:     5,
			WindowSeconds: 60,
		},
		API: APIConfig{
			ValidateCreate: true,
		},
		Auth: AuthConfig{
			Name: "Admin",
			Role: "admin",
		},
		Dashboard: DashboardConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the TOML file at filepath on top of the defaults.
// A missing file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	config := Default()

	if filepath != "" {
		if _, err := toml.DecodeFile(filepath, config); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to decode %s: %w", filepath, err)
			}
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv lets deployments override the port and the login pair
func (c *Config) applyEnv() error {
	if v := os.Getenv("CONTACTDASH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CONTACTDASH_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("CONTACTDASH_AUTH_EMAIL"); v != "" {
		c.Auth.Email = v
	}
	if v := os.Getenv("CONTACTDASH_AUTH_PASSWORD"); v != "" {
		c.Auth.Password = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late at startup
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with '/', got %q", c.Server.APIPrefix)
	}
	switch c.Storage.Driver {
	case "bolt", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.RateLimit.CreateMax <= 0 {
		return fmt.Errorf("rate_limit.create_max must be positive")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive")
	}
	return nil
}

// CreateWindow returns the creation rate-limit window as a duration
func (c *RateLimitConfig) CreateWindow() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// APIBase returns the URL dashboard clients use to reach this server's API
func (c *Config) APIBase() string {
	if c.Dashboard.APIURL != "" {
		return strings.TrimRight(c.Dashboard.APIURL, "/")
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", c.Server.Port, c.Server.APIPrefix)
}
