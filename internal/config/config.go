// Package config loads service configuration from config.toml, an
// optional environment overlay, a .env file, and INTAKE_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/database"
	"github.com/JaimeStill/intake/pkg/envutil"
	"github.com/JaimeStill/intake/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvIntakeEnv             = "INTAKE_ENV"
	EnvIntakeShutdownTimeout = "INTAKE_SHUTDOWN_TIMEOUT"
	EnvIntakeVersion         = "INTAKE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "INTAKE_DB_HOST",
	Port:            "INTAKE_DB_PORT",
	Name:            "INTAKE_DB_NAME",
	User:            "INTAKE_DB_USER",
	Password:        "INTAKE_DB_PASSWORD",
	SSLMode:         "INTAKE_DB_SSL_MODE",
	MaxOpenConns:    "INTAKE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INTAKE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INTAKE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INTAKE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "INTAKE_STORAGE_PROVIDER",
	Container:        "INTAKE_STORAGE_CONTAINER",
	URLExpiry:        "INTAKE_STORAGE_URL_EXPIRY",
	ConnectionString: "INTAKE_STORAGE_CONNECTION_STRING",
	ServiceURL:       "INTAKE_STORAGE_SERVICE_URL",
	Region:           "INTAKE_STORAGE_REGION",
	Endpoint:         "INTAKE_STORAGE_ENDPOINT",
	AccessKeyID:      "INTAKE_STORAGE_ACCESS_KEY_ID",
	SecretAccessKey:  "INTAKE_STORAGE_SECRET_ACCESS_KEY",
	UsePathStyle:     "INTAKE_STORAGE_USE_PATH_STYLE",
}

var authEnv = &auth.Env{
	Issuer:            "INTAKE_AUTH_ISSUER",
	ClientID:          "INTAKE_AUTH_CLIENT_ID",
	SkipClientIDCheck: "INTAKE_AUTH_SKIP_CLIENT_ID_CHECK",
}

// Config is the root configuration for the intake service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Intake          IntakeConfig    `toml:"intake"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the INTAKE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvIntakeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env and the base config (both optional), applies any
// environment overlay, and finalizes all values. Variables already set in
// the process environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes TOML into a Config without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Intake.Merge(&overlay.Intake)
}

// Finalize applies defaults, environment overrides, and validation to
// every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Intake.Finalize(); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	envutil.String(&c.ShutdownTimeout, EnvIntakeShutdownTimeout)
	envutil.String(&c.Version, EnvIntakeVersion)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvIntakeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
