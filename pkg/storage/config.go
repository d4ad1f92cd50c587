package storage

import (
	"fmt"
	"time"

	"github.com/JaimeStill/intake/pkg/envutil"
)

// Storage providers.
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config selects a blob provider and holds its connection parameters.
// Container names the Azure container or the S3 bucket.
type Config struct {
	Provider  string `toml:"provider"`
	Container string `toml:"container"`
	URLExpiry string `toml:"url_expiry"`

	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`

	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Provider         string
	Container        string
	URLExpiry        string
	ConnectionString string
	ServiceURL       string
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	UsePathStyle     string
}

// URLExpiryDuration returns URLExpiry as a time.Duration.
func (c *Config) URLExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.URLExpiry)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. UsePathStyle always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Container != "" {
		c.Container = overlay.Container
	}
	if overlay.URLExpiry != "" {
		c.URLExpiry = overlay.URLExpiry
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.AccessKeyID != "" {
		c.AccessKeyID = overlay.AccessKeyID
	}
	if overlay.SecretAccessKey != "" {
		c.SecretAccessKey = overlay.SecretAccessKey
	}
	c.UsePathStyle = overlay.UsePathStyle
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.Container == "" {
		c.Container = "documents"
	}
	if c.URLExpiry == "" {
		c.URLExpiry = "15m"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	envutil.String(&c.Provider, env.Provider)
	envutil.String(&c.Container, env.Container)
	envutil.String(&c.URLExpiry, env.URLExpiry)
	envutil.String(&c.ConnectionString, env.ConnectionString)
	envutil.String(&c.ServiceURL, env.ServiceURL)
	envutil.String(&c.Region, env.Region)
	envutil.String(&c.Endpoint, env.Endpoint)
	envutil.String(&c.AccessKeyID, env.AccessKeyID)
	envutil.String(&c.SecretAccessKey, env.SecretAccessKey)
	envutil.Bool(&c.UsePathStyle, env.UsePathStyle)
}

func (c *Config) validate() error {
	if c.Container == "" {
		return fmt.Errorf("container required")
	}
	if d, err := time.ParseDuration(c.URLExpiry); err != nil || d <= 0 {
		return fmt.Errorf("invalid url_expiry: %q", c.URLExpiry)
	}

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.ServiceURL == "" {
			return fmt.Errorf("azure: connection_string or service_url required")
		}
	case ProviderS3:
		if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
			return fmt.Errorf("s3: access_key_id and secret_access_key must be set together")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
