package openapi

import "github.com/JaimeStill/intake/pkg/envutil"

// Config holds document metadata for the generated OpenAPI description.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ServerURL   string `toml:"server_url"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	Title       string
	Description string
	ServerURL   string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Intake API"
	}
	if c.Description == "" {
		c.Description = "Dealership document intake, signature confirmation, and packet regeneration."
	}
	if env != nil {
		envutil.String(&c.Title, env.Title)
		envutil.String(&c.Description, env.Description)
		envutil.String(&c.ServerURL, env.ServerURL)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.ServerURL != "" {
		c.ServerURL = overlay.ServerURL
	}
}
