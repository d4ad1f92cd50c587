package config

import (
	"fmt"

	"github.com/JaimeStill/intake/pkg/envutil"
	"github.com/JaimeStill/intake/pkg/formatting"
	"github.com/JaimeStill/intake/pkg/middleware"
	"github.com/JaimeStill/intake/pkg/openapi"
	"github.com/JaimeStill/intake/pkg/pagination"
)

const (
	EnvAPIBasePath      = "INTAKE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "INTAKE_API_MAX_UPLOAD_SIZE"
	EnvAPIMaxFileSize   = "INTAKE_API_MAX_FILE_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INTAKE_CORS_ENABLED",
	Origins:          "INTAKE_CORS_ORIGINS",
	AllowedMethods:   "INTAKE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INTAKE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "INTAKE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INTAKE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "INTAKE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "INTAKE_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "INTAKE_OPENAPI_TITLE",
	Description: "INTAKE_OPENAPI_DESCRIPTION",
	ServerURL:   "INTAKE_OPENAPI_SERVER_URL",
}

// APIConfig holds API routing, upload limits, CORS, pagination, and
// OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	MaxFileSize   string                `toml:"max_file_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes bounds a whole multipart request.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// MaxFileSizeBytes bounds a single uploaded file.
func (c *APIConfig) MaxFileSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxFileSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = "20MB"
	}
}

func (c *APIConfig) loadEnv() {
	envutil.String(&c.BasePath, EnvAPIBasePath)
	envutil.String(&c.MaxUploadSize, EnvAPIMaxUploadSize)
	envutil.String(&c.MaxFileSize, EnvAPIMaxFileSize)
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if _, err := formatting.ParseBytes(c.MaxFileSize); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	return nil
}
