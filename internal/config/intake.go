package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/intake/pkg/envutil"
)

// Backend modes for intake sessions.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

const (
	EnvIntakeMaxAttempts    = "INTAKE_MAX_ATTEMPTS"
	EnvIntakeCloseDelay     = "INTAKE_CLOSE_DELAY"
	EnvIntakeToastTTL       = "INTAKE_TOAST_TTL"
	EnvIntakeBackend        = "INTAKE_BACKEND"
	EnvIntakeBackendURL     = "INTAKE_BACKEND_URL"
	EnvIntakeBackendToken   = "INTAKE_BACKEND_TOKEN"
	EnvIntakeBackendTimeout = "INTAKE_BACKEND_TIMEOUT"
)

// MaxAttemptsLimit is the highest regeneration attempt count a session may use.
const MaxAttemptsLimit = 3

var ErrBackendURLRequired = errors.New("backend_url is required for the remote backend")

// IntakeConfig holds workflow limits and the session backend selection.
type IntakeConfig struct {
	MaxAttempts    int    `toml:"max_attempts"`
	CloseDelay     string `toml:"close_delay"`
	ToastTTL       string `toml:"toast_ttl"`
	Backend        string `toml:"backend"`
	BackendURL     string `toml:"backend_url"`
	BackendToken   string `toml:"backend_token"`
	BackendTimeout string `toml:"backend_timeout"`
}

func (c *IntakeConfig) CloseDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.CloseDelay)
	return d
}

func (c *IntakeConfig) ToastTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ToastTTL)
	return d
}

// BackendTimeoutDuration returns zero when no timeout is configured.
func (c *IntakeConfig) BackendTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.BackendTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *IntakeConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *IntakeConfig) Merge(overlay *IntakeConfig) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.CloseDelay != "" {
		c.CloseDelay = overlay.CloseDelay
	}
	if overlay.ToastTTL != "" {
		c.ToastTTL = overlay.ToastTTL
	}
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BackendURL != "" {
		c.BackendURL = overlay.BackendURL
	}
	if overlay.BackendToken != "" {
		c.BackendToken = overlay.BackendToken
	}
	if overlay.BackendTimeout != "" {
		c.BackendTimeout = overlay.BackendTimeout
	}
}

func (c *IntakeConfig) loadDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.CloseDelay == "" {
		c.CloseDelay = "1.5s"
	}
	if c.ToastTTL == "" {
		c.ToastTTL = "5s"
	}
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
}

func (c *IntakeConfig) loadEnv() {
	envutil.Int(&c.MaxAttempts, EnvIntakeMaxAttempts)
	envutil.String(&c.CloseDelay, EnvIntakeCloseDelay)
	envutil.String(&c.ToastTTL, EnvIntakeToastTTL)
	envutil.String(&c.Backend, EnvIntakeBackend)
	envutil.String(&c.BackendURL, EnvIntakeBackendURL)
	envutil.String(&c.BackendToken, EnvIntakeBackendToken)
	envutil.String(&c.BackendTimeout, EnvIntakeBackendTimeout)
}

func (c *IntakeConfig) validate() error {
	if c.MaxAttempts < 1 || c.MaxAttempts > MaxAttemptsLimit {
		return fmt.Errorf("invalid max_attempts: %d (must be 1-%d)", c.MaxAttempts, MaxAttemptsLimit)
	}
	if _, err := time.ParseDuration(c.CloseDelay); err != nil {
		return fmt.Errorf("invalid close_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.ToastTTL); err != nil {
		return fmt.Errorf("invalid toast_ttl: %w", err)
	}
	if c.BackendTimeout != "" {
		if _, err := time.ParseDuration(c.BackendTimeout); err != nil {
			return fmt.Errorf("invalid backend_timeout: %w", err)
		}
	}

	switch c.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.BackendURL == "" {
			return ErrBackendURLRequired
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
