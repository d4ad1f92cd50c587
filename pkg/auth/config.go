package auth

import "github.com/JaimeStill/intake/pkg/envutil"

// Config enables bearer-token verification against an OIDC issuer.
// Authentication is disabled when Issuer is empty.
type Config struct {
	Issuer            string `toml:"issuer"`
	ClientID          string `toml:"client_id"`
	SkipClientIDCheck bool   `toml:"skip_client_id_check"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Issuer            string
	ClientID          string
	SkipClientIDCheck string
}

// Enabled reports whether an issuer is configured.
func (c *Config) Enabled() bool {
	return c.Issuer != ""
}

// Finalize applies environment overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		envutil.String(&c.Issuer, env.Issuer)
		envutil.String(&c.ClientID, env.ClientID)
		envutil.Bool(&c.SkipClientIDCheck, env.SkipClientIDCheck)
	}

	if c.Enabled() && c.ClientID == "" && !c.SkipClientIDCheck {
		return ErrClientIDRequired
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.SkipClientIDCheck {
		c.SkipClientIDCheck = true
	}
}
