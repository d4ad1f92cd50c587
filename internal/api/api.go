// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/middleware"
	"github.com/JaimeStill/intake/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain must be started with Start before serving.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, nil, err
	}

	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.SecurityHeaders())
	m.Use(middleware.CORS(&cfg.API.CORS))
	if runtime.Auth != nil {
		m.Use(middleware.Auth(runtime.Auth, runtime.Logger))
	}

	return m, domain, nil
}

// Start registers domain lifecycle hooks.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	return d.Intake.Start(lc)
}
