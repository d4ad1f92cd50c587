// Package auth verifies OIDC bearer tokens issued to console users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/intake/pkg/lifecycle"
)

var (
	ErrClientIDRequired = errors.New("client_id required unless skip_client_id_check is set")
	ErrNotReady         = errors.New("identity provider not discovered")
	ErrInvalidToken     = errors.New("invalid bearer token")
)

// System verifies raw ID tokens and returns the token subject.
type System interface {
	// Start registers issuer discovery as a startup hook.
	Start(lc *lifecycle.Coordinator) error
	Verify(ctx context.Context, raw string) (string, error)
}

type provider struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	verifier *oidc.IDTokenVerifier
}

// New creates an auth system. Discovery happens in Start.
func New(cfg *Config, logger *slog.Logger) System {
	return &provider{
		cfg:    *cfg,
		logger: logger.With("system", "auth", "issuer", cfg.Issuer),
	}
}

func (p *provider) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting auth system")

	lc.OnStartup(func() error {
		op, err := oidc.NewProvider(lc.Context(), p.cfg.Issuer)
		if err != nil {
			p.logger.Error("issuer discovery failed", "error", err)
			return fmt.Errorf("discover %s: %w", p.cfg.Issuer, err)
		}

		p.mu.Lock()
		p.verifier = op.Verifier(&oidc.Config{
			ClientID:          p.cfg.ClientID,
			SkipClientIDCheck: p.cfg.SkipClientIDCheck,
		})
		p.mu.Unlock()

		p.logger.Info("issuer discovered")
		return nil
	})

	return nil
}

func (p *provider) Verify(ctx context.Context, raw string) (string, error) {
	p.mu.RLock()
	v := p.verifier
	p.mu.RUnlock()

	if v == nil {
		return "", ErrNotReady
	}

	token, err := v.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return token.Subject, nil
}
