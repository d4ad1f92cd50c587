package api

import (
	"fmt"

	"github.com/JaimeStill/intake/internal/backend"
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/intake"
	"github.com/JaimeStill/intake/internal/packets"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Packets   packets.System
	Intake    intake.System
}

// NewDomain creates all domain systems from the API runtime. Intake
// sessions use the in-process systems unless a remote backend is configured.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	downloadPrefix := cfg.API.BasePath + "/storage/download/"

	docsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
		documents.Config{
			DownloadPrefix: downloadPrefix,
			MaxFileSize:    cfg.API.MaxFileSizeBytes(),
		},
	)

	packetsSystem := packets.New(
		docsSystem,
		runtime.Storage,
		runtime.Logger,
		packets.Config{
			DownloadPrefix: downloadPrefix,
			URLExpiry:      cfg.Storage.URLExpiryDuration(),
		},
	)

	sessionBackend, err := newSessionBackend(cfg, runtime, docsSystem, packetsSystem)
	if err != nil {
		return nil, err
	}

	intakeSystem := intake.New(
		runtime.Lifecycle.Context(),
		sessionBackend,
		intake.Config{
			MaxAttempts: cfg.Intake.MaxAttempts,
			CloseDelay:  cfg.Intake.CloseDelayDuration(),
			ToastTTL:    cfg.Intake.ToastTTLDuration(),
		},
		func(transactionID string) {
			runtime.Logger.Info("transaction documents approved", "transaction_id", transactionID)
		},
		runtime.Logger,
	)

	return &Domain{
		Documents: docsSystem,
		Packets:   packetsSystem,
		Intake:    intakeSystem,
	}, nil
}

func newSessionBackend(
	cfg *config.Config,
	runtime *Runtime,
	docs documents.System,
	pkts packets.System,
) (intake.Backend, error) {
	if cfg.Intake.Backend != config.BackendRemote {
		return intake.NewLocalBackend(docs, pkts), nil
	}

	client, err := backend.New(
		cfg.Intake.BackendURL,
		cfg.Intake.BackendToken,
		cfg.Intake.BackendTimeoutDuration(),
		runtime.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("intake backend: %w", err)
	}
	return client, nil
}
