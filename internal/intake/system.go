// Package intake runs the document intake workflow: batch upload, human
// signature confirmation, and bounded PDF regeneration, one session per
// open intake modal.
package intake

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/lifecycle"
)

// System tracks open intake sessions.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Start registers a shutdown hook that closes every open session.
	Start(lc *lifecycle.Coordinator) error

	Open(ctx context.Context, target Target) (*Session, error)
	// Get returns ErrSessionNotFound for unknown and closed sessions.
	Get(id uuid.UUID) (*Session, error)
	Close(id uuid.UUID) error
	// CloseAll closes every open session and returns how many were closed.
	CloseAll() int
	Count() int
}

// Config holds workflow limits and timings.
type Config struct {
	MaxAttempts int
	// CloseDelay is the pause between a successful intake and the session closing.
	CloseDelay time.Duration
	ToastTTL   time.Duration
}

// Completion is invoked once per successful session with its transaction id.
type Completion func(transactionID string)
