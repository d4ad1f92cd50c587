package intake

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/packets"
)

var (
	// ErrNetwork marks a backend call that did not complete.
	ErrNetwork = errors.New("backend unreachable")
	// ErrBusiness marks a backend call that completed with a rejection.
	ErrBusiness = errors.New("rejected by backend")
	// ErrValidation is the business rejection of uploaded content.
	ErrValidation = fmt.Errorf("%w: validation failed", ErrBusiness)

	ErrAttemptsExhausted    = errors.New("regeneration attempts exhausted")
	ErrInvalidState         = errors.New("action not allowed in current phase")
	ErrBusy                 = errors.New("session is busy")
	ErrSessionClosed        = errors.New("session closed")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoFiles              = errors.New("no files selected")
	ErrInvalidTarget        = errors.New("invalid session target")
	ErrInvalidRequest       = errors.New("invalid request")
)

// Classify places a collaborator error into the workflow taxonomy. Errors
// already classified are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrBusiness):
		return err
	case errors.Is(err, documents.ErrInvalidFile),
		errors.Is(err, documents.ErrFileTooLarge),
		errors.Is(err, documents.ErrUnsupportedType),
		errors.Is(err, documents.ErrNoFiles),
		errors.Is(err, documents.ErrInvalidEntity):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, documents.ErrNotFound),
		errors.Is(err, documents.ErrDuplicate),
		errors.Is(err, documents.ErrInvalidTransition),
		errors.Is(err, packets.ErrNoSources),
		errors.Is(err, packets.ErrInvalidTransaction),
		errors.Is(err, packets.ErrMergeFailed):
		return fmt.Errorf("%w: %w", ErrBusiness, err)
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
}

// MapHTTPStatus maps intake errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrInvalidTarget), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusy), errors.Is(err, ErrInvalidState), errors.Is(err, ErrAttemptsExhausted):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBusiness):
		return http.StatusConflict
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
