package packets

import (
	"errors"
	"net/http"
)

var (
	ErrNoSources          = errors.New("transaction has no pdf documents to merge")
	ErrInvalidTransaction = errors.New("invalid transaction id")
	ErrMergeFailed        = errors.New("pdf merge failed")
)

// MapHTTPStatus maps packet errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidTransaction):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSources):
		return http.StatusConflict
	case errors.Is(err, ErrMergeFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
