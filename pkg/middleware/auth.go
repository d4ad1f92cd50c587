package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Verifier validates a bearer token and returns its subject.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type subjectKey struct{}

// Subject returns the authenticated subject stored by Auth, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok
}

// Auth rejects requests without a valid "Authorization: Bearer" token.
// Preflight requests pass through.
func Auth(v Verifier, logger *slog.Logger) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w)
				return
			}

			subject, err := v.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("token rejected", "error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, subject)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
