// Package middleware provides the HTTP middleware applied to mounted modules.
package middleware

import "net/http"

// Func wraps an http.Handler.
type Func func(http.Handler) http.Handler

// Stack is an ordered list of middleware. The first entry is outermost.
type Stack []Func

// Use appends mw to the stack.
func (s *Stack) Use(mw Func) {
	*s = append(*s, mw)
}

// Apply wraps handler with every middleware in the stack.
func (s Stack) Apply(handler http.Handler) http.Handler {
	return Chain(handler, s...)
}

// Chain wraps handler so that mw[0] runs first.
func Chain(handler http.Handler, mw ...Func) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// SecurityHeaders sets conservative response headers for a JSON API.
func SecurityHeaders() Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
