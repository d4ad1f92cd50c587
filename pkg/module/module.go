// Package module mounts prefixed sub-routers, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/intake/pkg/middleware"
)

// Module serves requests under a single-level prefix such as "/api". The
// prefix is stripped before the inner router sees the request.
type Module struct {
	prefix string
	router http.Handler
	stack  middleware.Stack
}

// New creates a Module. The prefix must start with "/" and contain no further "/".
func New(prefix string, router http.Handler) (*Module, error) {
	if prefix == "" || !strings.HasPrefix(prefix, "/") || strings.Count(prefix, "/") != 1 {
		return nil, fmt.Errorf("invalid module prefix %q: want a single-level path like /api", prefix)
	}
	return &Module{prefix: prefix, router: router}, nil
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware stack.
func (m *Module) Use(mw middleware.Func) {
	m.stack.Use(mw)
}

// ServeHTTP strips the prefix and dispatches through the middleware stack.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	inner := req.Clone(req.Context())
	inner.URL = new(url.URL)
	*inner.URL = *req.URL
	inner.URL.Path = path
	inner.URL.RawPath = ""

	m.stack.Apply(m.router).ServeHTTP(w, inner)
}
