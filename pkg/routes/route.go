package routes

import (
	"net/http"

	"github.com/JaimeStill/intake/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI is optional.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
