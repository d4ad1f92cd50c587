// Package routes registers grouped handlers on a ServeMux and documents them.
package routes

import (
	"net/http"

	"github.com/JaimeStill/intake/pkg/openapi"
)

// Group organizes routes under a common prefix. Tags and Schemas feed the
// OpenAPI description.
type Group struct {
	Prefix   string
	Tags     []string
	Schemas  map[string]*openapi.Schema
	Routes   []Route
	Children []Group
}

// Register adds all routes from groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		walk("", nil, g, func(path string, _ []string, r Route) {
			mux.HandleFunc(r.Method+" "+path, r.Handler)
		})
	}
}

// Document adds every route carrying an OpenAPI operation to spec, with
// paths rooted at basePath. Operations without tags inherit the group's.
func Document(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, g := range groups {
		walk(basePath, nil, g, func(path string, tags []string, r Route) {
			if r.OpenAPI == nil {
				return
			}
			op := *r.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = tags
			}
			spec.AddOperation(r.Method, path, &op)
		})
		collectSchemas(spec, g)
	}
}

func walk(prefix string, tags []string, g Group, fn func(string, []string, Route)) {
	full := prefix + g.Prefix
	if len(g.Tags) > 0 {
		tags = g.Tags
	}
	for _, r := range g.Routes {
		fn(full+r.Pattern, tags, r)
	}
	for _, child := range g.Children {
		walk(full, tags, child, fn)
	}
}

func collectSchemas(spec *openapi.Spec, g Group) {
	if g.Schemas != nil {
		spec.Components.AddSchemas(g.Schemas)
	}
	for _, child := range g.Children {
		collectSchemas(spec, child)
	}
}
