package openapi

import "maps"

var errorBody = map[string]*MediaType{
	"application/json": {Schema: SchemaRef("Error")},
}

// NewComponents creates Components holding the error schema and the
// responses every handler can produce.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":    {Description: "Invalid request", Content: errorBody},
			"NotFound":      {Description: "Resource not found", Content: errorBody},
			"Conflict":      {Description: "Request conflicts with current state", Content: errorBody},
			"Unprocessable": {Description: "Content was rejected", Content: errorBody},
			"BadGateway":    {Description: "Backend unavailable", Content: errorBody},
		},
	}
}

// AddSchemas merges schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
