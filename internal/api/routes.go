package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/pkg/openapi"
	"github.com/JaimeStill/intake/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	groups := []routes.Group{
		domain.Intake.Handler(maxUpload).Routes(),
		domain.Documents.Handler(maxUpload).Routes(),
		domain.Packets.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	routes.Document(spec, cfg.API.BasePath, groups...)

	specHandler, err := spec.Handler()
	if err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", specHandler)

	return nil
}
