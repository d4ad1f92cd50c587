package packets

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/openapi"
	"github.com/JaimeStill/intake/pkg/routes"
)

// Handler provides the packet generation endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "packets"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/packets",
		Tags:    []string{"Packets"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method: "POST", Pattern: "/{transactionId}", Handler: h.Generate,
				OpenAPI: &openapi.Operation{
					Summary:     "Regenerate a transaction's signing packet",
					Description: "Merges the transaction's non-rejected PDF documents in upload order.",
					Parameters:  []*openapi.Parameter{openapi.PathParam("transactionId", "Transaction id")},
					Responses: map[int]*openapi.Response{
						201: openapi.JSONResponse("Generated packet", "Packet"),
						400: openapi.ResponseRef("BadRequest"),
						409: openapi.ResponseRef("Conflict"),
						422: openapi.ResponseRef("Unprocessable"),
					},
				},
			},
		},
	}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	packet, err := h.sys.Generate(r.Context(), r.PathValue("transactionId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, packet)
}
