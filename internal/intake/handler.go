package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/openapi"
	"github.com/JaimeStill/intake/pkg/routes"
)

var errInvalidID = errors.New("invalid session id")

// Handler exposes intake sessions over HTTP.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "intake"),
		maxUploadSize: maxUploadSize,
	}
}

// ConfirmRequest carries the human signature decision.
type ConfirmRequest struct {
	Valid *bool `json:"valid"`
}

func (h *Handler) Routes() routes.Group {
	idParam := openapi.PathParam("id", "Session id")
	snapshot := func(status int) map[int]*openapi.Response {
		return map[int]*openapi.Response{
			status: openapi.JSONResponse("Session snapshot", "IntakeSession"),
			404:    openapi.ResponseRef("NotFound"),
			409:    openapi.ResponseRef("Conflict"),
			502:    openapi.ResponseRef("BadGateway"),
		}
	}

	return routes.Group{
		Prefix:  "/intake/sessions",
		Tags:    []string{"Intake"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method: "POST", Pattern: "", Handler: h.Open,
				OpenAPI: &openapi.Operation{
					Summary:     "Open an intake session",
					RequestBody: openapi.JSONBody("IntakeTarget"),
					Responses: map[int]*openapi.Response{
						201: openapi.JSONResponse("Session snapshot", "IntakeSession"),
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Get,
				OpenAPI: &openapi.Operation{Summary: "Get a session snapshot", Parameters: []*openapi.Parameter{idParam}, Responses: snapshot(200)},
			},
			{
				Method: "POST", Pattern: "/{id}/upload", Handler: h.Upload,
				OpenAPI: &openapi.Operation{
					Summary:     "Upload a document batch",
					Description: "Replaces any batch still awaiting signature.",
					Parameters:  []*openapi.Parameter{idParam},
					RequestBody: openapi.MultipartBody("files", "type"),
					Responses:   snapshot(200),
				},
			},
			{
				Method: "POST", Pattern: "/{id}/confirm", Handler: h.Confirm,
				OpenAPI: &openapi.Operation{
					Summary:     "Record the signature decision",
					Parameters:  []*openapi.Parameter{idParam},
					RequestBody: openapi.JSONBody("IntakeConfirm"),
					Responses:   snapshot(200),
				},
			},
			{
				Method: "POST", Pattern: "/{id}/regenerate", Handler: h.Regenerate,
				OpenAPI: &openapi.Operation{
					Summary:     "Regenerate the transaction packet",
					Description: "Returns 409 once the attempt limit is reached.",
					Parameters:  []*openapi.Parameter{idParam},
					Responses:   snapshot(200),
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}/notifications/{nid}", Handler: h.Dismiss,
				OpenAPI: &openapi.Operation{
					Summary:    "Dismiss a notification",
					Parameters: []*openapi.Parameter{idParam, openapi.PathParam("nid", "Notification id")},
					Responses:  map[int]*openapi.Response{204: {Description: "Dismissed"}, 404: openapi.ResponseRef("NotFound")},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Close,
				OpenAPI: &openapi.Operation{
					Summary:    "Close a session",
					Parameters: []*openapi.Parameter{idParam},
					Responses:  map[int]*openapi.Response{204: {Description: "Closed"}, 404: openapi.ResponseRef("NotFound")},
				},
			},
		},
	}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var target Target
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Open(r.Context(), target)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session) error { return nil })
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session) error {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return s.FailUpload(Classify(documents.ErrFileTooLarge))
			}
			return s.FailUpload(errors.Join(ErrInvalidRequest, err))
		}

		files, err := documents.ReadMultipartFiles(r, "files")
		if errors.Is(err, documents.ErrNoFiles) {
			return ErrNoFiles
		}
		if err != nil {
			return s.FailUpload(Classify(err))
		}

		return s.Upload(r.Context(), r.FormValue("type"), files)
	})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session) error {
		var req ConfirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Valid == nil {
			return fmt.Errorf("%w: body must be {\"valid\": true|false}", ErrInvalidRequest)
		}
		return s.Confirm(r.Context(), *req.Valid)
	})
}

func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session) error {
		return s.Regenerate(r.Context())
	})
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	nid, err := strconv.Atoi(r.PathValue("nid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	if err := s.Dismiss(nid); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.sys.Close(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(r *http.Request) (*Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, errInvalidID)
	}
	return h.sys.Get(id)
}

// withSession runs fn against the addressed session and responds with its
// snapshot. Workflow failures are also recorded on the session as
// notifications, so the error body is a summary.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*Session) error) {
	s, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := fn(s); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s.Snapshot())
}
