package documents

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/openapi"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/routes"
)

var errInvalidID = errors.New("invalid document id")

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for document endpoints.
func (h *Handler) Routes() routes.Group {
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Document id")}
	docResponse := map[int]*openapi.Response{
		200: openapi.JSONResponse("Document", "Document"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	}

	return routes.Group{
		Prefix:  "/documents",
		Tags:    []string{"Documents"},
		Schemas: schemas,
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:    "List documents",
					Parameters: append(openapi.PageParams(), openapi.QueryParam("status", "Review status"), openapi.QueryParam("entity_type", "Entity type"), openapi.QueryParam("entity_id", "Entity id")),
					Responses:  map[int]*openapi.Response{200: openapi.JSONResponse("Page of documents", "DocumentPage")},
				},
			},
			{
				Method: "POST", Pattern: "/search", Handler: h.Search,
				OpenAPI: &openapi.Operation{
					Summary:     "Search documents",
					RequestBody: openapi.JSONBody("DocumentSearch"),
					Responses:   map[int]*openapi.Response{200: openapi.JSONResponse("Page of documents", "DocumentPage"), 400: openapi.ResponseRef("BadRequest")},
				},
			},
			{
				Method: "GET", Pattern: "/export", Handler: h.Export,
				OpenAPI: &openapi.Operation{
					Summary:    "Export documents as XLSX",
					Parameters: []*openapi.Parameter{openapi.QueryParam("status", "Review status"), openapi.QueryParam("entity_type", "Entity type"), openapi.QueryParam("entity_id", "Entity id")},
					Responses:  map[int]*openapi.Response{200: {Description: "Workbook"}},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{Summary: "Find a document", Parameters: idParam, Responses: docResponse},
			},
			{
				Method: "POST", Pattern: "", Handler: h.Ingest,
				OpenAPI: &openapi.Operation{
					Summary:     "Ingest a batch of files",
					Description: "Stores every file or none.",
					RequestBody: openapi.MultipartBody("files", "entity_type", "entity_id", "type"),
					Responses: map[int]*openapi.Response{
						201: {Description: "Created documents", Content: map[string]*openapi.MediaType{"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Document")}}}},
						400: openapi.ResponseRef("BadRequest"),
						422: openapi.ResponseRef("Unprocessable"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve,
				OpenAPI: &openapi.Operation{Summary: "Approve a pending document", Parameters: idParam, Responses: docResponse},
			},
			{
				Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject,
				OpenAPI: &openapi.Operation{Summary: "Reject a pending document", Parameters: idParam, Responses: docResponse},
			},
			{
				Method: "GET", Pattern: "/{id}/signature", Handler: h.Signature,
				OpenAPI: &openapi.Operation{
					Summary:    "Validate a document signature",
					Parameters: idParam,
					Responses:  map[int]*openapi.Response{200: openapi.JSONResponse("Signature result", "SignatureResult"), 404: openapi.ResponseRef("NotFound")},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Delete,
				OpenAPI: &openapi.Operation{Summary: "Delete a document", Parameters: idParam, Responses: map[int]*openapi.Response{204: {Description: "Deleted"}, 404: openapi.ResponseRef("NotFound")}},
			},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id uuid.UUID) (any, error) {
		return h.sys.Find(r.Context(), id)
	})
}

// Ingest reads every part named "files" from a multipart form.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	files, err := ReadMultipartFiles(r, "files")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	docs, err := h.sys.Ingest(r.Context(), IngestCommand{
		EntityType: r.FormValue("entity_type"),
		EntityID:   r.FormValue("entity_id"),
		Type:       r.FormValue("type"),
		Files:      files,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, docs)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id uuid.UUID) (any, error) {
		return h.sys.Approve(r.Context(), id)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id uuid.UUID) (any, error) {
		return h.sys.Reject(r.Context(), id)
	})
}

func (h *Handler) Signature(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id uuid.UUID) (any, error) {
		valid, err := h.sys.ValidateSignature(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return SignatureResult{DocumentID: id, Valid: valid}, nil
	})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="documents.xlsx"`)

	if err := h.sys.Export(r.Context(), FiltersFromQuery(r.URL.Query()), w); err != nil {
		w.Header().Del("Content-Disposition")
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) withID(w http.ResponseWriter, r *http.Request, fn func(uuid.UUID) (any, error)) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return
	}

	result, err := fn(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ReadMultipartFiles loads every file part under field from a parsed
// multipart form. A form without files returns ErrNoFiles.
func ReadMultipartFiles(r *http.Request, field string) ([]File, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, ErrNoFiles
	}

	headers := r.MultipartForm.File[field]
	files := make([]File, 0, len(headers))

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Join(ErrInvalidFile, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.Join(ErrInvalidFile, err)
		}

		files = append(files, File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return files, nil
}
