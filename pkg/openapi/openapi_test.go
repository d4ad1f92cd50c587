package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/intake/pkg/openapi"
)

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Overridden")

	var cfg openapi.Config
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Title != "Overridden" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("Description default not applied")
	}
}

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{
		Title:     "Intake",
		ServerURL: "http://localhost:8080",
	}, "0.1.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi = %s", spec.OpenAPI)
	}
	if spec.Info.Version != "0.1.0" {
		t.Errorf("version = %s", spec.Info.Version)
	}
	if len(spec.Servers) != 1 {
		t.Fatalf("servers = %d, want 1", len(spec.Servers))
	}
	for _, name := range []string{"BadRequest", "NotFound", "Conflict", "Unprocessable", "BadGateway"} {
		if _, ok := spec.Components.Responses[name]; !ok {
			t.Errorf("missing response %s", name)
		}
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{}, "1")

	spec.AddOperation("GET", "/storage/download/{key...}", &openapi.Operation{Summary: "download"})
	spec.AddOperation("POST", "/sessions", &openapi.Operation{Summary: "open"})
	spec.AddOperation("GET", "/sessions", &openapi.Operation{Summary: "list"})

	if item := spec.Paths["/storage/download/{key}"]; item == nil || item.Get == nil {
		t.Error("wildcard path not normalized")
	}

	item := spec.Paths["/sessions"]
	if item == nil || item.Post == nil || item.Get == nil {
		t.Error("operations on same path not merged")
	}
}

func TestHandler(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{Title: "Intake"}, "1")
	spec.AddOperation("GET", "/healthz", &openapi.Operation{
		Responses: map[int]*openapi.Response{200: {Description: "ok"}},
	})

	h, err := spec.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v", decoded["openapi"])
	}
}

func TestMultipartBody(t *testing.T) {
	body := openapi.MultipartBody("files", "type")

	schema := body.Content["multipart/form-data"].Schema
	if schema.Properties["files"].Type != "array" {
		t.Error("files should be an array")
	}
	if schema.Properties["type"].Type != "string" {
		t.Error("type should be a string")
	}
}
