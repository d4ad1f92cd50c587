package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/intake/internal/api"
	"github.com/JaimeStill/intake/internal/backend"
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/database"
	"github.com/JaimeStill/intake/pkg/middleware"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=intakestore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/intakestore;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "intake",
			User:            "intake",
			Password:        "intake",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			Provider:         storage.ProviderAzure,
			Container:        "documents",
			URLExpiry:        "15m",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "100MB",
			MaxFileSize:   "20MB",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Intake: config.IntakeConfig{
			MaxAttempts: 3,
			CloseDelay:  "1.5s",
			ToastTTL:    "5s",
			Backend:     config.BackendLocal,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t, cfg)

	m, domain, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
	if domain.Documents == nil || domain.Packets == nil || domain.Intake == nil {
		t.Errorf("domain has nil systems: %+v", domain)
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t, cfg)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
	if runtime.Auth != nil {
		t.Error("runtime auth should be nil without an issuer")
	}
}

func TestNewDomainBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		url     string
		wantErr error
	}{
		{name: "local", backend: config.BackendLocal},
		{name: "remote", backend: config.BackendRemote, url: "http://dms.internal:8080"},
		{name: "remote without host", backend: config.BackendRemote, url: "not a url", wantErr: backend.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Intake.Backend = tt.backend
			cfg.Intake.BackendURL = tt.url
			runtime := api.NewRuntime(cfg, setupInfra(t, cfg))

			domain, err := api.NewDomain(cfg, runtime)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewDomain() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDomain() error = %v", err)
			}
			if domain.Intake == nil {
				t.Fatal("intake system is nil")
			}
		})
	}
}

func TestModuleServesOpenAPI(t *testing.T) {
	cfg := validConfig()
	m, _, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, path := range []string{
		"/api/intake/sessions",
		"/api/intake/sessions/{id}/confirm",
		"/api/documents",
		"/api/packets/{transactionId}",
		"/api/storage/download/{key}",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("missing path %s", path)
		}
	}
}

func TestModuleOpensIntakeSession(t *testing.T) {
	cfg := validConfig()
	m, _, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/intake/sessions", strings.NewReader(`{"transaction_id":"T-100"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var snap struct {
		ID            string `json:"id"`
		TransactionID string `json:"transaction_id"`
		Phase         string `json:"phase"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.ID == "" || snap.TransactionID != "T-100" || snap.Phase != "idle" {
		t.Errorf("snapshot: got %+v", snap)
	}
}

func TestModuleRequiresBearerWhenAuthEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Auth = auth.Config{Issuer: "https://login.example.com", ClientID: "intake"}
	infra := setupInfra(t, cfg)
	if infra.Auth == nil {
		t.Fatal("infrastructure auth is nil with an issuer configured")
	}

	m, _, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "issuer not discovered", header: "Bearer abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}
