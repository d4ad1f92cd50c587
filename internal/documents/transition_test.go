package documents_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/pkg/pagination"
)

// envTestDSN names a migrated Postgres database. Tests that need it are
// skipped when it is unset.
const envTestDSN = "INTAKE_TEST_DB_DSN"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", envTestDSN)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.PingContext(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func insertPending(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO documents(id, name, type, storage_key, entity_type, entity_id, content_type, size_bytes)
		VALUES ($1, 'scan.pdf', 'scan', $2, 'transaction', 'T-TEST', 'application/pdf', 8)`,
		id, "documents/test/"+id.String()+"/scan.pdf",
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() {
		db.ExecContext(context.Background(), `DELETE FROM documents WHERE id = $1`, id)
	})
	return id
}

func TestTransitionsLeavePendingOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	sys := documents.New(
		db,
		&fakeStorage{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 25, MaxPageSize: 100},
		documents.Config{DownloadPrefix: "/api/storage/download/"},
	)
	ctx := context.Background()

	type step func(context.Context, uuid.UUID) (*documents.Document, error)

	tests := []struct {
		name   string
		first  step
		second step
		final  string
	}{
		{"approved cannot be rejected", sys.Approve, sys.Reject, documents.StatusApproved},
		{"approved cannot be approved again", sys.Approve, sys.Approve, documents.StatusApproved},
		{"rejected cannot be approved", sys.Reject, sys.Approve, documents.StatusRejected},
		{"rejected cannot be rejected again", sys.Reject, sys.Reject, documents.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := insertPending(t, db)

			d, err := tt.first(ctx, id)
			if err != nil {
				t.Fatalf("first transition: %v", err)
			}
			if d.Status != tt.final {
				t.Fatalf("status = %s, want %s", d.Status, tt.final)
			}

			if _, err := tt.second(ctx, id); !errors.Is(err, documents.ErrInvalidTransition) {
				t.Fatalf("second transition error = %v, want ErrInvalidTransition", err)
			}

			got, err := sys.Find(ctx, id)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if got.Status != tt.final {
				t.Errorf("stored status = %s, want %s", got.Status, tt.final)
			}
		})
	}
}

func TestTransitionUnknownDocument(t *testing.T) {
	db := openTestDB(t)
	sys := documents.New(
		db,
		&fakeStorage{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 25, MaxPageSize: 100},
		documents.Config{},
	)

	if _, err := sys.Approve(context.Background(), uuid.New()); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Approve() error = %v, want ErrNotFound", err)
	}
}
