package documents_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/pdftest"
	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/storage"
)

type fakeStorage struct {
	mu       sync.Mutex
	failOn   string
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	if f.failOn != "" && strings.HasSuffix(key, f.failOn) {
		return errors.New("connection reset")
	}
	io.Copy(io.Discard, r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, key)
	return nil
}

func (f *fakeStorage) Download(context.Context, string) (*storage.BlobResult, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) Exists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeStorage) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", storage.ErrSigningUnsupported
}

// The database is never reached in these cases, so it is left nil.
func newIngestRepo(store storage.System) documents.System {
	return documents.New(
		nil,
		store,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 25, MaxPageSize: 100},
		documents.Config{DownloadPrefix: "/api/storage/download/", MaxFileSize: 1024 * 1024},
	)
}

func TestIngestRejectsBeforeUpload(t *testing.T) {
	pdf := pdftest.Build(1, false)

	tests := []struct {
		name string
		cmd  documents.IngestCommand
		want error
	}{
		{
			"no files",
			documents.IngestCommand{EntityType: "transaction", EntityID: "T-1"},
			documents.ErrNoFiles,
		},
		{
			"unknown entity",
			documents.IngestCommand{EntityType: "dealer", EntityID: "D-1", Files: []documents.File{{Name: "a.pdf", Data: pdf}}},
			documents.ErrInvalidEntity,
		},
		{
			"entity without id",
			documents.IngestCommand{EntityType: "vehicle", Files: []documents.File{{Name: "a.pdf", Data: pdf}}},
			documents.ErrInvalidEntity,
		},
		{
			"none with id",
			documents.IngestCommand{EntityType: "none", EntityID: "x", Files: []documents.File{{Name: "a.pdf", Data: pdf}}},
			documents.ErrInvalidEntity,
		},
		{
			"empty file",
			documents.IngestCommand{EntityType: "transaction", EntityID: "T-1", Files: []documents.File{{Name: "a.pdf"}}},
			documents.ErrInvalidFile,
		},
		{
			"unsupported type in batch",
			documents.IngestCommand{EntityType: "transaction", EntityID: "T-1", Files: []documents.File{
				{Name: "a.pdf", Data: pdf},
				{Name: "notes.txt", Data: []byte("plain text")},
			}},
			documents.ErrUnsupportedType,
		},
		{
			"corrupt pdf",
			documents.IngestCommand{EntityType: "transaction", EntityID: "T-1", Files: []documents.File{
				{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7 truncated")},
			}},
			documents.ErrInvalidFile,
		},
		{
			"too large",
			documents.IngestCommand{EntityType: "transaction", EntityID: "T-1", Files: []documents.File{
				{Name: "big.png", ContentType: "image/png", Data: make([]byte, 2*1024*1024)},
			}},
			documents.ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStorage{}
			_, err := newIngestRepo(store).Ingest(context.Background(), tt.cmd)

			if !errors.Is(err, tt.want) {
				t.Fatalf("Ingest() error = %v, want %v", err, tt.want)
			}
			if len(store.uploaded) != 0 {
				t.Errorf("uploaded %v before rejecting batch", store.uploaded)
			}
		})
	}
}

func TestIngestUploadFailureCompensates(t *testing.T) {
	store := &fakeStorage{failOn: "broken.pdf"}
	pdf := pdftest.Build(1, false)

	_, err := newIngestRepo(store).Ingest(context.Background(), documents.IngestCommand{
		EntityType: "transaction",
		EntityID:   "T-1",
		Files: []documents.File{
			{Name: "first.pdf", Data: pdf},
			{Name: "broken.pdf", Data: pdf},
			{Name: "third.pdf", Data: pdf},
		},
	})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("error does not name failed file: %v", err)
	}

	uploaded := slices.Sorted(slices.Values(store.uploaded))
	deleted := slices.Sorted(slices.Values(store.deleted))
	if !slices.Equal(uploaded, deleted) {
		t.Errorf("deleted %v, want every uploaded blob %v", deleted, uploaded)
	}
}
