package documents

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/pagination"
)

// System defines the document store used by the intake workflow and the console.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error)
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	// ListByEntity returns an entity's documents in upload order.
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Document, error)

	// Ingest stores every file of the batch or none of them.
	Ingest(ctx context.Context, cmd IngestCommand) ([]Document, error)
	// Approve and Reject move a pending document to its final status.
	// Any other starting status returns ErrInvalidTransition.
	Approve(ctx context.Context, id uuid.UUID) (*Document, error)
	Reject(ctx context.Context, id uuid.UUID) (*Document, error)

	ValidateSignature(ctx context.Context, id uuid.UUID) (bool, error)
	Export(ctx context.Context, filters Filters, w io.Writer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Config holds document storage settings.
type Config struct {
	// DownloadPrefix is prepended to storage keys to form Document.URL.
	DownloadPrefix string
	// MaxFileSize bounds a single file. Zero disables the check.
	MaxFileSize int64
}
