package intake

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/packets"
)

type localBackend struct {
	docs    documents.System
	packets packets.System
}

// NewLocalBackend serves sessions from the in-process document and packet systems.
func NewLocalBackend(docs documents.System, pkts packets.System) Backend {
	return &localBackend{docs: docs, packets: pkts}
}

func (b *localBackend) Ingest(ctx context.Context, target Target, docType string, files []documents.File) ([]documents.Document, error) {
	return b.docs.Ingest(ctx, documents.IngestCommand{
		EntityType: target.EntityType,
		EntityID:   target.EntityID,
		Type:       docType,
		Files:      files,
	})
}

func (b *localBackend) GeneratePDF(ctx context.Context, transactionID string) (*packets.Packet, error) {
	return b.packets.Generate(ctx, transactionID)
}

func (b *localBackend) ValidateSignature(ctx context.Context, id uuid.UUID) (bool, error) {
	return b.docs.ValidateSignature(ctx, id)
}

func (b *localBackend) Approve(ctx context.Context, id uuid.UUID) error {
	_, err := b.docs.Approve(ctx, id)
	return err
}

func (b *localBackend) Reject(ctx context.Context, id uuid.UUID) error {
	_, err := b.docs.Reject(ctx, id)
	return err
}
