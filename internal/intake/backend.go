package intake

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/packets"
)

// Target identifies the transaction a session works on and the entity its
// uploads are attached to.
type Target struct {
	TransactionID string `json:"transaction_id"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
}

// Ingestor creates document records from uploaded files. It stores every
// file of a batch or none of them.
type Ingestor interface {
	Ingest(ctx context.Context, target Target, docType string, files []documents.File) ([]documents.Document, error)
}

// Generator regenerates a transaction's PDF packet.
type Generator interface {
	GeneratePDF(ctx context.Context, transactionID string) (*packets.Packet, error)
}

// Validator checks a stored document's signature.
type Validator interface {
	ValidateSignature(ctx context.Context, id uuid.UUID) (bool, error)
}

// Reviewer settles a pending document.
type Reviewer interface {
	Approve(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
}

// Backend is the full set of collaborators a session calls.
type Backend interface {
	Ingestor
	Generator
	Validator
	Reviewer
}
