// Package documents stores the files attached to dealership records and
// tracks their review status.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Review statuses. Documents start pending and move once to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Entity types a document can be attached to.
const (
	EntityEmployee    = "employee"
	EntityCustomer    = "customer"
	EntityVehicle     = "vehicle"
	EntityTransaction = "transaction"
	EntityNone        = "none"
)

var entityTypes = []string{
	EntityEmployee, EntityCustomer, EntityVehicle, EntityTransaction, EntityNone,
}

// Document is a stored file and its review state.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	StorageKey  string    `json:"storage_key"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	Hash        string    `json:"hash"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// File is one uploaded file's raw bytes. ContentType may be empty and is
// then sniffed from Data.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IngestCommand stores a batch of files against one entity. Either every
// file is stored or none is.
type IngestCommand struct {
	EntityType string
	EntityID   string
	Type       string
	Files      []File
}

// SignatureResult reports a signature check.
type SignatureResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Valid      bool      `json:"valid"`
}
