package documents

import (
	"net/url"

	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "id").
	Project("name", "name").
	Project("type", "type").
	Project("storage_key", "storage_key").
	Project("entity_type", "entity_type").
	Project("entity_id", "entity_id").
	Project("content_type", "content_type").
	Project("size_bytes", "size_bytes").
	Project("page_count", "page_count").
	Project("hash", "hash").
	Project("status", "status").
	Project("uploaded_at", "uploaded_at").
	Project("updated_at", "updated_at")

const returning = "id, name, type, storage_key, entity_type, entity_id, content_type, size_bytes, page_count, hash, status, uploaded_at, updated_at"

var defaultSort = query.SortField{Field: "uploaded_at", Descending: true}

var repoErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalidEntity,
}

// Filters narrows document queries. Nil fields are ignored. Name matches
// as a case-insensitive substring; the rest match exactly.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	EntityType  *string `json:"entity_type,omitempty"`
	EntityID    *string `json:"entity_id,omitempty"`
	Type        *string `json:"type,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
	Name        *string `json:"name,omitempty"`
}

// Apply adds filter conditions to b.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereEquals("entity_type", f.EntityType).
		WhereEquals("entity_id", f.EntityID).
		WhereEquals("type", f.Type).
		WhereEquals("content_type", f.ContentType).
		WhereContains("name", f.Name)
}

// FiltersFromQuery reads filters from URL query parameters of the same names.
func FiltersFromQuery(values url.Values) Filters {
	get := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}

	return Filters{
		Status:      get("status"),
		EntityType:  get("entity_type"),
		EntityID:    get("entity_id"),
		Type:        get("type"),
		ContentType: get("content_type"),
		Name:        get("name"),
	}
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Name,
		&d.Type,
		&d.StorageKey,
		&d.EntityType,
		&d.EntityID,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.Hash,
		&d.Status,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	return d, err
}
