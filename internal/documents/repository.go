package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
	"github.com/JaimeStill/intake/pkg/storage"
)

const uploadConcurrency = 4

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	cfg        Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	cfg Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
		cfg:        cfg,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "name", "type", "entity_id").
		OrderByFields(page.Sort)
	filters.Apply(qb)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, r.scan)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, r.scan)
	if err != nil {
		return nil, repoErrors.Map(err)
	}
	return &d, nil
}

func (r *repo) ListByEntity(ctx context.Context, entityType, entityID string) ([]Document, error) {
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "uploaded_at"}).
		WhereEquals("entity_type", entityType).
		WhereEquals("entity_id", entityID).
		Build()

	docs, err := repository.QueryMany(ctx, r.db, q, args, r.scan)
	if err != nil {
		return nil, fmt.Errorf("list %s %s documents: %w", entityType, entityID, err)
	}
	return docs, nil
}

type staged struct {
	id   uuid.UUID
	key  string
	file File
	info inspection
}

func (r *repo) Ingest(ctx context.Context, cmd IngestCommand) ([]Document, error) {
	if len(cmd.Files) == 0 {
		return nil, ErrNoFiles
	}
	if cmd.EntityType == "" {
		cmd.EntityType = EntityNone
	}
	if err := validateEntity(cmd.EntityType, cmd.EntityID); err != nil {
		return nil, err
	}
	if cmd.Type == "" {
		cmd.Type = "document"
	}

	batch := make([]staged, len(cmd.Files))
	for i, f := range cmd.Files {
		info, err := inspect(f, r.cfg.MaxFileSize)
		if err != nil {
			return nil, err
		}
		id := uuid.New()
		batch[i] = staged{
			id:   id,
			key:  fmt.Sprintf("documents/%s/%s", id, sanitizeFilename(f.Name)),
			file: f,
			info: info,
		}
	}

	uploaded, err := r.uploadAll(ctx, batch)
	if err != nil {
		r.discard(ctx, uploaded)
		return nil, err
	}

	docs, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Document, error) {
		out := make([]Document, 0, len(batch))
		for _, s := range batch {
			d, err := repository.QueryOne(ctx, tx, insertSQL, []any{
				s.id, s.file.Name, cmd.Type, s.key,
				cmd.EntityType, cmd.EntityID,
				s.info.contentType, int64(len(s.file.Data)), s.info.pageCount, s.info.hash,
			}, r.scan)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	})
	if err != nil {
		r.discard(ctx, uploaded)
		return nil, fmt.Errorf("insert documents: %w", repoErrors.Map(err))
	}

	r.logger.Info(
		"documents ingested",
		"count", len(docs),
		"entity_type", cmd.EntityType,
		"entity_id", cmd.EntityID,
	)
	return docs, nil
}

const insertSQL = `
	INSERT INTO documents(id, name, type, storage_key, entity_type, entity_id, content_type, size_bytes, page_count, hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + returning

// uploadAll returns the keys that were stored, including on failure.
func (r *repo) uploadAll(ctx context.Context, batch []staged) ([]string, error) {
	var (
		mu       sync.Mutex
		uploaded []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for _, s := range batch {
		g.Go(func() error {
			if err := r.storage.Upload(gctx, s.key, bytes.NewReader(s.file.Data), s.info.contentType); err != nil {
				return fmt.Errorf("upload %s: %w", s.file.Name, err)
			}
			mu.Lock()
			uploaded = append(uploaded, s.key)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return uploaded, err
}

// discard deletes blobs left behind by a failed ingest. It runs even when
// ctx has been cancelled.
func (r *repo) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", err)
		}
	}
}

func (r *repo) Approve(ctx context.Context, id uuid.UUID) (*Document, error) {
	return r.transition(ctx, id, StatusApproved)
}

func (r *repo) Reject(ctx context.Context, id uuid.UUID) (*Document, error) {
	return r.transition(ctx, id, StatusRejected)
}

func (r *repo) transition(ctx context.Context, id uuid.UUID, status string) (*Document, error) {
	q := `UPDATE documents SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + returning

	d, err := repository.QueryOne(ctx, r.db, q, []any{id, status}, r.scan)
	if errors.Is(err, sql.ErrNoRows) {
		current, findErr := r.Find(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, current.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("set document %s %s: %w", id, status, err)
	}

	r.logger.Info("document reviewed", "id", id, "status", status)
	return &d, nil
}

func (r *repo) ValidateSignature(ctx context.Context, id uuid.UUID) (bool, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return false, err
	}

	blob, err := r.storage.Download(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("document blob missing", "id", id, "key", doc.StorageKey)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("download %s: %w", id, err)
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", id, err)
	}

	valid := checkSignature(data, doc.ContentType, doc.Hash)
	r.logger.Info("signature checked", "id", id, "valid", valid)
	return valid, nil
}

func (r *repo) Export(ctx context.Context, filters Filters, w io.Writer) error {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)
	q, args := qb.Build()

	docs, err := repository.QueryMany(ctx, r.db, q, args, r.scan)
	if err != nil {
		return fmt.Errorf("query documents: %w", err)
	}

	return WriteXLSX(w, docs)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM documents WHERE id = $1", id); err != nil {
		return repoErrors.Map(err)
	}

	if err := r.storage.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("blob delete failed after row delete", "key", doc.StorageKey, "error", err)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) scan(s repository.Scanner) (Document, error) {
	d, err := scanDocument(s)
	if err != nil {
		return d, err
	}
	d.URL = r.cfg.DownloadPrefix + d.StorageKey
	return d, nil
}

func validateEntity(entityType, entityID string) error {
	if !slices.Contains(entityTypes, entityType) {
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidEntity, entityType)
	}
	if entityType == EntityNone && entityID != "" {
		return fmt.Errorf("%w: entity type none takes no id", ErrInvalidEntity)
	}
	if entityType != EntityNone && entityID == "" {
		return fmt.Errorf("%w: %s requires an id", ErrInvalidEntity, entityType)
	}
	return nil
}
