package packets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/pkg/storage"
)

const downloadConcurrency = 4

type repo struct {
	docs    documents.System
	storage storage.System
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// New creates a packet generator over the document store.
func New(docs documents.System, store storage.System, logger *slog.Logger, cfg Config) System {
	return &repo{
		docs:    docs,
		storage: store,
		logger:  logger.With("system", "packets"),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Generate(ctx context.Context, transactionID string) (*Packet, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" || strings.ContainsAny(transactionID, `/\`) || transactionID == "." || transactionID == ".." {
		return nil, ErrInvalidTransaction
	}

	docs, err := r.docs.ListByEntity(ctx, documents.EntityTransaction, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction documents: %w", err)
	}

	sources := make([]documents.Document, 0, len(docs))
	for _, d := range docs {
		if d.Status == documents.StatusRejected || d.ContentType != "application/pdf" {
			continue
		}
		sources = append(sources, d)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, transactionID)
	}

	data, err := r.download(ctx, sources)
	if err != nil {
		return nil, err
	}

	merged, pages, err := merge(data)
	if err != nil {
		return nil, err
	}

	generated := r.now().UTC()
	stamp := generated.Format("20060102T150405Z")
	key := fmt.Sprintf("packets/%s/%s.pdf", transactionID, stamp)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(merged), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload packet: %w", err)
	}

	url, err := r.url(ctx, key)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"packet generated",
		"transaction_id", transactionID,
		"sources", len(sources),
		"pages", pages,
		"key", key,
	)

	return &Packet{
		TransactionID: transactionID,
		URL:           url,
		Filename:      fmt.Sprintf("%s-%s.pdf", transactionID, stamp),
		StorageKey:    key,
		PageCount:     pages,
		Sources:       len(sources),
		GeneratedAt:   generated,
	}, nil
}

// download fetches every source concurrently, preserving order.
func (r *repo) download(ctx context.Context, sources []documents.Document) ([][]byte, error) {
	data := make([][]byte, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)

	for i, d := range sources {
		g.Go(func() error {
			blob, err := r.storage.Download(gctx, d.StorageKey)
			if err != nil {
				return fmt.Errorf("download %s: %w", d.Name, err)
			}
			defer blob.Body.Close()

			b, err := io.ReadAll(blob.Body)
			if err != nil {
				return fmt.Errorf("read %s: %w", d.Name, err)
			}
			data[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *repo) url(ctx context.Context, key string) (string, error) {
	url, err := r.storage.SignedURL(ctx, key, r.cfg.URLExpiry)
	if errors.Is(err, storage.ErrSigningUnsupported) {
		return r.cfg.DownloadPrefix + key, nil
	}
	if err != nil {
		return "", fmt.Errorf("sign packet url: %w", err)
	}
	return url, nil
}

func merge(sources [][]byte) ([]byte, int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	readers := make([]io.ReadSeeker, len(sources))
	for i, b := range sources {
		readers[i] = bytes.NewReader(b)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}

	pages, err := api.PageCount(bytes.NewReader(buf.Bytes()), conf)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}

	return buf.Bytes(), pages, nil
}
