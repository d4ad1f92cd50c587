package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/pkg/lifecycle"
)

type manager struct {
	ctx        context.Context
	backend    Backend
	cfg        Config
	completion Completion
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// New creates a session manager. Sessions derive their context from ctx,
// so cancelling it cancels every in-flight backend call. completion may be nil.
func New(ctx context.Context, backend Backend, cfg Config, completion Completion, logger *slog.Logger) System {
	return &manager{
		ctx:        ctx,
		backend:    backend,
		cfg:        cfg,
		completion: completion,
		logger:     logger.With("system", "intake"),
		sessions:   make(map[uuid.UUID]*Session),
	}
}

func (m *manager) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, m.logger, maxUploadSize)
}

func (m *manager) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		n := m.CloseAll()
		m.logger.Info("intake sessions closed", "count", n)
	})
	return nil
}

func (m *manager) Open(ctx context.Context, target Target) (*Session, error) {
	if err := m.ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: service shutting down", ErrSessionClosed)
	}

	target, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	s := newSession(m.ctx, target, m.backend, m.cfg, m.completion, m.logger, m.remove)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	s.logger.Info("session opened", "entity_type", target.EntityType, "entity_id", target.EntityID)
	return s, nil
}

func (m *manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *manager) Close(id uuid.UUID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

func (m *manager) CloseAll() int {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	n := 0
	for _, s := range open {
		if s.Close() {
			n++
		}
	}
	return n
}

func (m *manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *manager) remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// normalizeTarget attaches uploads to the transaction itself when no other
// entity is named.
func normalizeTarget(t Target) (Target, error) {
	t.TransactionID = strings.TrimSpace(t.TransactionID)
	t.EntityType = strings.TrimSpace(t.EntityType)
	t.EntityID = strings.TrimSpace(t.EntityID)

	if t.TransactionID == "" {
		return t, fmt.Errorf("%w: transaction id is required", ErrInvalidTarget)
	}

	switch t.EntityType {
	case "":
		t.EntityType = documents.EntityTransaction
		t.EntityID = t.TransactionID
	case documents.EntityNone:
		if t.EntityID != "" {
			return t, fmt.Errorf("%w: entity type none takes no id", ErrInvalidTarget)
		}
	case documents.EntityEmployee, documents.EntityCustomer, documents.EntityVehicle, documents.EntityTransaction:
		if t.EntityID == "" {
			return t, fmt.Errorf("%w: %s requires an id", ErrInvalidTarget, t.EntityType)
		}
	default:
		return t, fmt.Errorf("%w: unknown entity type %q", ErrInvalidTarget, t.EntityType)
	}

	return t, nil
}
