package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/packets"
)

var errSignatureInvalid = errors.New("signature failed validation")

// Session is one open intake modal: a batch upload, a signature decision,
// and bounded packet regeneration for a single transaction.
//
// State is guarded by mu, which is never held across a backend call. A
// session in a busy phase rejects other actions with ErrBusy. Closing the
// session cancels its context; results that arrive afterwards are dropped.
type Session struct {
	id       uuid.UUID
	target   Target
	backend  Backend
	cfg      Config
	logger   *slog.Logger
	counter  *Counter
	notifier *Notifier
	ctx      context.Context
	cancel   context.CancelFunc
	onClose  func(uuid.UUID)

	mu        sync.Mutex
	phase     Phase
	stage     Stage
	batch     []documents.Document
	approved  map[uuid.UUID]bool
	packet    *packets.Packet
	lastErr   string
	createdAt time.Time
	updatedAt time.Time
	closer    *time.Timer
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID uuid.UUID `json:"id"`
	Target
	Phase         Phase                `json:"phase"`
	Stage         Stage                `json:"stage,omitempty"`
	Attempts      int                  `json:"attempts"`
	MaxAttempts   int                  `json:"max_attempts"`
	CanRegenerate bool                 `json:"can_regenerate"`
	Documents     []documents.Document `json:"documents"`
	Packet        *packets.Packet      `json:"packet,omitempty"`
	Notifications []Notification       `json:"notifications"`
	Banner        string               `json:"banner,omitempty"`
	Error         string               `json:"error,omitempty"`
	Completed     bool                 `json:"completed"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func newSession(
	parent context.Context,
	target Target,
	backend Backend,
	cfg Config,
	completion func(string),
	logger *slog.Logger,
	onClose func(uuid.UUID),
) *Session {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.New()
	logger = logger.With("session", id, "transaction_id", target.TransactionID)
	now := time.Now()

	return &Session{
		id:        id,
		target:    target,
		backend:   backend,
		cfg:       cfg,
		logger:    logger,
		counter:   NewCounter(cfg.MaxAttempts),
		notifier:  NewNotifier(cfg.ToastTTL, completion, logger),
		ctx:       ctx,
		cancel:    cancel,
		onClose:   onClose,
		phase:     PhaseIdle,
		approved:  make(map[uuid.UUID]bool),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Target() Target { return s.target }

// Attempts returns the number of regeneration attempts consumed.
func (s *Session) Attempts() int { return s.counter.Count() }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Upload sends files to the ingestion backend as one batch. A batch still
// awaiting signature is replaced and its unapproved documents are rejected.
func (s *Session) Upload(ctx context.Context, docType string, files []documents.File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	s.mu.Lock()
	if err := s.checkLocked(s.uploadAllowedLocked); err != nil {
		s.mu.Unlock()
		return err
	}
	previous := s.unapprovedLocked()
	s.enterLocked(PhaseUploading)
	s.mu.Unlock()

	cctx, done := s.callContext(ctx)
	defer done()

	docs, err := s.backend.Ingest(cctx, s.target, docType, files)
	if err == nil && len(previous) > 0 {
		s.rejectAll(cctx, previous)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return ErrSessionClosed
	}

	if err != nil {
		err = Classify(err)
		s.failLocked(StageUpload, "Upload failed", err)
		return err
	}

	s.batch = docs
	clear(s.approved)
	s.enterLocked(PhaseAwaitingSignature)
	s.notifier.Notify(KindInfo, fmt.Sprintf("%d document(s) uploaded. Confirm the signature to continue.", len(docs)))
	s.logger.Info("batch uploaded", "documents", len(docs))
	return nil
}

// FailUpload records an upload that failed before reaching the backend,
// such as an unreadable or oversized request, and returns err. The session
// moves to PhaseFailed at StageUpload as if ingestion had failed.
func (s *Session) FailUpload(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cerr := s.checkLocked(s.uploadAllowedLocked); cerr != nil {
		return cerr
	}
	s.failLocked(StageUpload, "Upload failed", err)
	return err
}

// Confirm applies the human signature decision for the current batch.
//
// A valid decision validates each document with the backend and approves
// the batch. If any document fails validation the decision is treated as
// invalid. An invalid decision regenerates the packet while attempts
// remain and blocks the session once they are spent.
func (s *Session) Confirm(ctx context.Context, valid bool) error {
	if !valid {
		return s.regenerate(ctx, "signature marked invalid")
	}

	s.mu.Lock()
	if err := s.checkLocked(s.awaitingDecisionLocked); err != nil {
		s.mu.Unlock()
		return err
	}
	s.enterLocked(PhasePersisting)
	pending := s.unapprovedLocked()
	s.mu.Unlock()

	cctx, done := s.callContext(ctx)
	defer done()

	approved, err := s.persist(cctx, pending)

	s.mu.Lock()
	if s.phase == PhaseClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	s.markLocked(approved, documents.StatusApproved)

	if errors.Is(err, errSignatureInvalid) {
		blocked, err := s.startAttemptLocked(errSignatureInvalid.Error())
		s.mu.Unlock()
		return s.runAttempt(ctx, blocked, err)
	}

	if err != nil {
		err = Classify(err)
		s.failLocked(StageSignature, "Signature validation failed", err)
		s.mu.Unlock()
		return err
	}

	s.enterLocked(PhaseSucceeded)
	s.notifier.Notify(KindSuccess, fmt.Sprintf("%d document(s) approved.", len(s.batch)))
	s.mu.Unlock()

	s.notifier.Complete(s.target.TransactionID)
	s.logger.Info("intake completed", "close_delay", s.cfg.CloseDelay)

	s.mu.Lock()
	if s.phase == PhaseSucceeded {
		s.closer = time.AfterFunc(s.cfg.CloseDelay, func() { s.Close() })
	}
	s.mu.Unlock()

	return nil
}

// Regenerate requests a new packet for the transaction.
func (s *Session) Regenerate(ctx context.Context) error {
	return s.regenerate(ctx, "regeneration requested")
}

// Dismiss removes a toast notification.
func (s *Session) Dismiss(id int) error {
	if s.Phase() == PhaseClosed {
		return ErrSessionClosed
	}
	if !s.notifier.Dismiss(id) {
		return ErrNotificationNotFound
	}
	return nil
}

// Close cancels in-flight calls and ends the session. It reports whether
// this call performed the close.
func (s *Session) Close() bool {
	s.mu.Lock()
	if s.phase == PhaseClosed {
		s.mu.Unlock()
		return false
	}
	prev := s.phase
	s.enterLocked(PhaseClosed)
	if s.closer != nil {
		s.closer.Stop()
	}
	s.mu.Unlock()

	if s.onClose != nil {
		s.onClose(s.id)
	}
	s.cancel()

	s.logger.Info("session closed", "phase", prev)
	return true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	exhausted := s.counter.Exhausted()

	return Snapshot{
		ID:            s.id,
		Target:        s.target,
		Phase:         s.phase,
		Stage:         s.stage,
		Attempts:      s.counter.Count(),
		MaxAttempts:   s.counter.Max(),
		CanRegenerate: s.awaitingDecisionLocked() && !exhausted,
		Documents:     slices.Clone(s.batch),
		Packet:        s.packet,
		Notifications: s.notifier.Active(),
		Banner:        s.notifier.Banner(),
		Error:         s.lastErr,
		Completed:     s.notifier.Completed(),
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

func (s *Session) regenerate(ctx context.Context, reason string) error {
	s.mu.Lock()
	if s.phase == PhaseBlocked {
		s.mu.Unlock()
		return ErrAttemptsExhausted
	}
	if err := s.checkLocked(s.awaitingDecisionLocked); err != nil {
		s.mu.Unlock()
		return err
	}
	blocked, err := s.startAttemptLocked(reason)
	s.mu.Unlock()

	return s.runAttempt(ctx, blocked, err)
}

// startAttemptLocked moves the session into PhaseRegenerating, or into
// PhaseBlocked once every attempt is spent. In the blocked case it returns
// the unapproved part of the batch to reject along with ErrAttemptsExhausted.
func (s *Session) startAttemptLocked(reason string) ([]documents.Document, error) {
	if s.counter.Exhausted() {
		s.enterLocked(PhaseBlocked)
		s.notifier.Warn(fmt.Sprintf(
			"Regeneration limit of %d attempts reached. This transaction needs a new scan before it can continue.",
			s.counter.Max(),
		))
		s.logger.Warn("regeneration blocked", "reason", reason, "attempts", s.counter.Count())
		return s.unapprovedLocked(), ErrAttemptsExhausted
	}

	s.enterLocked(PhaseRegenerating)
	s.logger.Info("regenerating packet", "reason", reason, "attempt", s.counter.Count()+1)
	return nil, nil
}

// runAttempt completes what startAttemptLocked began.
func (s *Session) runAttempt(ctx context.Context, blocked []documents.Document, err error) error {
	cctx, done := s.callContext(ctx)
	defer done()

	if err != nil {
		rejected := s.rejectAll(cctx, blocked)
		s.mu.Lock()
		s.markLocked(rejected, documents.StatusRejected)
		s.mu.Unlock()
		return err
	}

	var packet *packets.Packet
	err = s.counter.Attempt(func() error {
		var err error
		packet, err = s.backend.GeneratePDF(cctx, s.target.TransactionID)
		return err
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return ErrSessionClosed
	}

	s.enterLocked(PhaseAwaitingSignature)

	if err != nil {
		err = Classify(err)
		s.lastErr = err.Error()
		s.notifier.Notify(KindError, "PDF regeneration failed: "+err.Error())
		s.logger.Warn("packet regeneration failed", "attempt", s.counter.Count(), "error", err)
		return err
	}

	s.packet = packet
	s.lastErr = ""
	s.notifier.Notify(KindInfo, fmt.Sprintf(
		"Regenerated %s (attempt %d of %d).",
		packet.Filename, s.counter.Count(), s.counter.Max(),
	))
	return nil
}

// persist validates every document, then approves them in order. It
// returns the ids approved before any failure.
func (s *Session) persist(ctx context.Context, pending []documents.Document) ([]uuid.UUID, error) {
	for _, d := range pending {
		ok, err := s.backend.ValidateSignature(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("validate %s: %w", d.Name, err)
		}
		if !ok {
			return nil, errSignatureInvalid
		}
	}

	approved := make([]uuid.UUID, 0, len(pending))
	for _, d := range pending {
		if err := s.backend.Approve(ctx, d.ID); err != nil {
			return approved, fmt.Errorf("approve %s: %w", d.Name, err)
		}
		approved = append(approved, d.ID)
	}
	return approved, nil
}

// rejectAll rejects docs and returns the ids that were rejected. Failures
// are logged only.
func (s *Session) rejectAll(ctx context.Context, docs []documents.Document) []uuid.UUID {
	rejected := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		if err := s.backend.Reject(ctx, d.ID); err != nil {
			s.logger.Warn("reject document failed", "document", d.ID, "error", err)
			continue
		}
		rejected = append(rejected, d.ID)
	}
	return rejected
}

// callContext ties ctx to the session lifetime.
func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

func (s *Session) checkLocked(allowed func() bool) error {
	switch {
	case s.phase == PhaseClosed:
		return ErrSessionClosed
	case s.phase.Busy():
		return ErrBusy
	case !allowed():
		return fmt.Errorf("%w: %s", ErrInvalidState, s.phase)
	}
	return nil
}

func (s *Session) uploadAllowedLocked() bool {
	return s.phase == PhaseIdle || s.phase == PhaseAwaitingSignature || s.phase == PhaseFailed
}

func (s *Session) awaitingDecisionLocked() bool {
	return s.phase == PhaseAwaitingSignature || (s.phase == PhaseFailed && s.stage == StageSignature)
}

func (s *Session) enterLocked(p Phase) {
	s.phase = p
	if p != PhaseFailed {
		s.stage = ""
	}
	if p == PhaseAwaitingSignature {
		s.lastErr = ""
	}
	s.updatedAt = time.Now()
}

func (s *Session) failLocked(stage Stage, message string, err error) {
	s.enterLocked(PhaseFailed)
	s.stage = stage
	s.lastErr = err.Error()
	s.notifier.Notify(KindError, message+": "+err.Error())
	s.logger.Warn("intake step failed", "stage", stage, "error", err)
}

// unapprovedLocked returns the batch documents not yet approved. Approved
// documents never leave the approved state.
func (s *Session) unapprovedLocked() []documents.Document {
	docs := make([]documents.Document, 0, len(s.batch))
	for _, d := range s.batch {
		if !s.approved[d.ID] {
			docs = append(docs, d)
		}
	}
	return docs
}

func (s *Session) markLocked(ids []uuid.UUID, status string) {
	for _, id := range ids {
		if status == documents.StatusApproved {
			s.approved[id] = true
		}
		for i := range s.batch {
			if s.batch[i].ID == id {
				s.batch[i].Status = status
			}
		}
	}
}
