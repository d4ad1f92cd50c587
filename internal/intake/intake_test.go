package intake_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/documents"
	"github.com/JaimeStill/intake/internal/intake"
	"github.com/JaimeStill/intake/internal/packets"
)

// fakeBackend counts calls. Nil function fields fall back to success.
type fakeBackend struct {
	ingest   func(context.Context, intake.Target, []documents.File) ([]documents.Document, error)
	generate func(context.Context, string) (*packets.Packet, error)
	validate func(context.Context, uuid.UUID) (bool, error)
	approve  func(context.Context, uuid.UUID) error

	mu            sync.Mutex
	ingestCalls   int
	generateCalls int
	validateCalls int
	approved      []uuid.UUID
	rejected      []uuid.UUID
}

func (f *fakeBackend) Ingest(ctx context.Context, target intake.Target, _ string, files []documents.File) ([]documents.Document, error) {
	f.mu.Lock()
	f.ingestCalls++
	f.mu.Unlock()

	if f.ingest != nil {
		return f.ingest(ctx, target, files)
	}
	docs := make([]documents.Document, len(files))
	for i, file := range files {
		docs[i] = documents.Document{
			ID:         uuid.New(),
			Name:       file.Name,
			EntityType: target.EntityType,
			EntityID:   target.EntityID,
			Status:     documents.StatusPending,
		}
	}
	return docs, nil
}

func (f *fakeBackend) GeneratePDF(ctx context.Context, transactionID string) (*packets.Packet, error) {
	f.mu.Lock()
	f.generateCalls++
	n := f.generateCalls
	f.mu.Unlock()

	if f.generate != nil {
		return f.generate(ctx, transactionID)
	}
	return &packets.Packet{TransactionID: transactionID, Filename: fmt.Sprintf("%s-%d.pdf", transactionID, n)}, nil
}

func (f *fakeBackend) ValidateSignature(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	f.validateCalls++
	f.mu.Unlock()

	if f.validate != nil {
		return f.validate(ctx, id)
	}
	return true, nil
}

func (f *fakeBackend) Approve(ctx context.Context, id uuid.UUID) error {
	if f.approve != nil {
		if err := f.approve(ctx, id); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeBackend) Reject(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, id)
	return nil
}

func (f *fakeBackend) generated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls
}

type completions struct {
	mu  sync.Mutex
	ids []string
}

func (c *completions) record(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
}

func (c *completions) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() intake.Config {
	return intake.Config{
		MaxAttempts: 3,
		CloseDelay:  50 * time.Millisecond,
		ToastTTL:    time.Minute,
	}
}

func scan(name string) documents.File {
	return documents.File{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.7")}
}

// openUploaded returns a session awaiting the signature decision.
func openUploaded(t *testing.T, backend *fakeBackend, done *completions) (intake.System, *intake.Session) {
	t.Helper()

	var completion intake.Completion
	if done != nil {
		completion = done.record
	}

	sys := intake.New(context.Background(), backend, testConfig(), completion, discard())
	s, err := sys.Open(context.Background(), intake.Target{TransactionID: "T-1"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Upload(context.Background(), "contract", []documents.File{scan("contract.pdf")}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got := s.Phase(); got != intake.PhaseAwaitingSignature {
		t.Fatalf("phase after upload = %s", got)
	}
	return sys, s
}

func countKind(snap intake.Snapshot, kind intake.Kind) int {
	n := 0
	for _, t := range snap.Notifications {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

func TestRegenerateIncrementsOncePerAttempt(t *testing.T) {
	backend := &fakeBackend{}
	_, s := openUploaded(t, backend, nil)

	for n := range 3 {
		if err := s.Regenerate(context.Background()); err != nil {
			t.Fatalf("attempt %d: %v", n+1, err)
		}
		if got := s.Attempts(); got != n+1 {
			t.Errorf("after attempt %d counter = %d", n+1, got)
		}
		if got := backend.generated(); got != n+1 {
			t.Errorf("after attempt %d backend calls = %d", n+1, got)
		}
	}
}

func TestRegenerateAtLimitMakesNoCall(t *testing.T) {
	backend := &fakeBackend{}
	_, s := openUploaded(t, backend, nil)

	for range 3 {
		if err := s.Regenerate(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	for range 2 {
		err := s.Regenerate(context.Background())
		if !errors.Is(err, intake.ErrAttemptsExhausted) {
			t.Fatalf("Regenerate() error = %v, want ErrAttemptsExhausted", err)
		}
	}

	if got := backend.generated(); got != 3 {
		t.Errorf("backend calls = %d, want 3", got)
	}
	if got := s.Attempts(); got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}

	snap := s.Snapshot()
	if snap.Phase != intake.PhaseBlocked {
		t.Errorf("phase = %s, want blocked", snap.Phase)
	}
	if snap.Banner == "" {
		t.Error("limit banner not raised")
	}
	if snap.CanRegenerate {
		t.Error("CanRegenerate = true at limit")
	}
	if len(backend.rejected) != 1 || snap.Documents[0].Status != documents.StatusRejected {
		t.Errorf("batch not rejected: rejected=%v status=%s", backend.rejected, snap.Documents[0].Status)
	}
}

func TestFailedRegenerationConsumesAttempt(t *testing.T) {
	backend := &fakeBackend{
		generate: func(context.Context, string) (*packets.Packet, error) {
			return nil, errors.New("dial tcp 10.0.0.4:443: i/o timeout")
		},
	}
	_, s := openUploaded(t, backend, nil)

	err := s.Regenerate(context.Background())
	if !errors.Is(err, intake.ErrNetwork) {
		t.Fatalf("Regenerate() error = %v, want ErrNetwork", err)
	}
	if got := s.Attempts(); got != 1 {
		t.Errorf("counter = %d, want 1", got)
	}

	snap := s.Snapshot()
	if snap.Phase != intake.PhaseAwaitingSignature {
		t.Errorf("phase = %s", snap.Phase)
	}
	if countKind(snap, intake.KindError) != 1 {
		t.Errorf("notifications = %+v", snap.Notifications)
	}
	if !snap.CanRegenerate {
		t.Error("CanRegenerate = false with attempts left")
	}
}

func TestConfirmValidCompletes(t *testing.T) {
	backend := &fakeBackend{}
	done := &completions{}
	sys, s := openUploaded(t, backend, done)

	if err := s.Confirm(context.Background(), true); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	snap := s.Snapshot()
	if snap.Phase != intake.PhaseSucceeded {
		t.Errorf("phase = %s, want succeeded", snap.Phase)
	}
	if got := countKind(snap, intake.KindSuccess); got != 1 {
		t.Errorf("success notifications = %d, want 1", got)
	}
	if got := done.list(); len(got) != 1 || got[0] != "T-1" {
		t.Errorf("completions = %v, want [T-1]", got)
	}
	if len(backend.approved) != 1 || snap.Documents[0].Status != documents.StatusApproved {
		t.Errorf("approved = %v", backend.approved)
	}
	if s.Phase() == intake.PhaseClosed {
		t.Error("session closed before delay")
	}

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close after delay")
	}

	if s.Phase() != intake.PhaseClosed {
		t.Errorf("phase = %s, want closed", s.Phase())
	}
	if _, err := sys.Get(s.ID()); !errors.Is(err, intake.ErrSessionNotFound) {
		t.Errorf("Get after close = %v", err)
	}
	if got := done.list(); len(got) != 1 {
		t.Errorf("completion fired %d times", len(got))
	}
}

func TestConfirmInvalidRegenerates(t *testing.T) {
	backend := &fakeBackend{}
	_, s := openUploaded(t, backend, nil)

	if err := s.Regenerate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Attempts() != 1 {
		t.Fatalf("counter = %d, want 1", s.Attempts())
	}

	if err := s.Confirm(context.Background(), false); err != nil {
		t.Fatalf("Confirm(false): %v", err)
	}
	if got := backend.generated(); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
	if got := s.Attempts(); got != 2 {
		t.Errorf("counter = %d, want 2", got)
	}
	if snap := s.Snapshot(); snap.Packet == nil || snap.Packet.Filename != "T-1-2.pdf" {
		t.Errorf("packet = %+v", snap.Packet)
	}
}

func TestConfirmValidationErrorNotifies(t *testing.T) {
	fail := true
	backend := &fakeBackend{
		validate: func(context.Context, uuid.UUID) (bool, error) {
			if fail {
				return false, errors.New("connection reset by peer")
			}
			return true, nil
		},
	}
	done := &completions{}
	_, s := openUploaded(t, backend, done)

	err := s.Confirm(context.Background(), true)
	if !errors.Is(err, intake.ErrNetwork) {
		t.Fatalf("Confirm() error = %v, want ErrNetwork", err)
	}

	snap := s.Snapshot()
	if snap.Phase != intake.PhaseFailed || snap.Stage != intake.StageSignature {
		t.Errorf("phase = %s/%s", snap.Phase, snap.Stage)
	}
	if countKind(snap, intake.KindError) != 1 {
		t.Errorf("notifications = %+v", snap.Notifications)
	}
	if len(done.list()) != 0 {
		t.Error("completion fired after validation error")
	}
	if backend.generated() != 0 {
		t.Error("validation error triggered regeneration")
	}

	fail = false
	if err := s.Confirm(context.Background(), true); err != nil {
		t.Fatalf("retry Confirm: %v", err)
	}
	if len(done.list()) != 1 {
		t.Error("completion did not fire after retry")
	}
}

func TestConfirmValidationFalseRegenerates(t *testing.T) {
	backend := &fakeBackend{
		validate: func(context.Context, uuid.UUID) (bool, error) { return false, nil },
	}
	done := &completions{}
	_, s := openUploaded(t, backend, done)

	if err := s.Confirm(context.Background(), true); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if backend.generated() != 1 || s.Attempts() != 1 {
		t.Errorf("calls = %d counter = %d, want 1/1", backend.generated(), s.Attempts())
	}
	if len(backend.approved) != 0 {
		t.Errorf("approved %v despite failed validation", backend.approved)
	}
	if len(done.list()) != 0 {
		t.Error("completion fired")
	}
	if s.Phase() != intake.PhaseAwaitingSignature {
		t.Errorf("phase = %s", s.Phase())
	}
}

func TestApprovalRetrySkipsApproved(t *testing.T) {
	var calls int
	backend := &fakeBackend{
		approve: func(context.Context, uuid.UUID) error {
			calls++
			if calls == 2 {
				return documents.ErrInvalidTransition
			}
			return nil
		},
	}
	sys := intake.New(context.Background(), backend, testConfig(), nil, discard())
	s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-2"})
	if err := s.Upload(context.Background(), "", []documents.File{scan("a.pdf"), scan("b.pdf")}); err != nil {
		t.Fatal(err)
	}

	err := s.Confirm(context.Background(), true)
	if !errors.Is(err, intake.ErrBusiness) {
		t.Fatalf("Confirm() error = %v, want ErrBusiness", err)
	}

	if err := s.Confirm(context.Background(), true); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(backend.approved) != 2 {
		t.Errorf("approved %d documents, want 2", len(backend.approved))
	}
	if calls != 3 {
		t.Errorf("approve calls = %d, want 3", calls)
	}
}

func TestBlockedKeepsApprovedDocuments(t *testing.T) {
	var calls int
	backend := &fakeBackend{
		approve: func(context.Context, uuid.UUID) error {
			calls++
			if calls == 2 {
				return documents.ErrInvalidTransition
			}
			return nil
		},
	}
	sys := intake.New(context.Background(), backend, testConfig(), nil, discard())
	s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-3"})
	if err := s.Upload(context.Background(), "", []documents.File{scan("a.pdf"), scan("b.pdf")}); err != nil {
		t.Fatal(err)
	}

	if err := s.Confirm(context.Background(), true); !errors.Is(err, intake.ErrBusiness) {
		t.Fatalf("Confirm() error = %v, want ErrBusiness", err)
	}

	for range 3 {
		if err := s.Confirm(context.Background(), false); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Confirm(context.Background(), false); !errors.Is(err, intake.ErrAttemptsExhausted) {
		t.Fatalf("fourth Confirm(false) = %v", err)
	}

	snap := s.Snapshot()
	if snap.Phase != intake.PhaseBlocked {
		t.Fatalf("phase = %s, want %s", snap.Phase, intake.PhaseBlocked)
	}

	approved := backend.approved[0]
	for _, id := range backend.rejected {
		if id == approved {
			t.Errorf("approved document %s was rejected", id)
		}
	}
	if len(backend.rejected) != 1 {
		t.Errorf("rejected %d documents, want 1", len(backend.rejected))
	}

	want := map[string]string{"a.pdf": documents.StatusApproved, "b.pdf": documents.StatusRejected}
	for _, d := range snap.Documents {
		if d.Status != want[d.Name] {
			t.Errorf("%s status = %s, want %s", d.Name, d.Status, want[d.Name])
		}
	}
}

func TestRepeatedInvalidScenario(t *testing.T) {
	backend := &fakeBackend{}
	_, s := openUploaded(t, backend, nil)

	for range 3 {
		if err := s.Confirm(context.Background(), false); err != nil {
			t.Fatal(err)
		}
	}
	if s.Attempts() != 3 {
		t.Fatalf("counter = %d, want 3", s.Attempts())
	}
	if s.Snapshot().Banner != "" {
		t.Fatal("banner raised before the limit was hit")
	}

	err := s.Confirm(context.Background(), false)
	if !errors.Is(err, intake.ErrAttemptsExhausted) {
		t.Fatalf("fourth Confirm(false) = %v", err)
	}
	if backend.generated() != 3 {
		t.Errorf("backend calls = %d, want 3", backend.generated())
	}
	if s.Snapshot().Banner == "" {
		t.Error("limit banner not shown")
	}
}

func TestUpload(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		backend := &fakeBackend{}
		sys := intake.New(context.Background(), backend, testConfig(), nil, discard())
		s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-1"})

		if err := s.Upload(context.Background(), "", nil); !errors.Is(err, intake.ErrNoFiles) {
			t.Errorf("Upload() error = %v", err)
		}
		if backend.ingestCalls != 0 {
			t.Error("backend called for empty batch")
		}
		if s.Phase() != intake.PhaseIdle {
			t.Errorf("phase = %s", s.Phase())
		}
	})

	t.Run("rejected content", func(t *testing.T) {
		fail := true
		backend := &fakeBackend{}
		backend.ingest = func(_ context.Context, target intake.Target, files []documents.File) ([]documents.Document, error) {
			if fail {
				return nil, fmt.Errorf("%w: scan.exe is application/x-msdownload", documents.ErrUnsupportedType)
			}
			return []documents.Document{{ID: uuid.New(), Status: documents.StatusPending}}, nil
		}
		sys := intake.New(context.Background(), backend, testConfig(), nil, discard())
		s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-1"})

		err := s.Upload(context.Background(), "", []documents.File{scan("scan.exe")})
		if !errors.Is(err, intake.ErrValidation) || !errors.Is(err, intake.ErrBusiness) {
			t.Fatalf("Upload() error = %v, want ErrValidation", err)
		}

		snap := s.Snapshot()
		if snap.Phase != intake.PhaseFailed || snap.Stage != intake.StageUpload {
			t.Errorf("phase = %s/%s", snap.Phase, snap.Stage)
		}
		if countKind(snap, intake.KindError) != 1 {
			t.Errorf("notifications = %+v", snap.Notifications)
		}
		if backend.ingestCalls != 1 {
			t.Errorf("ingest calls = %d, want 1", backend.ingestCalls)
		}

		fail = false
		if err := s.Upload(context.Background(), "", []documents.File{scan("scan.pdf")}); err != nil {
			t.Fatalf("re-upload: %v", err)
		}
		if s.Phase() != intake.PhaseAwaitingSignature {
			t.Errorf("phase = %s", s.Phase())
		}
	})

	t.Run("replaces pending batch", func(t *testing.T) {
		backend := &fakeBackend{}
		_, s := openUploaded(t, backend, nil)
		first := s.Snapshot().Documents[0].ID

		if err := s.Upload(context.Background(), "", []documents.File{scan("rescan.pdf")}); err != nil {
			t.Fatal(err)
		}

		if len(backend.rejected) != 1 || backend.rejected[0] != first {
			t.Errorf("rejected = %v, want [%s]", backend.rejected, first)
		}
		if docs := s.Snapshot().Documents; len(docs) != 1 || docs[0].Name != "rescan.pdf" {
			t.Errorf("batch = %+v", docs)
		}
	})

	t.Run("target defaults to transaction", func(t *testing.T) {
		var got intake.Target
		backend := &fakeBackend{}
		backend.ingest = func(_ context.Context, target intake.Target, _ []documents.File) ([]documents.Document, error) {
			got = target
			return []documents.Document{{ID: uuid.New()}}, nil
		}
		sys := intake.New(context.Background(), backend, testConfig(), nil, discard())
		s, _ := sys.Open(context.Background(), intake.Target{TransactionID: " T-5 "})

		if err := s.Upload(context.Background(), "", []documents.File{scan("a.pdf")}); err != nil {
			t.Fatal(err)
		}
		want := intake.Target{TransactionID: "T-5", EntityType: documents.EntityTransaction, EntityID: "T-5"}
		if got != want {
			t.Errorf("target = %+v, want %+v", got, want)
		}
	})
}

func TestCloseDropsLateResponse(t *testing.T) {
	started := make(chan struct{})
	var callCtx context.Context
	backend := &fakeBackend{}
	backend.ingest = func(ctx context.Context, _ intake.Target, _ []documents.File) ([]documents.Document, error) {
		callCtx = ctx
		close(started)
		<-ctx.Done()
		return []documents.Document{{ID: uuid.New()}}, nil
	}

	sys := intake.New(context.Background(), backend, testConfig(), nil, discard())
	s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-1"})

	result := make(chan error, 1)
	go func() {
		result <- s.Upload(context.Background(), "", []documents.File{scan("a.pdf")})
	}()

	<-started
	if err := s.Confirm(context.Background(), true); !errors.Is(err, intake.ErrBusy) {
		t.Errorf("Confirm while uploading = %v, want ErrBusy", err)
	}
	if err := sys.Close(s.ID()); err != nil {
		t.Fatal(err)
	}

	if err := <-result; !errors.Is(err, intake.ErrSessionClosed) {
		t.Errorf("Upload() error = %v, want ErrSessionClosed", err)
	}
	if !errors.Is(callCtx.Err(), context.Canceled) {
		t.Errorf("backend context not cancelled: %v", callCtx.Err())
	}

	snap := s.Snapshot()
	if snap.Phase != intake.PhaseClosed {
		t.Errorf("phase = %s", snap.Phase)
	}
	if len(snap.Documents) != 0 || len(snap.Notifications) != 0 {
		t.Errorf("late response mutated session: %+v", snap)
	}
	if err := s.Regenerate(context.Background()); !errors.Is(err, intake.ErrSessionClosed) {
		t.Errorf("Regenerate after close = %v", err)
	}
}

func TestInvalidState(t *testing.T) {
	sys := intake.New(context.Background(), &fakeBackend{}, testConfig(), nil, discard())
	s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-1"})

	if err := s.Confirm(context.Background(), true); !errors.Is(err, intake.ErrInvalidState) {
		t.Errorf("Confirm before upload = %v", err)
	}
	if err := s.Regenerate(context.Background()); !errors.Is(err, intake.ErrInvalidState) {
		t.Errorf("Regenerate before upload = %v", err)
	}
}

func TestManager(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sys := intake.New(ctx, &fakeBackend{}, testConfig(), nil, discard())

	tests := []struct {
		name   string
		target intake.Target
		err    error
	}{
		{"transaction", intake.Target{TransactionID: "T-1"}, nil},
		{"customer", intake.Target{TransactionID: "T-1", EntityType: "customer", EntityID: "C-4"}, nil},
		{"missing transaction", intake.Target{EntityType: "customer", EntityID: "C-4"}, intake.ErrInvalidTarget},
		{"unknown entity", intake.Target{TransactionID: "T-1", EntityType: "dealer", EntityID: "D"}, intake.ErrInvalidTarget},
		{"entity without id", intake.Target{TransactionID: "T-1", EntityType: "vehicle"}, intake.ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Open(context.Background(), tt.target)
			if !errors.Is(err, tt.err) {
				t.Errorf("Open() error = %v, want %v", err, tt.err)
			}
		})
	}

	if sys.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", sys.Count())
	}
	if n := sys.CloseAll(); n != 2 {
		t.Errorf("CloseAll() = %d, want 2", n)
	}
	if sys.Count() != 0 {
		t.Errorf("Count() after CloseAll = %d", sys.Count())
	}

	cancel()
	if _, err := sys.Open(context.Background(), intake.Target{TransactionID: "T-9"}); !errors.Is(err, intake.ErrSessionClosed) {
		t.Errorf("Open after shutdown = %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"file too large", documents.ErrFileTooLarge, intake.ErrValidation},
		{"bad entity", documents.ErrInvalidEntity, intake.ErrValidation},
		{"not pending", documents.ErrInvalidTransition, intake.ErrBusiness},
		{"no packet sources", packets.ErrNoSources, intake.ErrBusiness},
		{"transport", errors.New("EOF"), intake.ErrNetwork},
		{"already classified", intake.ErrValidation, intake.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intake.Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify() lost cause %v", tt.err)
			}
		})
	}

	if intake.Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
	if errors.Is(intake.Classify(documents.ErrNotFound), intake.ErrValidation) {
		t.Error("not found classified as validation")
	}
}

func TestFailUploadAfterClose(t *testing.T) {
	sys := intake.New(context.Background(), &fakeBackend{}, testConfig(), nil, discard())
	s, _ := sys.Open(context.Background(), intake.Target{TransactionID: "T-9"})

	cause := fmt.Errorf("%w: unreadable form", intake.ErrInvalidRequest)
	if err := s.FailUpload(cause); !errors.Is(err, intake.ErrInvalidRequest) {
		t.Fatalf("FailUpload() = %v", err)
	}
	if s.Phase() != intake.PhaseFailed {
		t.Errorf("phase = %s, want %s", s.Phase(), intake.PhaseFailed)
	}

	s.Close()
	if err := s.FailUpload(cause); !errors.Is(err, intake.ErrSessionClosed) {
		t.Errorf("FailUpload() after close = %v, want ErrSessionClosed", err)
	}
}
