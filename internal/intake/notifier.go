package intake

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Kind classifies a toast notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a transient, dismissible toast.
type Notification struct {
	ID        int       `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier holds a session's toasts, its persistent limit banner, and the
// completion callback delivered to the parent page.
type Notifier struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
	nextID     int
	toasts     []Notification
	banner     string
	completion func(transactionID string)
	completed  bool
}

// NewNotifier creates a notifier whose toasts expire after ttl. A nil
// completion is allowed.
func NewNotifier(ttl time.Duration, completion func(transactionID string), logger *slog.Logger) *Notifier {
	return &Notifier{
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
		completion: completion,
	}
}

// Notify records a toast and returns it.
func (n *Notifier) Notify(kind Kind, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	toast := Notification{
		ID:        n.nextID,
		Kind:      kind,
		Message:   message,
		CreatedAt: n.now(),
	}
	n.toasts = append(n.toasts, toast)

	n.logger.Debug("notification", "kind", kind, "message", message)
	return toast
}

// Warn raises the persistent banner. It cannot be dismissed.
func (n *Notifier) Warn(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.banner = message
	n.logger.Warn("banner raised", "message", message)
}

func (n *Notifier) Banner() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.banner
}

// Active returns unexpired toasts, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ttl > 0 {
		cutoff := n.now().Add(-n.ttl)
		n.toasts = slices.DeleteFunc(n.toasts, func(t Notification) bool {
			return t.CreatedAt.Before(cutoff)
		})
	}
	return slices.Clone(n.toasts)
}

// Dismiss removes a toast. It returns false when the toast is unknown or expired.
func (n *Notifier) Dismiss(id int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.toasts, func(t Notification) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	n.toasts = slices.Delete(n.toasts, i, i+1)
	return true
}

// Complete invokes the completion callback the first time it is called.
// Later calls return false.
func (n *Notifier) Complete(transactionID string) bool {
	n.mu.Lock()
	if n.completed {
		n.mu.Unlock()
		return false
	}
	n.completed = true
	fn := n.completion
	n.mu.Unlock()

	if fn != nil {
		fn(transactionID)
	}
	return true
}

func (n *Notifier) Completed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.completed
}
