package intake

import "sync"

// DefaultMaxAttempts bounds PDF regeneration per session.
const DefaultMaxAttempts = 3

// Counter bounds regeneration attempts for one session. Its value stays
// within [0, max] and is never reset.
type Counter struct {
	mu    sync.Mutex
	count int
	max   int
}

// NewCounter creates a Counter allowing limit attempts. A limit outside
// [1, DefaultMaxAttempts] uses DefaultMaxAttempts.
func NewCounter(limit int) *Counter {
	if limit <= 0 || limit > DefaultMaxAttempts {
		limit = DefaultMaxAttempts
	}
	return &Counter{max: limit}
}

// Attempt consumes one attempt and then runs fn, whatever fn returns.
// Once every attempt is spent it returns ErrAttemptsExhausted without
// calling fn.
func (c *Counter) Attempt(fn func() error) error {
	c.mu.Lock()
	if c.count >= c.max {
		c.mu.Unlock()
		return ErrAttemptsExhausted
	}
	c.count++
	c.mu.Unlock()

	return fn()
}

func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Counter) Max() int {
	return c.max
}

func (c *Counter) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count >= c.max
}
