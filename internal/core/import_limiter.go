package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTooManyImports is returned when every import slot stays occupied for
// the whole wait. Clients should retry after a short delay.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// Limiter defaults, used when the configured values are not positive.
const (
	DefaultMaxConcurrentImports = 4
	DefaultMaxWaitTime          = 15 * time.Second
)

// ImportTicket identifies one import holding a slot.
type ImportTicket struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	File    string    `json:"file,omitempty"`
	Started time.Time `json:"started"`
}

// ImportLimiter bounds how many imports are forwarded to the backend at
// once and keeps track of which ones are in flight, so /health can list
// them and shutdown can wait for them.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]ImportTicket
	waiting  int
	idle     chan struct{} // closed when inflight becomes empty
}

// NewImportLimiter creates a limiter allowing maxConcurrent imports, each
// waiting at most maxWait for a slot.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ImportLimiter{
		slots:    make(chan struct{}, maxConcurrent),
		maxWait:  maxWait,
		now:      time.Now,
		inflight: make(map[string]ImportTicket),
	}
}

// Acquire waits for a slot for t and returns the function that frees it.
// An empty t.ID gets a generated one; t.Started is always stamped here.
// The release function is safe to call more than once.
//
// Returns ErrTooManyImports when the wait times out, or ctx.Err().
func (l *ImportLimiter) Acquire(ctx context.Context, t ImportTicket) (ImportTicket, func(), error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	l.mu.Lock()
	l.waiting++
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.waiting--
		l.mu.Unlock()
	}()

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return t, nil, ctx.Err()
	case <-timer.C:
		return t, nil, ErrTooManyImports
	}

	t.Started = l.now()
	l.mu.Lock()
	if len(l.inflight) == 0 {
		l.idle = make(chan struct{})
	}
	l.inflight[t.ID] = t
	l.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { l.release(t.ID) })
	}
	return t, release, nil
}

func (l *ImportLimiter) release(id string) {
	l.mu.Lock()
	delete(l.inflight, id)
	if len(l.inflight) == 0 && l.idle != nil {
		close(l.idle)
		l.idle = nil
	}
	l.mu.Unlock()

	<-l.slots
}

// ActiveCount returns the number of imports holding a slot.
func (l *ImportLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inflight)
}

// WaitForDrain blocks until no import holds a slot or ctx ends.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()
	if idle == nil {
		return nil
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImportLimiterStatus is a snapshot for the health endpoint.
type ImportLimiterStatus struct {
	Active        int            `json:"active"`
	Waiting       int            `json:"waiting"`
	Available     int            `json:"available"`
	MaxConcurrent int            `json:"max_concurrent"`
	InFlight      []ImportTicket `json:"in_flight,omitempty"` // Oldest first
}

// Status returns the current limiter state.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	inflight := make([]ImportTicket, 0, len(l.inflight))
	for _, t := range l.inflight {
		inflight = append(inflight, t)
	}
	sort.Slice(inflight, func(i, j int) bool {
		if inflight[i].Started.Equal(inflight[j].Started) {
			return inflight[i].ID < inflight[j].ID
		}
		return inflight[i].Started.Before(inflight[j].Started)
	})

	return ImportLimiterStatus{
		Active:        len(l.inflight),
		Waiting:       l.waiting,
		Available:     cap(l.slots) - len(l.inflight),
		MaxConcurrent: cap(l.slots),
		InFlight:      inflight,
	}
}
