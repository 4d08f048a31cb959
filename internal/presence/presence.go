// Package presence keeps the volatile list of users considered logged in.
package presence

import (
	"strings"
	"sync"
	"time"
)

// Tracker is a concurrency-safe set of active usernames.
// Entries are kept in join order. With a positive TTL an entry expires
// that long after its last Add; with zero TTL it stays until Remove or
// process restart, so the list is best-effort only.
type Tracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	clock  func() time.Time
	order  []string
	seenAt map[string]time.Time
}

// Option customizes tracker construction.
type Option func(*Tracker)

// WithTTL bounds how long an entry stays active without a new login.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// New creates an empty tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		clock:  time.Now,
		seenAt: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add marks username active. Adding an existing member only refreshes it.
func (t *Tracker) Add(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seenAt[username]; !ok {
		t.order = append(t.order, username)
	}
	t.seenAt[username] = t.clock()
}

// Remove drops username. Removing an absent user is a no-op.
func (t *Tracker) Remove(username string) {
	username = strings.TrimSpace(username)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(username)
}

func (t *Tracker) removeLocked(username string) {
	if _, ok := t.seenAt[username]; !ok {
		return
	}
	delete(t.seenAt, username)
	for i, name := range t.order {
		if name == username {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// List returns a snapshot of the current members in join order.
func (t *Tracker) List() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()

	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Contains reports whether username is currently active.
func (t *Tracker) Contains(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	_, ok := t.seenAt[username]
	return ok
}

// Sweep prunes expired entries and returns how many were removed.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked()
}

func (t *Tracker) sweepLocked() int {
	if t.ttl <= 0 {
		return 0
	}
	cutoff := t.clock().Add(-t.ttl)
	kept := t.order[:0]
	removed := 0
	for _, name := range t.order {
		if t.seenAt[name].After(cutoff) {
			kept = append(kept, name)
			continue
		}
		delete(t.seenAt, name)
		removed++
	}
	t.order = kept
	return removed
}
