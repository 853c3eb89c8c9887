// Package ratelimit tracks per-user request quotas over rolling time windows.
//
// Each user gets one counter per request category. A counter resets when the
// current time passes the end of its window, so the window rolls relative to
// the first request after exhaustion rather than aligning to a clock boundary.
// State is held in memory only and resets on process restart.
package ratelimit

import (
	"sync"
	"time"
)

// Category identifies a rate-limited request type.
type Category string

const (
	TextQuery        Category = "text_query"
	DocumentAnalysis Category = "document_analysis"
)

// Config holds the capacity and window duration for each category.
type Config struct {
	TextCapacity int
	TextWindow   time.Duration
	DocCapacity  int
	DocWindow    time.Duration
}

// DefaultConfig mirrors the bot's advertised limits: 10 text queries per hour
// and 3 document analyses per day.
func DefaultConfig() Config {
	return Config{
		TextCapacity: 10,
		TextWindow:   time.Hour,
		DocCapacity:  3,
		DocWindow:    24 * time.Hour,
	}
}

func (c Config) limit(cat Category) (capacity int, window time.Duration) {
	switch cat {
	case DocumentAnalysis:
		return c.DocCapacity, c.DocWindow
	default:
		return c.TextCapacity, c.TextWindow
	}
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type counter struct {
	count       int
	windowStart time.Time
}

// userQuota holds one counter per category for a single user. Its mutex makes
// check-and-record atomic so two concurrent requests from the same user cannot
// both slip under the capacity.
type userQuota struct {
	mu       sync.Mutex
	counters map[Category]*counter
	lastSeen time.Time
}

// Limiter is an in-memory per-user rate limiter.
type Limiter struct {
	cfg   Config
	mu    sync.Mutex
	users map[int64]*userQuota
	now   func() time.Time
}

// NewLimiter creates a limiter with an empty quota map.
func NewLimiter(cfg Config) *Limiter {
	return &Limiter{
		cfg:   cfg,
		users: make(map[int64]*userQuota),
		now:   time.Now,
	}
}

func (l *Limiter) quotaFor(userID int64, now time.Time) *userQuota {
	l.mu.Lock()
	defer l.mu.Unlock()

	q, ok := l.users[userID]
	if !ok {
		q = &userQuota{counters: make(map[Category]*counter)}
		l.users[userID] = q
	}
	q.lastSeen = now
	return q
}

// CheckAndRecord atomically checks the user's quota for the category and, if
// capacity remains, records the request. On denial the returned RetryAfter
// reports how long until the current window expires.
func (l *Limiter) CheckAndRecord(userID int64, cat Category) Result {
	capacity, window := l.cfg.limit(cat)
	now := l.now()
	q := l.quotaFor(userID, now)

	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.counters[cat]
	if !ok {
		c = &counter{windowStart: now}
		q.counters[cat] = c
	}

	if !now.Before(c.windowStart.Add(window)) {
		c.count = 0
		c.windowStart = now
	}

	if c.count < capacity {
		c.count++
		return Result{Allowed: true, Remaining: capacity - c.count}
	}

	return Result{
		Allowed:    false,
		RetryAfter: c.windowStart.Add(window).Sub(now),
	}
}

// Remaining reports how many requests the user has left in the current window
// without recording usage.
func (l *Limiter) Remaining(userID int64, cat Category) int {
	capacity, window := l.cfg.limit(cat)
	now := l.now()
	q := l.quotaFor(userID, now)

	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.counters[cat]
	if !ok || !now.Before(c.windowStart.Add(window)) {
		return capacity
	}
	if c.count >= capacity {
		return 0
	}
	return capacity - c.count
}

// ResetAt reports when the user's current window for the category expires.
// For a user with no recorded usage it returns the current time.
func (l *Limiter) ResetAt(userID int64, cat Category) time.Time {
	_, window := l.cfg.limit(cat)
	now := l.now()
	q := l.quotaFor(userID, now)

	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.counters[cat]
	if !ok || !now.Before(c.windowStart.Add(window)) {
		return now
	}
	return c.windowStart.Add(window)
}

// Cleanup drops quota entries for users not seen within maxAge and returns the
// number of entries removed. The quota map otherwise grows without bound.
func (l *Limiter) Cleanup(maxAge time.Duration) int {
	now := l.now()
	cutoff := now.Add(-maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, q := range l.users {
		// lastSeen is only written under l.mu, which is held here.
		if q.lastSeen.Before(cutoff) {
			delete(l.users, id)
			removed++
		}
	}
	return removed
}

// TrackedUsers reports the number of users currently held in the quota map.
func (l *Limiter) TrackedUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}
