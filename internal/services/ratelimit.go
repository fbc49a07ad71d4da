// Package services – TenantRateLimiter
//
// This file implements the per-tenant dispatch rate limiter: a fixed-window
// counter capping how many dispatch calls (not individual pushes — one call
// may fan out to many tokens) a tenant may make per window. It is an
// injected, process-scoped service rather than a module-level singleton, so
// it can be tested in isolation and later swapped for a distributed
// implementation.
//
// Concurrency: each tenant owns its own entry with its own mutex, so
// check-and-increment is atomic per tenant while dispatches for different
// tenants never block each other. The counters are deliberately not durable;
// a process restart resets them (rate limiting is a protective control, not
// a correctness guarantee).
package services

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// sweepEvery controls the opportunistic cleanup of expired windows: after
// this many Allow calls the whole map is swept so idle tenants do not pin
// memory forever (same eviction approach as the HTTP edge limiter).
const sweepEvery = 4096

// tenantWindow is one tenant's live counter. resetAt marks the end of the
// current window; a window is lazily recreated on first use after expiry.
type tenantWindow struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// TenantRateLimiter is a fixed-window dispatch counter keyed by tenant ID.
// It is safe for concurrent use.
type TenantRateLimiter struct {
	window time.Duration
	cap    int

	entries sync.Map // tenantID → *tenantWindow
	calls   atomic.Uint64

	// now is a clock seam for tests.
	now func() time.Time
}

// NewTenantRateLimiter constructs a limiter allowing maxCalls dispatch calls
// per tenant per window. maxCalls values < 1 are coerced to 1.
func NewTenantRateLimiter(window time.Duration, maxCalls int) *TenantRateLimiter {
	if maxCalls < 1 {
		maxCalls = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &TenantRateLimiter{
		window: window,
		cap:    maxCalls,
		now:    time.Now,
	}
}

// Allow performs the atomic check-and-increment for tenantID. It returns
// (true, 0) when the call is admitted, or (false, retryAfter) when the tenant
// has exhausted the current window; retryAfter is whole seconds until the
// window resets, always >= 1. On rejection the caller aborts the whole
// dispatch before any token is contacted.
func (l *TenantRateLimiter) Allow(tenantID string) (bool, int) {
	if l.calls.Add(1)%sweepEvery == 0 {
		l.sweep()
	}

	v, _ := l.entries.LoadOrStore(tenantID, &tenantWindow{})
	w := v.(*tenantWindow)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if w.resetAt.IsZero() || !now.Before(w.resetAt) {
		w.count = 1
		w.resetAt = now.Add(l.window)
		return true, 0
	}
	if w.count < l.cap {
		w.count++
		return true, 0
	}

	retry := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	if retry < 1 {
		retry = 1
	}
	return false, retry
}

// sweep drops entries whose window has long expired. Holding no per-entry
// lock while scanning is fine: a racing Allow either resurrects the entry via
// LoadOrStore or creates a fresh one, both of which start a new window.
func (l *TenantRateLimiter) sweep() {
	cutoff := l.now().Add(-l.window)
	l.entries.Range(func(key, value any) bool {
		w := value.(*tenantWindow)
		w.mu.Lock()
		expired := !w.resetAt.IsZero() && w.resetAt.Before(cutoff)
		w.mu.Unlock()
		if expired {
			l.entries.Delete(key)
		}
		return true
	})
}
