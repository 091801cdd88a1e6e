// Copyright (c) 2025 Lunchpick.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ratelimit provides a sliding-window request counter keyed by
// client identity. The clock is injected so tests can drive the window
// without sleeping.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	hits      map[string][]time.Time
	nextPrune time.Time
}

// New creates a limiter allowing limit requests per key within window.
// now is typically time.Now; tests pass a fake clock.
func New(limit int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		now:    now,
		hits:   make(map[string][]time.Time),
	}
}

// Allow records one request for key and reports whether it is within the
// limit. Rejected requests are not recorded against the window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Sweep idle keys at most once per window so the map does not grow
	// with every client address the server has ever seen.
	if !now.Before(l.nextPrune) {
		l.prune(cutoff)
		l.nextPrune = now.Add(l.window)
	}

	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// Prune drops keys whose every hit has aged out of the window, bounding
// memory for long-running servers. Allow runs the same sweep on its own at
// most once per window; Prune exists for callers that want one on demand.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now().Add(-l.window))
}

func (l *Limiter) prune(cutoff time.Time) {
	for key, times := range l.hits {
		live := false
		for _, t := range times {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.hits, key)
		}
	}
}
