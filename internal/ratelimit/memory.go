package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local sliding-window log. Rejected requests are not
// recorded, so a client that backs off regains capacity as its accepted
// requests age out of the window.
type Memory struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemory(max int, window time.Duration, opts ...Option) *Memory {
	o := buildOptions(opts)
	max, window = normalize(max, window)
	return &Memory{
		max:    max,
		window: window,
		now:    o.now,
		hits:   make(map[string][]time.Time),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)
	m.sweepLocked(now, cutoff)

	hits := dropExpired(m.hits[key], cutoff)
	if len(hits) >= m.max {
		m.hits[key] = hits
		return false, nil
	}
	m.hits[key] = append(hits, now)
	return true, nil
}

// Len reports how many keys are currently tracked.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

// sweepLocked forgets idle keys at most once per window.
func (m *Memory) sweepLocked(now, cutoff time.Time) {
	if now.Sub(m.lastSweep) < m.window {
		return
	}
	m.lastSweep = now
	for key, hits := range m.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(m.hits, key)
		}
	}
}

func dropExpired(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}
