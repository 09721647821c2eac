// Package nav holds the reference date the calendar views center on and the
// transitions that move it.
package nav

import (
	"sync"
	"time"

	"calgrid/internal/model"
)

// stepDays is the navigation stride for prev/next. Day, week and month views
// all share the same 7-day step; this is deliberate app behavior, not a
// per-view offset.
const stepDays = 7

// Machine is the navigation state machine: a single reference date plus the
// prev/next/today transitions. The today transition always resolves against
// the real clock (via the injected now func), never against the seed date.
type Machine struct {
	mu  sync.Mutex
	ref time.Time
	now func() time.Time
}

// New creates a Machine seeded at the given date. A zero seed starts at
// today. A nil now defaults to time.Now.
func New(seed time.Time, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	if seed.IsZero() {
		seed = now()
	}
	return &Machine{ref: dateOnly(seed), now: now}
}

// Current returns the reference date (midnight-normalized).
func (m *Machine) Current() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ref
}

// Navigate applies one transition and returns the new reference date.
// Directions are normalized the same way the HTTP layer normalizes them, so
// "NEXT" moves here exactly as it does over the wire. Unknown directions
// fail with model.ErrValidation and leave the state unchanged.
func (m *Machine) Navigate(dir model.Direction) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := model.ParseDirection(string(dir))
	if err != nil {
		return m.ref, err
	}

	switch d {
	case model.DirPrev:
		m.ref = m.ref.AddDate(0, 0, -stepDays)
	case model.DirNext:
		m.ref = m.ref.AddDate(0, 0, stepDays)
	case model.DirToday:
		m.ref = dateOnly(m.now())
	}
	return m.ref, nil
}

// dateOnly truncates t to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
