// Package timers holds deadline callbacks that fire when the owner advances time.
//
// A Wheel has a single writer: the tick loop calls Advance, and callbacks run
// on that goroutine. Nothing fires between ticks, so state touched by a
// callback never races with the simulation.
package timers

import (
	"slices"
	"time"
)

// Wheel is a set of pending timers keyed by deadline
type Wheel struct {
	now     time.Time
	seq     uint64
	pending map[uint64]*Timer
}

// Timer is a handle to one scheduled callback
type Timer struct {
	id     uint64
	wheel  *Wheel
	at     time.Time
	every  time.Duration
	fn     func(now time.Time)
	active bool
}

// NewWheel creates an empty wheel whose clock starts at now
func NewWheel(now time.Time) *Wheel {
	return &Wheel{now: now, pending: make(map[uint64]*Timer)}
}

// Now returns the time of the last Advance
func (w *Wheel) Now() time.Time { return w.now }

// Len returns the number of pending timers
func (w *Wheel) Len() int { return len(w.pending) }

// After schedules fn to run once, d after the wheel's current time
func (w *Wheel) After(d time.Duration, fn func(now time.Time)) *Timer {
	return w.schedule(d, 0, fn)
}

// Every schedules fn to run every d. A periodic timer fires at most once per Advance.
func (w *Wheel) Every(d time.Duration, fn func(now time.Time)) *Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return w.schedule(d, d, fn)
}

func (w *Wheel) schedule(d, every time.Duration, fn func(time.Time)) *Timer {
	w.seq++
	t := &Timer{
		id:     w.seq,
		wheel:  w,
		at:     w.now.Add(d),
		every:  every,
		fn:     fn,
		active: true,
	}
	w.pending[t.id] = t
	return t
}

// Advance moves the wheel to now and fires every timer whose deadline has
// passed, earliest first. Returns the number of callbacks run.
func (w *Wheel) Advance(now time.Time) int {
	if now.After(w.now) {
		w.now = now
	}

	fired := 0
	for {
		due := w.due()
		if len(due) == 0 {
			return fired
		}
		for _, t := range due {
			// An earlier callback may have cancelled this one
			if !t.active {
				continue
			}
			if t.every > 0 {
				t.at = t.at.Add(t.every)
				if !t.at.After(w.now) {
					t.at = w.now.Add(t.every)
				}
			} else {
				t.active = false
				delete(w.pending, t.id)
			}
			t.fn(w.now)
			fired++
		}
	}
}

func (w *Wheel) due() []*Timer {
	var due []*Timer
	for _, t := range w.pending {
		if !t.at.After(w.now) {
			due = append(due, t)
		}
	}
	slices.SortFunc(due, func(a, b *Timer) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return int(a.id) - int(b.id)
	})
	return due
}

// CancelAll cancels every pending timer
func (w *Wheel) CancelAll() {
	for _, t := range w.pending {
		t.active = false
	}
	clear(w.pending)
}

// Cancel stops the timer. It is safe to call more than once and reports
// whether the timer was still pending.
func (t *Timer) Cancel() bool {
	if t == nil || !t.active {
		return false
	}
	t.active = false
	delete(t.wheel.pending, t.id)
	return true
}

// Active reports whether the timer is still pending
func (t *Timer) Active() bool {
	return t != nil && t.active
}

// Deadline returns when the timer fires next
func (t *Timer) Deadline() time.Time { return t.at }
