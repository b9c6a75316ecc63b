// Package ledger remembers recently counted pet pairs and the heart effects they spawn.
package ledger

import (
	"log/slog"
	"time"

	"imagepet/internal/config"
	"imagepet/internal/pet"
	"imagepet/internal/timers"
)

// Key identifies an unordered pet pair
type Key struct {
	A, B pet.ID
}

// KeyOf returns the key for a pair regardless of argument order
func KeyOf(a, b pet.ID) Key {
	if b < a {
		a, b = b, a
	}
	return Key{A: a, B: b}
}

// Has reports whether the pair includes id
func (k Key) Has(id pet.ID) bool {
	return k.A == id || k.B == id
}

func (k Key) String() string {
	return string(k.A) + "-" + string(k.B)
}

// Record is the last counted interaction of a pair
type Record struct {
	Key      Key
	LastTime time.Time
}

// Effect is a transient heart drawn where two pets met
type Effect struct {
	Key      Key
	Position pet.Vec
	Started  time.Time
}

// Opacity fades linearly from 1 to 0 over the effect's lifetime
func (e Effect) Opacity(now time.Time, lifetime time.Duration) float64 {
	if lifetime <= 0 {
		return 0
	}
	age := now.Sub(e.Started)
	if age < 0 {
		return 1
	}
	return max(0, 1-float64(age)/float64(lifetime))
}

// Ledger deduplicates scoring per pair and owns effect lifetimes.
// Its timers run on the wheel passed to New.
type Ledger struct {
	cfg     config.LedgerConfig
	wheel   *timers.Wheel
	records map[Key]Record
	effects []Effect
	cleanup map[Key]*timers.Timer
	sweep   *timers.Timer
}

// New creates a ledger and schedules its periodic sweep
func New(cfg config.LedgerConfig, wheel *timers.Wheel) *Ledger {
	l := &Ledger{
		cfg:     cfg,
		wheel:   wheel,
		records: make(map[Key]Record),
		cleanup: make(map[Key]*timers.Timer),
	}
	l.sweep = wheel.Every(cfg.SweepInterval, func(now time.Time) { l.Sweep(now) })
	return l
}

// Live reports whether the pair was counted within the window
func (l *Ledger) Live(k Key, now time.Time) bool {
	r, ok := l.records[k]
	return ok && now.Sub(r.LastTime) < l.cfg.Window
}

// Record marks the pair as counted at now
func (l *Ledger) Record(k Key, now time.Time) {
	l.records[k] = Record{Key: k, LastTime: now}
}

// Lookup returns the pair's record, if any
func (l *Ledger) Lookup(k Key) (Record, bool) {
	r, ok := l.records[k]
	return r, ok
}

// Len returns the number of stored records, expired or not
func (l *Ledger) Len() int { return len(l.records) }

// Sweep drops expired records and returns how many were removed
func (l *Ledger) Sweep(now time.Time) int {
	removed := 0
	for k, r := range l.records {
		if now.Sub(r.LastTime) >= l.cfg.Window {
			delete(l.records, k)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("ledger sweep", "removed", removed, "remaining", len(l.records))
	}
	return removed
}

// AddEffect spawns a heart for the pair and re-arms the pair's cleanup timer
func (l *Ledger) AddEffect(k Key, at pet.Vec, now time.Time) {
	l.effects = append(l.effects, Effect{Key: k, Position: at, Started: now})

	l.cleanup[k].Cancel()
	l.cleanup[k] = l.wheel.After(l.cfg.EffectDuration, func(now time.Time) {
		l.pruneEffects(now)
		delete(l.cleanup, k)
	})
}

func (l *Ledger) pruneEffects(now time.Time) {
	kept := l.effects[:0]
	for _, e := range l.effects {
		if now.Sub(e.Started) < l.cfg.EffectDuration {
			kept = append(kept, e)
		}
	}
	clear(l.effects[len(kept):])
	l.effects = kept
}

// Effects returns the effects still visible at now
func (l *Ledger) Effects(now time.Time) []Effect {
	var out []Effect
	for _, e := range l.effects {
		if now.Sub(e.Started) < l.cfg.EffectDuration {
			out = append(out, e)
		}
	}
	return out
}

// EffectDuration returns the configured heart lifetime
func (l *Ledger) EffectDuration() time.Duration { return l.cfg.EffectDuration }

// Forget removes every record, effect and timer involving id
func (l *Ledger) Forget(id pet.ID) {
	for k := range l.records {
		if k.Has(id) {
			delete(l.records, k)
		}
	}
	for k, t := range l.cleanup {
		if k.Has(id) {
			t.Cancel()
			delete(l.cleanup, k)
		}
	}
	kept := l.effects[:0]
	for _, e := range l.effects {
		if !e.Key.Has(id) {
			kept = append(kept, e)
		}
	}
	clear(l.effects[len(kept):])
	l.effects = kept
}

// Close cancels the sweep and every pending effect timer
func (l *Ledger) Close() {
	l.sweep.Cancel()
	for k, t := range l.cleanup {
		t.Cancel()
		delete(l.cleanup, k)
	}
	l.effects = nil
}
