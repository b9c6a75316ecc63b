// Package clock delivers simulation ticks.
//
// The primary source is a drift-corrected scheduler goroutine. When it cannot
// be created the caller falls back to a plain time.Ticker at a coarser
// cadence, so the simulation slows down instead of stalling.
package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInterval is returned for non-positive tick intervals
var ErrInterval = errors.New("tick interval must be positive")

// Source delivers ticks until stopped. A slow consumer misses ticks rather
// than queueing them, so handlers never overlap.
type Source interface {
	C() <-chan time.Time
	Stop()
	Interval() time.Duration
}

// Factory creates a tick source
type Factory func(interval time.Duration) (Source, error)

// Start creates the primary source and falls back to a Periodic clock at the
// fallback interval if the primary cannot be created.
func Start(primary Factory, interval, fallback time.Duration) (Source, error) {
	if primary != nil {
		src, err := primary(interval)
		if err == nil {
			slog.Debug("clock started", "kind", "scheduler", "interval", interval)
			return src, nil
		}
		slog.Warn("primary clock unavailable, using periodic fallback", "error", err, "interval", fallback)
	}
	p, err := NewPeriodic(fallback)
	if err != nil {
		return nil, fmt.Errorf("starting fallback clock: %w", err)
	}
	return p, nil
}

// Scheduler is a drift-corrected tick loop. Each deadline is derived from the
// previous one rather than from when the handler finished.
type Scheduler struct {
	interval time.Duration
	ticks    chan time.Time
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	tickCount atomic.Uint64
	dropped   atomic.Uint64
}

// NewScheduler starts a scheduler. It satisfies Factory.
func NewScheduler(interval time.Duration) (Source, error) {
	if interval <= 0 {
		return nil, ErrInterval
	}
	s := &Scheduler{
		interval: interval,
		ticks:    make(chan time.Time, 1),
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	next := time.Now().Add(s.interval)
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-timer.C:
			select {
			case s.ticks <- now:
				s.tickCount.Add(1)
			default:
				s.dropped.Add(1)
			}

			next = next.Add(s.interval)
			// Too far behind: resync instead of bursting
			if now.Sub(next) > s.interval*2 {
				next = now.Add(s.interval)
			}
			timer.Reset(max(0, time.Until(next)))
		}
	}
}

// C returns the tick channel
func (s *Scheduler) C() <-chan time.Time { return s.ticks }

// Interval returns the nominal tick interval
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Ticks returns how many ticks were delivered and how many were dropped
func (s *Scheduler) Ticks() (delivered, dropped uint64) {
	return s.tickCount.Load(), s.dropped.Load()
}

// Stop halts the loop. No tick is sent after Stop returns.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

// Periodic is the fallback clock backed by time.Ticker
type Periodic struct {
	interval time.Duration
	ticker   *time.Ticker
	stopOnce sync.Once
}

// NewPeriodic starts a periodic clock. It satisfies Factory.
func NewPeriodic(interval time.Duration) (*Periodic, error) {
	if interval <= 0 {
		return nil, ErrInterval
	}
	return &Periodic{interval: interval, ticker: time.NewTicker(interval)}, nil
}

// C returns the tick channel
func (p *Periodic) C() <-chan time.Time { return p.ticker.C }

// Interval returns the tick interval
func (p *Periodic) Interval() time.Duration { return p.interval }

// Stop halts the ticker
func (p *Periodic) Stop() {
	p.stopOnce.Do(p.ticker.Stop)
}
