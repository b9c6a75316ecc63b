// Package interaction detects friendly approaches between pets and applies their effects.
package interaction

import (
	"log/slog"
	"time"

	"imagepet/internal/config"
	"imagepet/internal/motion"
	"imagepet/internal/pet"
)

// Event is one accepted proximity pair
type Event struct {
	A, B     pet.ID
	At       time.Time
	Distance float64
}

// Detector scans pet pairs for proximity. It mutates the pets involved in
// accepted pairs and reports them to the caller, which decides about scoring.
type Detector struct {
	cfg config.InteractionConfig
	sim *motion.Simulator
}

// NewDetector creates a detector. The simulator supplies minimum-speed
// enforcement and the randomness for excited rotation.
func NewDetector(cfg config.InteractionConfig, sim *motion.Simulator) *Detector {
	return &Detector{cfg: cfg, sim: sim}
}

// InRing reports whether two pets are close but not colliding, along with
// the distance between their centers
func InRing(a, b *pet.Pet, inner, outer float64) (float64, bool) {
	d := a.Center().Sub(b.Center()).Len()
	minDist := (a.Diameter() + b.Diameter()) / 2
	if minDist <= 0 {
		return d, false
	}
	return d, d > minDist*inner && d < minDist*outer
}

// Gated reports whether a pet interacted too recently to interact again
func (d *Detector) Gated(p *pet.Pet, now time.Time) bool {
	return !p.LastInteraction.IsZero() && now.Sub(p.LastInteraction) < d.cfg.Gate
}

// Detect evaluates every pair in slice order and applies the interaction
// effects to accepted pairs. Gates are read once at entry, so a pet may
// pair with several neighbors in the same pass.
func (d *Detector) Detect(pets []*pet.Pet, now time.Time) []Event {
	open := make([]bool, len(pets))
	for i, p := range pets {
		open[i] = p.Sized() && !d.Gated(p, now)
	}

	var events []Event
	for i := 0; i < len(pets); i++ {
		if !open[i] {
			continue
		}
		for j := i + 1; j < len(pets); j++ {
			if !open[j] {
				continue
			}
			a, b := pets[i], pets[j]
			dist, ok := InRing(a, b, d.cfg.RingInner, d.cfg.RingOuter)
			if !ok {
				continue
			}
			d.apply(a, b, now)
			events = append(events, Event{A: a.ID, B: b.ID, At: now, Distance: dist})
			slog.Debug("interaction", "a", a.ID, "b", b.ID, "distance", dist)
		}
	}
	return events
}

func (d *Detector) apply(a, b *pet.Pet, now time.Time) {
	va, vb := a.Velocity, b.Velocity
	w := d.cfg.SelfWeight
	a.Velocity = blend(va, vb, w)
	b.Velocity = blend(vb, va, w)

	for _, p := range []*pet.Pet{a, b} {
		p.Velocity, _ = d.sim.EnforceMinSpeed(p.Velocity)
		p.AddHappiness(d.cfg.HappinessBoost)
		p.Rotation = d.sim.Rotation(d.cfg.ExcitedRotation)
		p.Excited = true
		p.LastInteraction = now
		p.Interactions++
	}
}

func blend(self, other pet.Vec, w float64) pet.Vec {
	return self.Scale(w).Add(other.Scale(1 - w))
}
