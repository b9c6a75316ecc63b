// Package motion integrates pet positions inside a bounded viewport.
package motion

import (
	"log/slog"
	"math"
	"time"

	"imagepet/internal/config"
	"imagepet/internal/pet"
)

// Rand supplies uniformly distributed values in [0,1). *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Viewport is the bounded area pets move in
type Viewport struct {
	Width  float64
	Height float64
}

// Degenerate reports whether the viewport has no usable area
func (v Viewport) Degenerate() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Body is the kinematic state of one pet
type Body struct {
	Position   pet.Vec
	Velocity   pet.Vec
	Size       pet.Size
	Rotation   float64
	StuckTicks int
}

// Input is everything one step needs, passed explicitly
type Input struct {
	Body
	Happiness   float64
	Interacting bool // Suppresses happiness decay
	Viewport    Viewport
	Delta       float64 // Elapsed time in nominal frames, see DeltaT
}

// Output is the result of one step
type Output struct {
	Body
	Happiness float64

	Moved     bool // False when the step was a no-op
	BouncedX  bool
	BouncedY  bool
	Respawned bool // Velocity replaced by minimum-speed enforcement
	Recovered bool // Velocity replaced by stuck recovery
	Perturbed bool
	Decayed   bool
}

// Simulator advances pets one tick at a time
type Simulator struct {
	cfg config.MotionConfig
	rng Rand
}

// NewSimulator creates a simulator with the given tuning and randomness source
func NewSimulator(cfg config.MotionConfig, rng Rand) *Simulator {
	return &Simulator{cfg: cfg, rng: rng}
}

// DeltaT converts elapsed wall time into nominal frames, capped at maxDelta.
// Non-positive elapsed time counts as one frame.
func DeltaT(elapsed, nominal time.Duration, maxDelta float64) float64 {
	if elapsed <= 0 || nominal <= 0 {
		return 1
	}
	return math.Min(maxDelta, float64(elapsed)/float64(nominal))
}

// SpeedFactor scales velocity by happiness, never below the configured floor
func (s *Simulator) SpeedFactor(happiness float64) float64 {
	return math.Max(s.cfg.MinSpeedFactor, happiness/pet.MaxStat)
}

// Step advances one body by one tick
func (s *Simulator) Step(in Input) Output {
	out := Output{Body: in.Body, Happiness: in.Happiness}
	if in.Viewport.Degenerate() || in.Size.Empty() {
		return out
	}
	out.Moved = true

	prev := in.Position
	factor := s.SpeedFactor(in.Happiness)
	next := prev.Add(in.Velocity.Scale(factor * in.Delta))
	vel := in.Velocity

	next.X, vel.X, out.BouncedX = s.reflect(next.X, vel.X, in.Size.Width, in.Viewport.Width)
	next.Y, vel.Y, out.BouncedY = s.reflect(next.Y, vel.Y, in.Size.Height, in.Viewport.Height)
	if out.BouncedX || out.BouncedY {
		vel = s.capSpeed(vel)
		out.Rotation = s.symmetric(s.cfg.BounceRotation)
	}

	vel, out.Respawned = s.EnforceMinSpeed(vel)

	if next.Sub(prev).Len() < s.cfg.StuckEpsilon {
		out.StuckTicks++
		if out.StuckTicks > s.cfg.StuckTicks {
			vel = s.RandomVelocity()
			out.StuckTicks = 0
			out.Recovered = true
		}
	} else {
		out.StuckTicks = 0
	}

	if s.rng.Float64() < s.cfg.PerturbChance {
		vel.X += s.symmetric(s.cfg.PerturbDelta)
		vel.Y += s.symmetric(s.cfg.PerturbDelta)
		vel = s.capSpeed(vel)
		vel, _ = s.EnforceMinSpeed(vel)
		out.Perturbed = true
	}

	if !in.Interacting && s.rng.Float64() < s.cfg.DecayChance {
		out.Happiness = pet.ClampHappiness(in.Happiness - s.cfg.DecayAmount)
		out.Decayed = out.Happiness != in.Happiness
	}

	out.Position = next
	out.Velocity = vel
	return out
}

// StepPet advances a pet in place. Grabbed pets are owned by the drag path and are skipped.
func (s *Simulator) StepPet(p *pet.Pet, vp Viewport, delta float64, interacting bool) Output {
	if p.Grabbed {
		return Output{Body: bodyOf(p), Happiness: p.Happiness}
	}

	out := s.Step(Input{
		Body:        bodyOf(p),
		Happiness:   p.Happiness,
		Interacting: interacting,
		Viewport:    vp,
		Delta:       delta,
	})
	if !out.Moved {
		return out
	}

	p.Position = out.Position
	p.Velocity = out.Velocity
	p.Rotation = out.Rotation
	p.StuckTicks = out.StuckTicks
	p.Happiness = out.Happiness

	if out.Recovered {
		slog.Debug("stuck recovery", "pet", p.ID, "x", p.Position.X, "y", p.Position.Y)
	}
	return out
}

// EnforceMinSpeed replaces a velocity slower than the minimum with a fresh random one
func (s *Simulator) EnforceMinSpeed(v pet.Vec) (pet.Vec, bool) {
	if v.Len() >= s.cfg.MinSpeed {
		return v, false
	}
	return s.RandomVelocity(), true
}

// RandomVelocity returns a velocity with a random heading and a speed in the spawn band
func (s *Simulator) RandomVelocity() pet.Vec {
	angle := s.rng.Float64() * 2 * math.Pi
	speed := s.cfg.SpawnSpeedMin + s.rng.Float64()*(s.cfg.SpawnSpeedMax-s.cfg.SpawnSpeedMin)
	return pet.Vec{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
}

// SpawnVelocity returns a velocity with a random sign and spawn-band magnitude on each axis
func (s *Simulator) SpawnVelocity() pet.Vec {
	axis := func() float64 {
		sign := 1.0
		if s.rng.Float64() < 0.5 {
			sign = -1
		}
		return sign * (s.cfg.SpawnSpeedMin + s.rng.Float64()*(s.cfg.SpawnSpeedMax-s.cfg.SpawnSpeedMin))
	}
	return pet.Vec{X: axis(), Y: axis()}
}

// SpawnPosition returns a random top-left corner that keeps size inside the viewport
func (s *Simulator) SpawnPosition(size pet.Size, vp Viewport) pet.Vec {
	return pet.Vec{
		X: s.rng.Float64() * math.Max(0, vp.Width-size.Width),
		Y: s.rng.Float64() * math.Max(0, vp.Height-size.Height),
	}
}

// Rotation returns a random angle in [-limit, limit] degrees
func (s *Simulator) Rotation(limit float64) float64 {
	return s.symmetric(limit)
}

// reflect bounces one axis off the viewport edges. The outgoing velocity always
// points back inside, so a shrinking viewport cannot trap a pet outside.
func (s *Simulator) reflect(pos, vel, size, extent float64) (float64, float64, bool) {
	upper := math.Max(0, extent-size)
	switch {
	case pos <= 0:
		return 0, math.Abs(vel) * s.cfg.Restitution, true
	case pos+size >= extent:
		return upper, -math.Abs(vel) * s.cfg.Restitution, true
	}
	return pos, vel, false
}

func (s *Simulator) capSpeed(v pet.Vec) pet.Vec {
	speed := v.Len()
	if s.cfg.MaxSpeed <= 0 || speed <= s.cfg.MaxSpeed {
		return v
	}
	return v.Scale(s.cfg.MaxSpeed / speed)
}

func (s *Simulator) symmetric(limit float64) float64 {
	return (s.rng.Float64()*2 - 1) * limit
}

func bodyOf(p *pet.Pet) Body {
	return Body{
		Position:   p.Position,
		Velocity:   p.Velocity,
		Size:       p.Size,
		Rotation:   p.Rotation,
		StuckTicks: p.StuckTicks,
	}
}
