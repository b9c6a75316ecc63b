package pet

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

// ID is an opaque pet identifier, stable for the pet's lifetime
type ID string

// NewID returns a fresh unique pet identifier
func NewID() ID {
	return ID("pet-" + uuid.NewString())
}

// Vec is a point or velocity in viewport units
type Vec struct {
	X, Y float64
}

// Add returns v+o
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v*k
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Len returns the Euclidean magnitude of v
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Size is a width/height pair in viewport units
type Size struct {
	Width  float64
	Height float64
}

// Empty reports whether either side is non-positive
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Pet represents one bouncing image and its happiness
type Pet struct {
	ID        ID
	ImageRef  string
	Happiness float64
	Position  Vec // Top-left corner
	Size      Size
	Velocity  Vec
	Rotation  float64 // Degrees, cosmetic only
	Grabbed   bool
	AdoptedAt time.Time

	// Consecutive ticks with near-zero displacement
	StuckTicks int

	// Interaction bookkeeping
	LastInteraction time.Time
	Excited         bool
	Interactions    int
}

// New creates an unsized pet. It does not move until SetNaturalSize is called.
func New(id ID, imageRef string, happiness float64, now time.Time) *Pet {
	return &Pet{
		ID:        id,
		ImageRef:  imageRef,
		Happiness: ClampHappiness(happiness),
		AdoptedAt: now,
	}
}

// FitAspect scales a natural image size so its longest side equals maxSize
func FitAspect(naturalW, naturalH, maxSize float64) Size {
	if naturalW <= 0 || naturalH <= 0 || maxSize <= 0 {
		return Size{}
	}
	ratio := naturalW / naturalH
	if ratio > 1 {
		return Size{Width: maxSize, Height: maxSize / ratio}
	}
	return Size{Width: maxSize * ratio, Height: maxSize}
}

// SetNaturalSize fixes the pet's dimensions from its image's natural size.
// Dimensions are computed once; later calls and invalid sizes are ignored.
func (p *Pet) SetNaturalSize(naturalW, naturalH, maxSize float64) bool {
	if p.Sized() {
		return false
	}
	size := FitAspect(naturalW, naturalH, maxSize)
	if size.Empty() {
		slog.Debug("ignoring invalid natural size", "pet", p.ID, "width", naturalW, "height", naturalH)
		return false
	}
	p.Size = size
	slog.Debug("pet dimensions resolved", "pet", p.ID, "width", size.Width, "height", size.Height)
	return true
}

// Sized reports whether the pet's dimensions are known
func (p *Pet) Sized() bool {
	return !p.Size.Empty()
}

// Center returns the geometric centre of the pet
func (p *Pet) Center() Vec {
	return Vec{p.Position.X + p.Size.Width/2, p.Position.Y + p.Size.Height/2}
}

// Diameter is the pet's extent used for proximity checks
func (p *Pet) Diameter() float64 {
	return math.Max(p.Size.Width, p.Size.Height)
}

// AddHappiness changes happiness by delta, clamped to [MinStat, MaxStat]
func (p *Pet) AddHappiness(delta float64) float64 {
	p.Happiness = ClampHappiness(p.Happiness + delta)
	return p.Happiness
}

// ClampHappiness clamps a happiness value to [MinStat, MaxStat]
func ClampHappiness(v float64) float64 {
	if math.IsNaN(v) || v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// ClampToViewport keeps the pet's top-left corner inside [0, extent-size] on both axes
func (p *Pet) ClampToViewport(width, height float64) {
	p.Position.X = clamp(p.Position.X, 0, math.Max(0, width-p.Size.Width))
	p.Position.Y = clamp(p.Position.Y, 0, math.Max(0, height-p.Size.Height))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
