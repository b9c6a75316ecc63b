package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagepet/internal/config"
	"imagepet/internal/motion"
	"imagepet/internal/pet"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newDetector() *Detector {
	cfg := config.Default()
	return NewDetector(cfg.Interaction, motion.NewSimulator(cfg.Motion, fixedRand(0.5)))
}

// square creates a sized 100x100 pet with its top-left corner at (x, y)
func square(id pet.ID, x, y float64) *pet.Pet {
	p := pet.New(id, "", 50, epoch)
	p.Size = pet.Size{Width: 100, Height: 100}
	p.Position = pet.Vec{X: x, Y: y}
	return p
}

func TestInRing(t *testing.T) {
	tests := []struct {
		name string
		dx   float64
		want bool
	}{
		{"overlapping", 0, false},
		{"inner edge excluded", 80, false},
		{"just inside inner edge", 80.5, true},
		{"touching", 100, true},
		{"one point two", 120, true},
		{"just inside outer edge", 149.5, true},
		{"outer edge excluded", 150, false},
		{"far apart", 400, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := square("a", 0, 0)
			b := square("b", tt.dx, 0)
			d, ok := InRing(a, b, 0.8, 1.5)
			assert.InDelta(t, tt.dx, d, 1e-9)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestInRing_UsesLongestSide(t *testing.T) {
	a := square("a", 0, 0)
	b := square("b", 0, 0)
	b.Size = pet.Size{Width: 60, Height: 120}
	// minDist = (100+120)/2 = 110, ring is (88, 165)
	b.Position = pet.Vec{X: 130, Y: 0}
	_, ok := InRing(a, b, 0.8, 1.5)
	assert.True(t, ok)

	b.Position = pet.Vec{X: 50 + 170 - 30, Y: -10}
	_, ok = InRing(a, b, 0.8, 1.5)
	assert.False(t, ok)
}

func TestDetect_SinglePair(t *testing.T) {
	d := newDetector()
	a := square("a", 100, 100)
	b := square("b", 220, 100) // minDist*1.2
	a.Velocity = pet.Vec{X: 5, Y: 0}
	b.Velocity = pet.Vec{X: -5, Y: 2.5}

	events := d.Detect([]*pet.Pet{a, b}, epoch)
	require.Len(t, events, 1)
	assert.Equal(t, pet.ID("a"), events[0].A)
	assert.Equal(t, pet.ID("b"), events[0].B)
	assert.InDelta(t, 120, events[0].Distance, 1e-9)

	assert.InDelta(t, 65, a.Happiness, 1e-9)
	assert.InDelta(t, 65, b.Happiness, 1e-9)
	assert.InDelta(t, 3, a.Velocity.X, 1e-9)
	assert.InDelta(t, 0.5, a.Velocity.Y, 1e-9)
	assert.InDelta(t, -3, b.Velocity.X, 1e-9)
	assert.InDelta(t, 2, b.Velocity.Y, 1e-9)
	assert.True(t, a.Excited)
	assert.True(t, b.Excited)
	assert.Equal(t, epoch, a.LastInteraction)
	assert.Equal(t, 1, b.Interactions)
}

func TestDetect_HappinessClamped(t *testing.T) {
	d := newDetector()
	a := square("a", 100, 100)
	b := square("b", 220, 100)
	a.Happiness = 95
	a.Velocity = pet.Vec{X: 3, Y: 0}
	b.Velocity = pet.Vec{X: 3, Y: 0}

	require.Len(t, d.Detect([]*pet.Pet{a, b}, epoch), 1)
	assert.InDelta(t, 100, a.Happiness, 1e-9)
}

func TestDetect_BlendReappliesMinSpeed(t *testing.T) {
	d := newDetector()
	a := square("a", 100, 100)
	b := square("b", 220, 100)
	a.Velocity = pet.Vec{X: 2, Y: 0}
	b.Velocity = pet.Vec{X: -8, Y: 0}

	require.Len(t, d.Detect([]*pet.Pet{a, b}, epoch), 1)
	// 0.8*2 + 0.2*-8 = 0, replaced by a spawn-band velocity
	assert.GreaterOrEqual(t, a.Velocity.Len(), 2.0)
	assert.InDelta(t, -6, b.Velocity.X, 1e-9)
}

func TestDetect_EntityGate(t *testing.T) {
	d := newDetector()
	a := square("a", 100, 100)
	b := square("b", 220, 100)
	a.Velocity = pet.Vec{X: 3, Y: 0}
	b.Velocity = pet.Vec{X: 3, Y: 0}
	pets := []*pet.Pet{a, b}

	require.Len(t, d.Detect(pets, epoch), 1)
	assert.Empty(t, d.Detect(pets, epoch.Add(799*time.Millisecond)))
	assert.InDelta(t, 65, a.Happiness, 1e-9, "no second physical effect inside the gate")

	assert.Len(t, d.Detect(pets, epoch.Add(800*time.Millisecond)), 1)
	assert.InDelta(t, 80, a.Happiness, 1e-9)
}

func TestDetect_OneGatedPetBlocksPair(t *testing.T) {
	d := newDetector()
	a := square("a", 100, 100)
	b := square("b", 220, 100)
	a.LastInteraction = epoch.Add(-100 * time.Millisecond)

	assert.Empty(t, d.Detect([]*pet.Pet{a, b}, epoch))
	assert.InDelta(t, 50, b.Happiness, 1e-9)
}

func TestDetect_GateCheckedAtEntry(t *testing.T) {
	d := newDetector()
	// b sits between a and c, in range of both
	a := square("a", 0, 200)
	b := square("b", 120, 200)
	c := square("c", 240, 200)
	for _, p := range []*pet.Pet{a, b, c} {
		p.Velocity = pet.Vec{X: 3, Y: 3}
	}

	events := d.Detect([]*pet.Pet{a, b, c}, epoch)
	require.Len(t, events, 2)
	assert.Equal(t, Event{A: "a", B: "b", At: epoch, Distance: 120}, events[0])
	assert.Equal(t, Event{A: "b", B: "c", At: epoch, Distance: 120}, events[1])
	assert.Equal(t, 2, b.Interactions)
	assert.InDelta(t, 80, b.Happiness, 1e-9)
}

func TestDetect_SkipsUnsized(t *testing.T) {
	d := newDetector()
	a := square("a", 100, 100)
	b := square("b", 220, 100)
	b.Size = pet.Size{}

	assert.Empty(t, d.Detect([]*pet.Pet{a, b}, epoch))
}

func TestDetect_ExcitedRotationInRange(t *testing.T) {
	cfg := config.Default()
	d := NewDetector(cfg.Interaction, motion.NewSimulator(cfg.Motion, fixedRand(0.9)))
	a := square("a", 100, 100)
	b := square("b", 220, 100)
	a.Velocity = pet.Vec{X: 3, Y: 0}
	b.Velocity = pet.Vec{X: 3, Y: 0}

	require.Len(t, d.Detect([]*pet.Pet{a, b}, epoch), 1)
	assert.InDelta(t, 8, a.Rotation, 1e-9)
}
