package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagepet/internal/pet"
)

func TestDrag(t *testing.T) {
	s := newSession(t, nil)
	p := place(t, s, 300, 300)
	p.Velocity = pet.Vec{X: 4, Y: -2}

	require.True(t, s.SetGrabbed(p.ID))
	id, ok := s.Grabbed()
	require.True(t, ok)
	assert.Equal(t, p.ID, id)

	require.True(t, s.UpdateGrabbedPosition(200, 150))
	assert.Equal(t, pet.Vec{X: 150, Y: 100}, p.Position, "pointer maps to the centre")
	assert.InDelta(t, 70.5, p.Happiness, 1e-9)

	s.Tick(epoch)
	assert.Equal(t, pet.Vec{X: 150, Y: 100}, p.Position, "grabbed pets do not move")

	require.True(t, s.UpdateGrabbedPosition(-50, 10000))
	assert.Equal(t, pet.Vec{X: 0, Y: 500}, p.Position)

	s.ClearGrabbed()
	assert.False(t, p.Grabbed)
	p.Happiness = 100
	s.Tick(epoch.Add(frame))
	assert.Equal(t, pet.Vec{X: 4, Y: 498}, p.Position, "resumes with its previous velocity")
}

func TestDragHappinessClamped(t *testing.T) {
	s := newSession(t, nil)
	p := place(t, s, 300, 300)
	p.Happiness = 99.8
	require.True(t, s.SetGrabbed(p.ID))

	s.UpdateGrabbedPosition(350, 350)
	assert.InDelta(t, 100, p.Happiness, 1e-9)
}

func TestGrabSwitchesPets(t *testing.T) {
	s := newSession(t, nil)
	a := place(t, s, 0, 0)
	b := place(t, s, 400, 400)

	require.True(t, s.SetGrabbed(a.ID))
	require.True(t, s.SetGrabbed(b.ID))
	assert.False(t, a.Grabbed)
	assert.True(t, b.Grabbed)
	assert.False(t, s.SetGrabbed("nobody"))
}

func TestUpdateWithoutGrab(t *testing.T) {
	s := newSession(t, nil)
	place(t, s, 300, 300)
	assert.False(t, s.UpdateGrabbedPosition(10, 10))
	s.ClearGrabbed()
}

func TestPetAt(t *testing.T) {
	s := newSession(t, nil)
	a := place(t, s, 100, 100)
	b := place(t, s, 150, 150)
	s.AddPet("pending.png")

	id, ok := s.PetAt(120, 120)
	require.True(t, ok)
	assert.Equal(t, a.ID, id)

	id, ok = s.PetAt(175, 175)
	require.True(t, ok)
	assert.Equal(t, b.ID, id, "topmost wins")

	_, ok = s.PetAt(700, 10)
	assert.False(t, ok)
}

func TestGrabbedPetStillInteracts(t *testing.T) {
	s := newSession(t, nil)
	a := place(t, s, 100, 100)
	place(t, s, 220, 100)
	require.True(t, s.SetGrabbed(a.ID))

	rep := s.Tick(epoch.Add(time.Millisecond))
	assert.Len(t, rep.Outcomes, 1)
}
