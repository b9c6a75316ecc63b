package session

import (
	"imagepet/internal/pet"
)

// SetGrabbed hands a pet's position to the pointer. Any other grabbed pet is released.
func (s *Session) SetGrabbed(id pet.ID) bool {
	if s.closed {
		return false
	}
	p, ok := s.roster.Get(id)
	if !ok {
		return false
	}
	if s.grabbed != "" && s.grabbed != id {
		s.ClearGrabbed()
	}
	p.Grabbed = true
	s.grabbed = id
	return true
}

// Grabbed returns the pet currently held by the pointer
func (s *Session) Grabbed() (pet.ID, bool) {
	return s.grabbed, s.grabbed != ""
}

// UpdateGrabbedPosition centres the grabbed pet on the pointer, clamped to
// the viewport, and pets it a little
func (s *Session) UpdateGrabbedPosition(x, y float64) bool {
	if s.closed || s.grabbed == "" {
		return false
	}
	p, ok := s.roster.Get(s.grabbed)
	if !ok {
		s.grabbed = ""
		return false
	}
	p.Position = pet.Vec{X: x - p.Size.Width/2, Y: y - p.Size.Height/2}
	p.ClampToViewport(s.viewport.Width, s.viewport.Height)
	p.AddHappiness(s.cfg.Session.DragHappiness)
	return true
}

// ClearGrabbed releases the grabbed pet. It resumes from where it was
// dropped with its previous velocity.
func (s *Session) ClearGrabbed() {
	if s.grabbed == "" {
		return
	}
	if p, ok := s.roster.Get(s.grabbed); ok {
		p.Grabbed = false
	}
	s.grabbed = ""
}

// PetAt returns the topmost sized pet under a viewport point
func (s *Session) PetAt(x, y float64) (pet.ID, bool) {
	pets := s.roster.All()
	for i := len(pets) - 1; i >= 0; i-- {
		p := pets[i]
		if !p.Sized() {
			continue
		}
		if x >= p.Position.X && x < p.Position.X+p.Size.Width &&
			y >= p.Position.Y && y < p.Position.Y+p.Size.Height {
			return p.ID, true
		}
	}
	return "", false
}
