package pet

// Roster holds the session's pets in adoption order
type Roster struct {
	order []ID
	byID  map[ID]*Pet
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{byID: make(map[ID]*Pet)}
}

// Add appends a pet. Adding an id twice replaces the stored pet but keeps its slot.
func (r *Roster) Add(p *Pet) {
	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
}

// Get returns the pet with the given id
func (r *Roster) Get(id ID) (*Pet, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Remove deletes a pet, preserving the order of the rest
func (r *Roster) Remove(id ID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the pets in adoption order
func (r *Roster) All() []*Pet {
	pets := make([]*Pet, 0, len(r.order))
	for _, id := range r.order {
		pets = append(pets, r.byID[id])
	}
	return pets
}

// Len returns the number of pets
func (r *Roster) Len() int {
	return len(r.order)
}
