// Package session runs one play session: the roster, the tick loop, scoring
// and drag handling. A session is not safe for concurrent use; the tick loop
// and pointer events must be delivered from the same goroutine.
package session

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"imagepet/internal/clock"
	"imagepet/internal/config"
	"imagepet/internal/highscore"
	"imagepet/internal/interaction"
	"imagepet/internal/ledger"
	"imagepet/internal/motion"
	"imagepet/internal/pet"
	"imagepet/internal/timers"
)

// Options configures a new session
type Options struct {
	Config   *config.Config
	Store    highscore.Store // Defaults to an in-memory store
	Rand     motion.Rand     // Defaults to a time-seeded PCG
	Start    time.Time       // Defaults to time.Now()
	Viewport motion.Viewport
}

// Stats is the scoreboard
type Stats struct {
	TotalInteractions int
	HighScore         int
	Pets              int
}

// Outcome is one proximity event and whether it scored
type Outcome struct {
	interaction.Event
	Counted bool
}

// TickReport summarises one tick
type TickReport struct {
	Tick       int
	Now        time.Time
	Delta      float64
	Bounces    int
	Recoveries int
	Decays     int
	Fired      int // Timer callbacks run this tick
	Outcomes   []Outcome
}

// handle is the per-pet animation state the session owns
type handle struct {
	excited *timers.Timer
}

func (h *handle) stop() {
	h.excited.Cancel()
}

// Session is the controller for one run of the simulation
type Session struct {
	cfg      *config.Config
	roster   *pet.Roster
	handles  map[pet.ID]*handle
	sim      *motion.Simulator
	detector *interaction.Detector
	ledger   *ledger.Ledger
	wheel    *timers.Wheel
	store    highscore.Store
	clock    clock.Source

	viewport motion.Viewport
	grabbed  pet.ID

	start    time.Time
	total    int
	high     int
	ticks    int
	lastTick time.Time
	closed   bool
}

// New creates a session and loads the stored high score. A store that cannot
// be read is logged and treated as zero.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	store := opts.Store
	if store == nil {
		store = &highscore.MemoryStore{}
	}
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	sim := motion.NewSimulator(cfg.Motion, rng)
	wheel := timers.NewWheel(start)
	s := &Session{
		cfg:      cfg,
		roster:   pet.NewRoster(),
		handles:  make(map[pet.ID]*handle),
		sim:      sim,
		detector: interaction.NewDetector(cfg.Interaction, sim),
		ledger:   ledger.New(cfg.Ledger, wheel),
		wheel:    wheel,
		store:    store,
		viewport: opts.Viewport,
		start:    start,
	}

	high, err := store.Load()
	if err != nil {
		slog.Warn("failed to load high score", "error", err)
		high = 0
	}
	s.high = max(0, high)
	return s
}

// StartClock starts the session's tick source, falling back to the coarse
// periodic clock when primary cannot start. Close stops it.
func (s *Session) StartClock(primary clock.Factory) (<-chan time.Time, error) {
	if s.clock != nil {
		return s.clock.C(), nil
	}
	src, err := clock.Start(primary, s.cfg.Session.TickInterval, s.cfg.Session.CoarseInterval)
	if err != nil {
		return nil, err
	}
	s.clock = src
	return src.C(), nil
}

// SetViewport updates the bounds used from the next tick on
func (s *Session) SetViewport(vp motion.Viewport) {
	s.viewport = vp
}

// Start returns the session's start time
func (s *Session) Start() time.Time { return s.start }

// Viewport returns the current bounds
func (s *Session) Viewport() motion.Viewport { return s.viewport }

// AddPet adopts a new pet. It stays unsized, and does not move or interact,
// until SetNaturalSize is called.
func (s *Session) AddPet(imageRef string) *pet.Pet {
	p := pet.New(pet.NewID(), imageRef, s.cfg.Pet.InitialHappiness, s.wheel.Now())
	p.Velocity = s.sim.SpawnVelocity()
	s.roster.Add(p)
	s.handles[p.ID] = &handle{}

	slog.Info("pet adopted", "pet", p.ID, "image", displayRef(imageRef), "pets", s.roster.Len())
	return p
}

// SetNaturalSize resolves a pet's size from its image and places it at a
// random spot in the viewport. Returns false for unknown or already sized pets.
func (s *Session) SetNaturalSize(id pet.ID, width, height float64) bool {
	p, ok := s.roster.Get(id)
	if !ok || !p.SetNaturalSize(width, height, s.cfg.Pet.MaxSize) {
		return false
	}
	p.Position = s.sim.SpawnPosition(p.Size, s.viewport)
	return true
}

// RemovePet removes a pet and cancels everything it owns
func (s *Session) RemovePet(id pet.ID) bool {
	if _, ok := s.roster.Get(id); !ok {
		return false
	}
	if h, ok := s.handles[id]; ok {
		h.stop()
		delete(s.handles, id)
	}
	if s.grabbed == id {
		s.grabbed = ""
	}
	s.ledger.Forget(id)
	s.roster.Remove(id)

	slog.Info("pet removed", "pet", id, "pets", s.roster.Len())
	return true
}

// Tick advances the simulation to now: due timers, then motion for every
// free pet, then proximity detection over the whole roster.
func (s *Session) Tick(now time.Time) TickReport {
	if s.closed {
		return TickReport{Now: now}
	}

	var elapsed time.Duration
	if !s.lastTick.IsZero() {
		elapsed = now.Sub(s.lastTick)
	}
	s.lastTick = now
	s.ticks++

	rep := TickReport{
		Tick:  s.ticks,
		Now:   now,
		Delta: motion.DeltaT(elapsed, s.cfg.Motion.NominalFrame, s.cfg.Motion.MaxDelta),
	}
	rep.Fired = s.wheel.Advance(now)

	for _, p := range s.roster.All() {
		out := s.sim.StepPet(p, s.viewport, rep.Delta, p.Excited)
		if out.BouncedX || out.BouncedY {
			rep.Bounces++
		}
		if out.Recovered {
			rep.Recoveries++
		}
		if out.Decayed {
			rep.Decays++
		}
	}

	for _, ev := range s.detector.Detect(s.roster.All(), now) {
		s.excite(ev.A)
		s.excite(ev.B)
		counted := s.OnInteractionCandidate(ledger.KeyOf(ev.A, ev.B), now)
		rep.Outcomes = append(rep.Outcomes, Outcome{Event: ev, Counted: counted})
	}
	return rep
}

// excite re-arms the pet's excited reversion
func (s *Session) excite(id pet.ID) {
	h, ok := s.handles[id]
	if !ok {
		return
	}
	h.excited.Cancel()
	h.excited = s.wheel.After(s.cfg.Interaction.ExcitedDuration, func(time.Time) {
		if p, ok := s.roster.Get(id); ok {
			p.Excited = false
		}
	})
}

// OnInteractionCandidate scores a proximity event unless the pair already
// scored within the ledger window. Raises and saves the high score when the
// total passes it.
func (s *Session) OnInteractionCandidate(key ledger.Key, at time.Time) bool {
	if s.closed || s.ledger.Live(key, at) {
		return false
	}
	s.ledger.Record(key, at)
	s.total++

	a, okA := s.roster.Get(key.A)
	b, okB := s.roster.Get(key.B)
	if okA && okB {
		mid := a.Center().Add(b.Center()).Scale(0.5)
		s.ledger.AddEffect(key, mid, at)
	}

	slog.Info("interaction counted", "pair", key.String(), "total", s.total)

	if s.total > s.high {
		s.high = s.total
		if err := s.store.Save(s.high); err != nil {
			slog.Warn("failed to save high score", "score", s.high, "error", err)
		} else {
			slog.Debug("high score saved", "score", s.high)
		}
	}
	return true
}

// Stats returns the scoreboard
func (s *Session) Stats() Stats {
	return Stats{
		TotalInteractions: s.total,
		HighScore:         s.high,
		Pets:              s.roster.Len(),
	}
}

// Pets returns the roster in adoption order
func (s *Session) Pets() []*pet.Pet {
	return s.roster.All()
}

// Pet looks up one pet
func (s *Session) Pet(id pet.ID) (*pet.Pet, bool) {
	return s.roster.Get(id)
}

// Effects returns the heart effects visible at now
func (s *Session) Effects(now time.Time) []ledger.Effect {
	return s.ledger.Effects(now)
}

// EffectDuration returns the heart lifetime, for fading
func (s *Session) EffectDuration() time.Duration {
	return s.ledger.EffectDuration()
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool { return s.closed }

// Close stops the clock and cancels every timer. Later ticks are no-ops.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.clock != nil {
		s.clock.Stop()
	}
	for id, h := range s.handles {
		h.stop()
		delete(s.handles, id)
	}
	s.ledger.Close()
	s.wheel.CancelAll()

	slog.Info("session closed", "ticks", s.ticks, "interactions", s.total, "high_score", s.high)
}

func displayRef(ref string) string {
	const limit = 48
	if len(ref) > limit {
		return ref[:limit] + "..."
	}
	return ref
}
