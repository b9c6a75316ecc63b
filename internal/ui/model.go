package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"imagepet/internal/config"
	"imagepet/internal/intake"
	"imagepet/internal/motion"
	"imagepet/internal/pet"
	"imagepet/internal/session"
)

// Rows reserved around the playfield
const (
	headerRows = 3
	footerRows = 1
)

const messageDuration = 3 * time.Second

// Options configures the frontend
type Options struct {
	Config  *config.Config
	Session *session.Session
	Ticks   <-chan time.Time
	Images  []string                 // Image references adopted at start
	OnTick  func(session.TickReport) // Optional, e.g. telemetry
}

// Model is the bubbletea model for a play session
type Model struct {
	cfg     *config.Config
	sess    *session.Session
	ticks   <-chan time.Time
	onTick  func(session.TickReport)
	initial []string

	ctx    context.Context
	cancel context.CancelFunc

	tints map[pet.ID]string

	TermWidth  int
	TermHeight int
	Now        time.Time

	Message        string
	MessageExpires time.Time
	Quitting       bool
}

type tickMsg time.Time

type probedMsg struct {
	id     pet.ID
	result intake.Result
}

// NewModel creates the frontend model. Images are adopted immediately and
// probed in the background.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		cfg:     opts.Config,
		sess:    opts.Session,
		ticks:   opts.Ticks,
		onTick:  opts.OnTick,
		initial: opts.Images,
		ctx:     ctx,
		cancel:  cancel,
		tints:   make(map[pet.ID]string),
		Now:     time.Now(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForTick(m.ticks)}
	for _, ref := range m.initial {
		cmds = append(cmds, m.adopt(ref))
	}
	return tea.Batch(cmds...)
}

func waitForTick(ticks <-chan time.Time) tea.Cmd {
	if ticks == nil {
		return nil
	}
	return func() tea.Msg {
		return tickMsg(<-ticks)
	}
}

// adopt adds an unsized pet and probes its image
func (m Model) adopt(ref string) tea.Cmd {
	p := m.sess.AddPet(ref)
	return probe(m.ctx, p.ID, ref)
}

func probe(ctx context.Context, id pet.ID, ref string) tea.Cmd {
	return func() tea.Msg {
		select {
		case res := <-intake.ProbeAsync(ctx, ref):
			return probedMsg{id: id, result: res}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m.quit()
		case "n":
			p := m.sess.AddPet("")
			m.sess.SetNaturalSize(p.ID, m.cfg.Pet.DefaultWidth, m.cfg.Pet.DefaultHeight)
			m.setMessage("🐾 A new pet joined!")
		case "x":
			if id, ok := m.sess.Grabbed(); ok {
				m.sess.RemovePet(id)
				delete(m.tints, id)
				m.setMessage("👋 Bye!")
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.TermWidth = msg.Width
		m.TermHeight = msg.Height
		m.sess.SetViewport(m.viewport())
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tickMsg:
		m.Now = time.Time(msg)
		rep := m.sess.Tick(m.Now)
		if m.onTick != nil {
			m.onTick(rep)
		}
		return m, waitForTick(m.ticks)

	case probedMsg:
		m.resolve(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) resolve(msg probedMsg) {
	if msg.result.Err != nil {
		m.sess.RemovePet(msg.id)
		if errors.Is(msg.result.Err, intake.ErrNotImage) {
			m.setMessage("🚫 That is not an image")
		} else {
			m.setMessage("🚫 Could not load image")
		}
		slog.Warn("image rejected", "pet", msg.id, "error", msg.result.Err)
		return
	}
	img := msg.result.Image
	if m.sess.SetNaturalSize(msg.id, float64(img.Width), float64(img.Height)) {
		m.tints[msg.id] = img.Tint
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	row := msg.Y - headerRows
	if row < 0 || row >= m.fieldRows() || msg.X < 0 || msg.X >= m.TermWidth {
		// Leaving the playfield drops whatever is held
		m.sess.ClearGrabbed()
		return
	}
	x, y := m.toViewport(msg.X, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if id, ok := m.sess.PetAt(x, y); ok {
			m.sess.SetGrabbed(id)
			m.sess.UpdateGrabbedPosition(x, y)
		}
	case tea.MouseActionMotion:
		m.sess.UpdateGrabbedPosition(x, y)
	case tea.MouseActionRelease:
		m.sess.ClearGrabbed()
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Quitting = true
	m.cancel()
	m.sess.Close()
	return m, tea.Quit
}

func (m *Model) setMessage(msg string) {
	m.Message = msg
	m.MessageExpires = m.Now.Add(messageDuration)
}

// fieldRows is the playfield height in cells
func (m Model) fieldRows() int {
	return max(0, m.TermHeight-headerRows-footerRows)
}

// viewport converts the playfield to simulation units
func (m Model) viewport() motion.Viewport {
	return motion.Viewport{
		Width:  float64(m.TermWidth) * m.cfg.Viewport.CellWidth,
		Height: float64(m.fieldRows()) * m.cfg.Viewport.CellHeight,
	}
}

// toViewport maps a playfield cell to the centre of that cell in simulation units
func (m Model) toViewport(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * m.cfg.Viewport.CellWidth,
		(float64(row) + 0.5) * m.cfg.Viewport.CellHeight
}
