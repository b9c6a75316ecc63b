package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"imagepet/internal/pet"
)

var gameStyles = struct {
	title  lipgloss.Style
	panel  lipgloss.Style
	status lipgloss.Style
	help   lipgloss.Style
	heart  lipgloss.Style
}{
	title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF75B5")).
		Padding(0, 1),

	panel: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#FF75B5")).
		Padding(0, 1),

	status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF75B5")),

	help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6C6C6C")),

	heart: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF4D8D")),
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return "Thanks for playing!\n"
	}
	if m.TermWidth == 0 || m.TermHeight == 0 {
		return "Initializing..."
	}

	header := m.renderPanel()
	field := m.renderField()

	help := "drag pets with the mouse • n new pet • x release held pet • q quit"
	if m.Message != "" && m.Now.Before(m.MessageExpires) {
		help = gameStyles.status.Render(m.Message)
	} else {
		help = gameStyles.help.Render(help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, field, help)
}

// cell is one terminal cell of the playfield. An empty glyph marks the
// second half of a wide rune.
type cell struct {
	glyph string
	color string
}

type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for y := range g.cells {
		g.cells[y] = make([]cell, w)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{glyph: " "}
		}
	}
	return g
}

func (g *grid) set(x, y int, r rune, color string) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = cell{glyph: string(r), color: color}
}

// text writes s starting at (x, y), giving wide runes two cells
func (g *grid) text(x, y int, s, color string) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x < 0 || x+w > g.w || y < 0 || y >= g.h {
			return
		}
		g.cells[y][x] = cell{glyph: string(r), color: color}
		for i := 1; i < w; i++ {
			g.cells[y][x+i] = cell{color: color}
		}
		x += w
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for y, row := range g.cells {
		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			if c.glyph == "" {
				continue
			}
			if c.color != runColor {
				flush()
				runColor = c.color
			}
			run.WriteString(c.glyph)
		}
		flush()
		if y < len(g.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderField() string {
	rows := m.fieldRows()
	if rows == 0 {
		return ""
	}
	g := newGrid(m.TermWidth, rows)
	cw, ch := m.cfg.Viewport.CellWidth, m.cfg.Viewport.CellHeight

	for _, p := range m.sess.Pets() {
		if !p.Sized() {
			continue
		}
		x0 := int(math.Floor(p.Position.X / cw))
		y0 := int(math.Floor(p.Position.Y / ch))
		w := max(2, int(math.Round(p.Size.Width/cw)))
		h := max(2, int(math.Round(p.Size.Height/ch)))
		m.drawPet(g, p, x0, y0, w, h)
	}

	ttl := m.sess.EffectDuration()
	for _, e := range m.sess.Effects(m.Now) {
		glyph := HeartGlyph(e.Opacity(m.Now, ttl))
		if glyph == "" {
			continue
		}
		g.text(int(e.Position.X/cw), int(e.Position.Y/ch), glyph, "#FF4D8D")
	}

	return g.String()
}

func (m Model) drawPet(g *grid, p *pet.Pet, x0, y0, w, h int) {
	b := borderFor(p)
	color := moodColor(p.Happiness)
	if tint, ok := m.tints[p.ID]; ok && tint != "" && !p.Grabbed && !p.Excited {
		color = tint
	}

	x1, y1 := x0+w-1, y0+h-1
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, b.h, color)
		g.set(x, y1, b.h, color)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, b.v, color)
		g.set(x1, y, b.v, color)
	}
	g.set(x0, y0, b.tl, color)
	g.set(x1, y0, b.tr, color)
	g.set(x0, y1, b.bl, color)
	g.set(x1, y1, b.br, color)

	if w < 4 || h < 3 {
		return
	}
	midY := y0 + h/2
	emoji := pet.GetStatus(*p)
	g.text(x0+w/2-1, midY-boolInt(h >= 4), emoji, color)
	if h >= 4 {
		label := fmt.Sprintf("%d%%", int(p.Happiness))
		g.text(x0+(w-len(label))/2, midY, label, color)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
