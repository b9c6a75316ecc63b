package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"imagepet/internal/session"
)

// renderPanel draws the scoreboard above the playfield
func (m Model) renderPanel() string {
	st := m.sess.Stats()
	line := fmt.Sprintf("🤝 Interactions: %d   🏆 Record: %d   🐾 Pets: %d",
		st.TotalInteractions, st.HighScore, st.Pets)
	title := gameStyles.title.Render("ImagePet")
	return gameStyles.panel.Render(lipgloss.JoinHorizontal(lipgloss.Center, title, line))
}

// ScoreCard renders the stored high score for the terminal
func ScoreCard(highScore int, updated time.Time, path string) string {
	makeBar := func(value int) string {
		filled := min(10, value/10)
		return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	}

	when := "never"
	if !updated.IsZero() {
		when = updated.Local().Format("2006-01-02 15:04")
	}

	var s strings.Builder
	s.WriteString("╔════════════════════════════════════╗\n")
	s.WriteString("║  🏆 ImagePet high score            ║\n")
	s.WriteString("╠════════════════════════════════════╣\n")
	s.WriteString(fmt.Sprintf("║  Record:  %-24d ║\n", highScore))
	s.WriteString(fmt.Sprintf("║  Meter:   [%s]             ║\n", makeBar(highScore)))
	s.WriteString(fmt.Sprintf("║  Updated: %-24s ║\n", when))
	s.WriteString("╚════════════════════════════════════╝\n")
	if path != "" {
		s.WriteString(gameStyles.help.Render(path) + "\n")
	}
	return s.String()
}

// Summary is a one-line scoreboard for headless runs
func Summary(st session.Stats) string {
	return fmt.Sprintf("interactions=%d high_score=%d pets=%d", st.TotalInteractions, st.HighScore, st.Pets)
}
