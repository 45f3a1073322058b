package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	asmt "github.com/gapscan/gapscan/internal/assessment"
	"github.com/gapscan/gapscan/internal/router"
	"github.com/gapscan/gapscan/internal/screen"
	"github.com/gapscan/gapscan/internal/ui/components"
	"github.com/gapscan/gapscan/internal/ui/layout"
	"github.com/gapscan/gapscan/internal/ui/theme"
)

// SummaryScreen shows the per-domain completion breakdown of the
// running assessment.
type SummaryScreen struct {
	state *asmt.State
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen over the live session state.
func New(state *asmt.State) *SummaryScreen {
	return &SummaryScreen{state: state}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Summary"
}

// HandlesEsc claims Esc so the pop goes through this screen's own
// back navigation rather than the application fallback.
func (s *SummaryScreen) HandlesEsc() bool { return true }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to questions"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	p := s.state.Progress()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Assessment progress"))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Answered: %d/%d        Deferred: %d        Flagged: %d",
		p.Answered, p.Total, p.Deferred, p.Flagged)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Domains")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	for _, dp := range p.Domains {
		pct := 0.0
		if dp.Total > 0 {
			pct = float64(dp.Answered) / float64(dp.Total)
		}
		label := dp.Domain
		if s.state.Overrides[dp.Domain] {
			label += " " + theme.OverrideTag.Render("(override)")
		}
		bar := components.NewProgressBar(label, pct, true, barWidth)
		line := bar.View()
		if dp.Deferred > 0 || dp.Flagged > 0 {
			line += "  " + theme.Hint.Render(fmt.Sprintf("%d deferred, %d flagged", dp.Deferred, dp.Flagged))
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
