package assessment

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/gapscan/gapscan/internal/evidence"
	"github.com/gapscan/gapscan/internal/flow"
	"github.com/gapscan/gapscan/internal/ui/components"
	"github.com/gapscan/gapscan/internal/ui/layout"
	"github.com/gapscan/gapscan/internal/ui/theme"
)

const sidebarWidth = 32

func (s *AssessmentScreen) View(width, height int) string {
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}

	switch s.mode {
	case modeEvidence:
		return s.renderEvidenceModal(width, height)
	case modeDomains:
		return s.renderDomainsOverlay(width, height)
	}

	compact := layout.IsCompactWidth(width)
	mainWidth := width
	if !compact {
		mainWidth = width - sidebarWidth - 1
	}

	main := s.renderQuestionPane(mainWidth)
	if compact {
		return main
	}

	sidebar := s.renderSidebar(sidebarWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
}

// renderSidebar renders the domain-grouped question list.
func (s *AssessmentScreen) renderSidebar(width, height int) string {
	state := s.deps.State
	current := state.Nav.Current()

	var domains []string
	grouped := make(map[string][]flow.SidebarEntry)
	for _, entry := range state.Sidebar {
		if entry.Status == flow.StatusHidden {
			continue
		}
		if _, ok := grouped[entry.Domain]; !ok {
			domains = append(domains, entry.Domain)
		}
		grouped[entry.Domain] = append(grouped[entry.Domain], entry)
	}

	var b strings.Builder
	for i, domain := range domains {
		if i > 0 {
			b.WriteString("\n")
		}
		expanded := s.groupExpanded(domain)
		marker := "▾"
		if !expanded {
			marker = "▸"
		}
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			Render(fmt.Sprintf(" %s %s", marker, domain)))
		if !expanded {
			answered := 0
			for _, entry := range grouped[domain] {
				if state.Mirror.IsAnswered(entry.QID) {
					answered++
				}
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render(fmt.Sprintf(" %d/%d", answered, len(grouped[domain]))))
			b.WriteString("\n")
			continue
		}
		b.WriteString("\n")
		for _, entry := range grouped[domain] {
			b.WriteString(s.renderSidebarEntry(entry, entry.QID == current, width))
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(theme.Border).
		Render(b.String())
}

func (s *AssessmentScreen) renderSidebarEntry(entry flow.SidebarEntry, active bool, width int) string {
	state := s.deps.State

	glyph := "·"
	switch {
	case state.Mirror.IsDeferred(entry.QID):
		glyph = "…"
	case state.Mirror.IsAnswered(entry.QID):
		glyph = "✓"
	case entry.Status == flow.StatusLocked:
		glyph = "×"
	}

	title := entry.Title
	if title == "" {
		title = entry.QID
	}
	maxTitle := width - 8
	if runes := []rune(title); maxTitle > 0 && len(runes) > maxTitle {
		title = string(runes[:maxTitle-1]) + "…"
	}

	line := fmt.Sprintf("  %s %s", glyph, title)
	if state.Mirror.IsFlagged(entry.QID) {
		line += " ⚑"
	}

	switch {
	case active:
		return theme.Selected.Render("▸" + line[1:])
	case entry.Status == flow.StatusOverride:
		return theme.OverrideTag.Render(line)
	case state.Mirror.IsDeferred(entry.QID):
		return theme.Deferred.Render(line)
	case state.Mirror.IsAnswered(entry.QID):
		return theme.Answered.Render(line)
	case entry.Status == flow.StatusLocked:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(line)
	default:
		return theme.Unselected.Render(line)
	}
}

// renderQuestionPane renders the active question with its answer input.
func (s *AssessmentScreen) renderQuestionPane(width int) string {
	state := s.deps.State
	q := state.CurrentQuestion()

	var b strings.Builder

	if banner := s.banner.View(width - 2); banner != "" {
		b.WriteString(" " + banner + "\n\n")
	}

	if q == nil {
		b.WriteString(theme.Hint.Render("  No questions in the current path. Toggle a domain with O to expand the assessment."))
		return b.String()
	}

	// Domain progress line.
	for _, dp := range state.Progress().Domains {
		if dp.Domain != q.Domain {
			continue
		}
		pct := 0.0
		if dp.Total > 0 {
			pct = float64(dp.Answered) / float64(dp.Total)
		}
		bar := components.NewProgressBar(dp.Domain, pct, true, min(width-4, 50))
		b.WriteString("  " + bar.View() + "\n\n")
		break
	}

	// Question header with position and markers.
	pos := fmt.Sprintf("Question %d of %d", state.Nav.Index()+1, state.Nav.Len())
	header := lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + pos)
	if state.IsOverrideQuestion(q.ID) {
		header += "  " + theme.OverrideTag.Render("[override]")
	}
	if state.Mirror.IsDeferred(q.ID) {
		header += "  " + theme.Deferred.Render("[deferred]")
	}
	if state.Mirror.IsFlagged(q.ID) {
		header += "  " + theme.Flagged.Render("⚑ flagged")
	}
	b.WriteString(header + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render("  " + strings.Repeat("─", max(width-4, 1))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width - 4).
		Foreground(theme.Text).
		Bold(true).
		PaddingLeft(2).
		Render(q.Text))
	b.WriteString("\n")
	if q.Guidance != "" {
		b.WriteString(theme.Hint.Width(width - 4).PaddingLeft(2).Render(q.Guidance))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if q.IsMultiSelect() {
		b.WriteString(s.multi.View())
		b.WriteString("\n")
		b.WriteString(theme.Hint.PaddingLeft(2).Render("Space toggles, Enter records the selection."))
	} else {
		b.WriteString(s.options.View())
	}

	if s.submitting {
		b.WriteString("\n")
		b.WriteString(theme.Hint.PaddingLeft(2).Render("Submitting..."))
	}
	if s.offline {
		b.WriteString("\n")
		b.WriteString(theme.Blocked.PaddingLeft(2).Render("offline"))
	}

	return b.String()
}

// renderEvidenceModal renders the attestation gate.
func (s *AssessmentScreen) renderEvidenceModal(width, height int) string {
	gate := s.deps.State.Gate
	policy := gate.Policy()

	var b strings.Builder
	label := "Evidence attestation"
	if policy != nil {
		label = policy.Label
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(label))
	b.WriteString("\n")
	if policy != nil && policy.Description != "" {
		b.WriteString(theme.Hint.Render(policy.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if gate.HasEvidence() {
		b.WriteString(s.evid.View())
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("* required"))
	} else {
		b.WriteString(theme.Deferred.Render("No evidence declared."))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("The answer is recorded without attestation checks."))
	}

	b.WriteString("\n\n")
	if gate.State() == evidence.StateReady {
		b.WriteString(theme.Answered.Render("Ready — Enter to confirm"))
	} else if missing := len(gate.MissingRequired()); missing > 0 {
		b.WriteString(theme.Blocked.Render(fmt.Sprintf("%d required check(s) missing", missing)))
	} else {
		b.WriteString(theme.Hint.Render("Space to toggle checks, E to declare no evidence"))
	}

	if banner := s.banner.View(width - 8); banner != "" {
		b.WriteString("\n\n")
		b.WriteString(banner)
	}

	modal := theme.Modal.Width(min(width-8, 64)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

// renderDomainsOverlay renders the override-domain toggles.
func (s *AssessmentScreen) renderDomainsOverlay(width, height int) string {
	state := s.deps.State

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Assessment domains"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Overridden domains add all their questions to the flow."))
	b.WriteString("\n\n")

	for i, domain := range state.Catalog.Domains() {
		box := "[ ]"
		if state.Overrides[domain] {
			box = "[x]"
		}
		inPath := false
		for _, qid := range state.Mirror.ReachablePath {
			if state.DomainOf(qid) == domain {
				inPath = true
				break
			}
		}
		note := ""
		if inPath {
			note = theme.Hint.Render("  (in adaptive path)")
		}

		prefix := "  "
		if i == s.domainCursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s %s", prefix, box, domain)
		if i == s.domainCursor {
			b.WriteString(theme.Selected.Render(line) + note)
		} else if state.Overrides[domain] {
			b.WriteString(theme.OverrideTag.Render(line) + note)
		} else {
			b.WriteString(theme.Unselected.Render(line) + note)
		}
		b.WriteString("\n")
	}

	modal := theme.Modal.Width(min(width-8, 56)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave this assessment?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Answers are already saved on the server."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, back to home"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
