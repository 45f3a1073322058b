package components

import (
	"charm.land/lipgloss/v2"

	"github.com/gapscan/gapscan/internal/ui/theme"
)

// BannerLevel selects the banner styling.
type BannerLevel int

const (
	BannerInfo BannerLevel = iota
	BannerWarn
	BannerError
)

// Banner is a one-line status strip shown above the question pane:
// offline notices, validation messages, branch explanations.
type Banner struct {
	Level   BannerLevel
	Message string
}

// View renders the banner, empty string when there is no message.
func (b Banner) View(width int) string {
	if b.Message == "" {
		return ""
	}
	var style lipgloss.Style
	switch b.Level {
	case BannerError:
		style = theme.BannerError
	case BannerWarn:
		style = theme.BannerWarn
	default:
		style = theme.BannerInfo
	}
	return style.MaxWidth(width).Render(b.Message)
}
