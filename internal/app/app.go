package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gapscan/gapscan/internal/api"
	"github.com/gapscan/gapscan/internal/config"
	"github.com/gapscan/gapscan/internal/router"
	"github.com/gapscan/gapscan/internal/screen"
	"github.com/gapscan/gapscan/internal/screens/home"
	"github.com/gapscan/gapscan/internal/store"
	"github.com/gapscan/gapscan/internal/ui/layout"
)

// Options carries the dependencies the TUI needs.
type Options struct {
	Client *api.Client
	Store  *store.Store
	Config config.Config
}

// Model is the root Bubble Tea model.
type Model struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

// newModel creates the root model with the home screen installed.
func newModel(opts Options) Model {
	homeScreen := home.New(home.Deps{
		Client: opts.Client,
		Store:  opts.Store,
		Config: opts.Config,
	})
	return Model{
		opts:   opts,
		router: router.New(homeScreen),
	}
}

func (m Model) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.HardResetMsg:
		// The assessment is gone server-side. Wipe everything local that
		// is scoped to it, then start over from a clean home screen.
		_ = m.opts.Store.Reset(context.Background(), msg.AssessmentID)
		fresh := home.New(home.Deps{
			Client: m.opts.Client,
			Store:  m.opts.Store,
			Config: m.opts.Config,
		})
		return m, m.router.Reset(fresh)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// Screens with their own Esc flows get the key first.
			if h, ok := m.router.Active().(screen.EscHandler); ok && h.HandlesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	answered, total := 0, 0
	if p, ok := active.(screen.ProgressProvider); ok {
		answered, total = p.HeaderProgress()
	}
	header := layout.RenderHeader(title, answered, total, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if h, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(h.KeyHints(), footerHints...)
	} else if m.router.Depth() > 1 {
		footerHints = append([]layout.KeyHint{{Key: "Esc", Description: "Back"}}, footerHints...)
	} else {
		footerHints = append([]layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
		}, footerHints...)
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
