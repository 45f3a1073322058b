package home

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/gapscan/gapscan/internal/api"
	"github.com/gapscan/gapscan/internal/assessment"
	"github.com/gapscan/gapscan/internal/catalog"
	"github.com/gapscan/gapscan/internal/config"
	"github.com/gapscan/gapscan/internal/flow"
	"github.com/gapscan/gapscan/internal/overrides"
	"github.com/gapscan/gapscan/internal/router"
	"github.com/gapscan/gapscan/internal/screen"
	assessmentscreen "github.com/gapscan/gapscan/internal/screens/assessment"
	"github.com/gapscan/gapscan/internal/store"
	"github.com/gapscan/gapscan/internal/ui/components"
	"github.com/gapscan/gapscan/internal/ui/theme"
)

// Deps carries the collaborators the home screen hands down to the
// assessment flow.
type Deps struct {
	Client *api.Client
	Store  *store.Store
	Config config.Config
}

// HomeScreen is the entry screen: pick an assessment and start or
// resume its flow.
type HomeScreen struct {
	deps Deps

	menu     components.Menu
	input    components.TextInput
	entering bool
	loading  bool
	status   string
	statusIs components.BannerLevel
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{
		deps:  deps,
		input: components.NewTextInput("assessment id, e.g. asmt-1", 64),
	}
	items := []components.MenuItem{
		{Label: "OPEN ASSESSMENT", Detail: "start or resume a maturity assessment", Action: func() tea.Cmd {
			h.entering = true
			h.status = ""
			return h.input.Init()
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case bootstrapMsg:
		return h.handleBootstrap(msg)

	case tea.KeyMsg:
		if h.loading {
			return h, nil
		}
		if h.entering {
			switch msg.String() {
			case "enter":
				id := strings.TrimSpace(h.input.Value())
				if id == "" {
					return h, nil
				}
				h.loading = true
				h.status = "Contacting server..."
				h.statusIs = components.BannerInfo
				return h, h.bootstrap(id)
			case "esc":
				h.entering = false
				h.status = ""
				return h, nil
			}
			var cmd tea.Cmd
			h.input, cmd = h.input.Update(msg)
			return h, cmd
		}
	}

	if h.entering || h.loading {
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("G A P S C A N"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("compliance maturity assessment"))
	b.WriteString("\n\n\n")

	if h.entering {
		prompt := theme.Body.Render("Assessment ID: ") + h.input.View()
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, prompt))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(width).Align(lipgloss.Center).Render("Enter to open, Esc to cancel"))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	}

	if h.status != "" {
		banner := components.Banner{Level: h.statusIs, Message: h.status}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, banner.View(width-4)))
	}

	return b.String()
}

// bootstrapMsg carries the result of the assessment bootstrap chain.
type bootstrapMsg struct {
	ID        string
	Catalog   *catalog.Catalog
	Policies  *catalog.PolicyTable
	Mirror    *flow.ResumptionState
	Overrides *overrides.Store
	Set       overrides.Set
	Err       error
}

// errIntakeIncomplete blocks entry when the organization profile has
// not been filled in yet.
var errIntakeIncomplete = errors.New("intake incomplete: fill in the organization profile before assessing")

// bootstrap runs the entry chain: intake gate, catalog fetch, resumption
// fetch, local override load.
func (h *HomeScreen) bootstrap(id string) tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()

		intake, err := deps.Client.Intake(ctx, id)
		if err != nil {
			return bootstrapMsg{ID: id, Err: err}
		}
		if !api.IntakeComplete(intake) {
			return bootstrapMsg{ID: id, Err: errIntakeIncomplete}
		}

		payload, err := deps.Client.Questions(ctx, id)
		if err != nil {
			return bootstrapMsg{ID: id, Err: err}
		}
		cat := catalog.New(payload.Questions)
		policies := catalog.NewPolicyTable(payload.EvidencePolicies)

		mirror, err := deps.Client.Resume(ctx, id)
		if err != nil {
			return bootstrapMsg{ID: id, Err: err}
		}

		ov := overrides.NewStore(deps.Store.OverrideRepo(), id, deps.Config.Identity.UserID)
		if err := ov.Load(ctx); err != nil {
			return bootstrapMsg{ID: id, Err: err}
		}

		return bootstrapMsg{
			ID:        id,
			Catalog:   cat,
			Policies:  policies,
			Mirror:    mirror,
			Overrides: ov,
			Set:       ov.Domains(),
		}
	}
}

func (h *HomeScreen) handleBootstrap(msg bootstrapMsg) (screen.Screen, tea.Cmd) {
	h.loading = false
	if msg.Err != nil {
		h.statusIs = components.BannerError
		var nf *api.ErrNotFound
		switch {
		case errors.Is(msg.Err, errIntakeIncomplete):
			h.statusIs = components.BannerWarn
			h.status = msg.Err.Error()
		case errors.As(msg.Err, &nf):
			h.status = "Assessment " + nf.ID + " does not exist on the server."
		default:
			h.status = "Could not open assessment: " + msg.Err.Error()
		}
		return h, nil
	}

	h.entering = false
	h.status = ""

	state := assessment.NewState(
		msg.ID,
		uuid.New().String(),
		msg.Catalog,
		msg.Policies,
		msg.Mirror,
		msg.Set,
		assessment.Prefs{AutoAdvance: h.deps.Config.Flow.AutoAdvance},
	)
	state.PackID = h.deps.Config.Flow.PackID

	return h, func() tea.Msg {
		return router.PushScreenMsg{
			Screen: assessmentscreen.New(assessmentscreen.Deps{
				State:     state,
				Coord:     assessment.NewCoordinator(h.deps.Client),
				Client:    h.deps.Client,
				Overrides: msg.Overrides,
				Progress:  h.deps.Store.ProgressRepo(),
				UserID:    h.deps.Config.Identity.UserID,
			}),
		}
	}
}
