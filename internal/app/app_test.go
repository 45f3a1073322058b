package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/gapscan/gapscan/internal/api"
	asmt "github.com/gapscan/gapscan/internal/assessment"
	"github.com/gapscan/gapscan/internal/catalog"
	"github.com/gapscan/gapscan/internal/evidence"
	"github.com/gapscan/gapscan/internal/flow"
	"github.com/gapscan/gapscan/internal/overrides"
	"github.com/gapscan/gapscan/internal/screen"
	"github.com/gapscan/gapscan/internal/screens/assessment"
	"github.com/gapscan/gapscan/internal/store"
)

// plainScreen stands in for screens with no Esc handling of their own.
type plainScreen struct{}

func (p plainScreen) Init() tea.Cmd                           { return nil }
func (p plainScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return p, nil }
func (p plainScreen) View(int, int) string                    { return "" }
func (p plainScreen) Title() string                           { return "Plain" }

type noopSubmitter struct{}

func (noopSubmitter) Submit(context.Context, api.SubmitRequest) (*api.SubmitReply, error) {
	return &api.SubmitReply{}, nil
}

type memOverrideRepo struct {
	domains []string
	version int64
}

func (r *memOverrideRepo) Get(_ context.Context, assessmentID, userID string) (store.OverrideRecord, error) {
	return store.OverrideRecord{
		AssessmentID: assessmentID,
		UserID:       userID,
		Domains:      r.domains,
		Version:      r.version,
	}, nil
}

func (r *memOverrideRepo) Save(_ context.Context, _, _ string, domains []string) error {
	r.domains = domains
	r.version++
	return nil
}

func (r *memOverrideRepo) Version(_ context.Context, _, _ string) (int64, error) {
	return r.version, nil
}

type memProgressRepo struct{}

func (memProgressRepo) Save(context.Context, store.ProgressRecord) error { return nil }
func (memProgressRepo) Get(context.Context, string, string) (*store.ProgressRecord, error) {
	return nil, nil
}

// gatedAssessmentScreen builds an assessment screen whose first question
// requires an evidence attestation, so Enter opens the modal.
func gatedAssessmentScreen() (*assessment.AssessmentScreen, *asmt.State) {
	cat := catalog.New([]catalog.Question{
		{
			ID:               "Q1",
			Domain:           "governance",
			Text:             "Is access reviewed?",
			EvidencePolicyID: "ep-review",
			Options: []catalog.AnswerOption{
				{ID: "opt-yes", Text: "Yes", Score: 3},
				{ID: "opt-no", Text: "No", Score: 0},
			},
		},
	})
	mirror := &flow.ResumptionState{
		Responses:     map[string]flow.AnswerValue{},
		ReachablePath: []string{"Q1"},
		Sidebar: []flow.SidebarEntry{
			{QID: "Q1", Domain: "governance", Title: "Access", Status: flow.StatusUnlocked},
		},
		NextBestQID: "Q1",
	}
	state := asmt.NewState("A-200", "sess-1", cat, catalog.NewPolicyTable(nil),
		mirror, overrides.Set{}, asmt.Prefs{})

	s := assessment.New(assessment.Deps{
		State:     state,
		Coord:     asmt.NewCoordinator(noopSubmitter{}),
		Overrides: overrides.NewStore(&memOverrideRepo{}, "A-200", "user-1"),
		Progress:  memProgressRepo{},
		UserID:    "user-1",
	})
	return s, state
}

func sendKey(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	// Feed navigation commands back the way the runtime would.
	if cmd != nil {
		if res := cmd(); res != nil {
			updated, _ = m.Update(res)
			m = updated.(Model)
		}
	}
	return m
}

func TestModelEscStaysOnAssessmentScreen(t *testing.T) {
	m := newModel(Options{})
	scr, state := gatedAssessmentScreen()
	_ = m.router.Push(scr)
	if m.router.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", m.router.Depth())
	}

	// Enter drafts the answer and opens the evidence modal.
	m = sendKey(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := state.Gate.State(); got != evidence.StateAwaiting {
		t.Fatalf("gate state after enter = %v, want awaiting", got)
	}

	// Esc must cancel the modal on the screen, not pop it off the stack.
	m = sendKey(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if got := state.Gate.State(); got != evidence.StateIdle {
		t.Errorf("gate state after esc = %v, want idle", got)
	}
	if m.router.Depth() != 2 {
		t.Errorf("Depth after esc = %d, want 2", m.router.Depth())
	}

	// The screen's own quit confirmation still leaves when accepted.
	m = sendKey(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 2 {
		t.Fatalf("Depth during quit confirm = %d, want 2", m.router.Depth())
	}
	m = sendKey(t, m, tea.KeyPressMsg{Code: 'y', Text: "y"})
	if m.router.Depth() != 1 {
		t.Errorf("Depth after confirmed quit = %d, want 1", m.router.Depth())
	}
}

func TestModelEscPopsPassiveScreens(t *testing.T) {
	m := newModel(Options{})
	_ = m.router.Push(plainScreen{})

	m = sendKey(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 1 {
		t.Errorf("Depth after esc = %d, want 1", m.router.Depth())
	}
}

func TestModelEscAtHomeDoesNothing(t *testing.T) {
	m := newModel(Options{})

	m = sendKey(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 1 {
		t.Errorf("Depth after esc at home = %d, want 1", m.router.Depth())
	}
}
