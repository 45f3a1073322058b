// Package assessment implements the main flow screen: sidebar, question
// pane, evidence modal, and the domain-override overlay.
package assessment

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/gapscan/gapscan/internal/api"
	asmt "github.com/gapscan/gapscan/internal/assessment"
	"github.com/gapscan/gapscan/internal/evidence"
	"github.com/gapscan/gapscan/internal/overrides"
	"github.com/gapscan/gapscan/internal/router"
	"github.com/gapscan/gapscan/internal/screen"
	"github.com/gapscan/gapscan/internal/screens/summary"
	"github.com/gapscan/gapscan/internal/store"
	"github.com/gapscan/gapscan/internal/ui/components"
	"github.com/gapscan/gapscan/internal/ui/layout"
)

// autoAdvanceDelay lets the user see the recorded answer before the
// cursor jumps to the server's suggestion.
const autoAdvanceDelay = 400 * time.Millisecond

type mode int

const (
	modeQuestion mode = iota
	modeEvidence
	modeDomains
)

// Deps carries the assessment screen's collaborators.
type Deps struct {
	State     *asmt.State
	Coord     *asmt.Coordinator
	Client    *api.Client
	Overrides *overrides.Store
	Progress  store.ProgressRepo
	UserID    string
}

// AssessmentScreen drives one assessment session.
type AssessmentScreen struct {
	deps Deps
	mode mode

	options components.OptionList
	multi   components.Checklist
	evid    components.Checklist
	banner  components.Banner

	domainCursor int
	submitting   bool
	offline      bool
	quitConfirm  bool

	// groups holds explicit sidebar expand/collapse choices per domain;
	// domains without an entry default to expanded only when active.
	groups map[string]bool

	ovEvents    chan overrides.Set
	watchCancel context.CancelFunc
	unsubscribe func()
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)
var _ screen.ProgressProvider = (*AssessmentScreen)(nil)

// New creates the assessment screen.
func New(deps Deps) *AssessmentScreen {
	s := &AssessmentScreen{
		deps:     deps,
		ovEvents: make(chan overrides.Set, 4),
		groups:   make(map[string]bool),
	}
	s.rebuildInputs()
	return s
}

func (s *AssessmentScreen) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel

	events := s.ovEvents
	s.unsubscribe = s.deps.Overrides.Subscribe(func(set overrides.Set) {
		select {
		case events <- set:
		default:
		}
	})
	go s.deps.Overrides.Watch(ctx, overrides.DefaultWatchInterval)

	return tea.Batch(s.waitOverrides(), s.saveProgress())
}

func (s *AssessmentScreen) Title() string {
	return "Assessment " + s.deps.State.AssessmentID
}

// HeaderProgress feeds the answered/total counter in the header bar.
func (s *AssessmentScreen) HeaderProgress() (int, int) {
	p := s.deps.State.Progress()
	return p.Answered, p.Total
}

// HandlesEsc keeps Esc on this screen: it cancels the evidence modal,
// closes the domains overlay, and drives the quit confirmation instead
// of popping the stack outright.
func (s *AssessmentScreen) HandlesEsc() bool { return true }

// groupExpanded reports whether a sidebar domain group is open. An
// explicit toggle wins; otherwise only the active question's domain
// starts open.
func (s *AssessmentScreen) groupExpanded(domain string) bool {
	if v, ok := s.groups[domain]; ok {
		return v
	}
	q := s.deps.State.CurrentQuestion()
	return q != nil && q.Domain == domain
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeEvidence:
		return []layout.KeyHint{
			{Key: "Space", Description: "Toggle check"},
			{Key: "E", Description: "No evidence"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeDomains:
		return []layout.KeyHint{
			{Key: "Space", Description: "Toggle domain"},
			{Key: "Enter", Description: "Go to domain"},
			{Key: "Esc", Description: "Close"},
		}
	}
	if s.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Stay"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Answer"},
		{Key: "←→", Description: "Question"},
		{Key: "D", Description: "Defer"},
		{Key: "F", Description: "Flag"},
		{Key: "Shift+D", Description: "First deferred"},
		{Key: "Shift+F", Description: "First flagged"},
		{Key: "O", Description: "Domains"},
		{Key: "S", Description: "Summary"},
		{Key: "Tab", Description: "Fold group"},
	}
	if q := s.deps.State.CurrentQuestion(); q != nil && q.IsMultiSelect() {
		hints = append([]layout.KeyHint{{Key: "Space", Description: "Toggle"}}, hints...)
	}
	return hints
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		return s.handleSubmitResult(msg)

	case advanceMsg:
		if s.deps.State.Nav.JumpTo(msg.QID) {
			s.rebuildInputs()
		}
		return s, nil

	case overridesChangedMsg:
		s.deps.State.SetOverrides(msg.Set)
		s.rebuildInputs()
		return s, s.waitOverrides()

	case toggleResultMsg:
		if msg.Err != nil {
			s.setBanner(components.BannerError, "Could not save override: "+msg.Err.Error())
		}
		return s, nil

	case progressSavedMsg:
		// Cache write failures are invisible: the cache only matters
		// when the network is already down.
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *AssessmentScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.teardown()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.mode {
	case modeEvidence:
		return s.handleEvidenceKey(key, msg)
	case modeDomains:
		return s.handleDomainsKey(key)
	}
	return s.handleQuestionKey(key, msg)
}

func (s *AssessmentScreen) handleQuestionKey(key string, msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	state := s.deps.State
	q := state.CurrentQuestion()

	switch key {
	case "esc":
		s.quitConfirm = true
		return s, nil
	case "right", "l", "n":
		if state.Nav.Next() {
			s.rebuildInputs()
		}
		return s, nil
	case "left", "h", "p":
		if state.Nav.Prev() {
			s.rebuildInputs()
		}
		return s, nil
	case "d":
		if q == nil {
			return s, nil
		}
		sub, err := state.DeferSubmission(q.ID)
		if err != nil {
			s.setBanner(components.BannerError, err.Error())
			return s, nil
		}
		return s, s.submit(sub)
	case "f":
		if q == nil {
			return s, nil
		}
		sub, err := state.FlagSubmission(q.ID)
		if err != nil {
			s.setBanner(components.BannerError, err.Error())
			return s, nil
		}
		return s, s.submit(sub)
	case "shift+d", "D":
		if state.Nav.JumpToFirstDeferred(state.Mirror) {
			s.rebuildInputs()
		}
		return s, nil
	case "shift+f", "F":
		if state.Nav.JumpToFirstFlagged(state.Mirror) {
			s.rebuildInputs()
		}
		return s, nil
	case "o":
		s.mode = modeDomains
		s.domainCursor = 0
		return s, nil
	case "tab":
		if q != nil {
			s.groups[q.Domain] = !s.groupExpanded(q.Domain)
		}
		return s, nil
	case "s":
		return s, s.openSummary()
	case "enter":
		return s.answerCurrent()
	}

	if q == nil {
		return s, nil
	}
	var cmd tea.Cmd
	if q.IsMultiSelect() {
		before := s.multi.CheckedIDs()
		s.multi, cmd = s.multi.Update(msg)
		after := s.multi.CheckedIDs()
		if len(before) != len(after) {
			state.MultiDraft[q.ID] = after
		}
	} else {
		s.options, cmd = s.options.Update(msg)
	}
	return s, cmd
}

// answerCurrent submits the current selection, or opens the evidence
// gate first when the question demands an attestation.
func (s *AssessmentScreen) answerCurrent() (screen.Screen, tea.Cmd) {
	state := s.deps.State
	q := state.CurrentQuestion()
	if q == nil {
		return s, nil
	}

	if q.IsMultiSelect() {
		state.MultiDraft[q.ID] = s.multi.CheckedIDs()
		sub, err := state.MultiSubmission(q.ID)
		if err != nil {
			s.setBanner(components.BannerWarn, "Select at least one option first.")
			return s, nil
		}
		return s, s.submit(sub)
	}

	opt := s.options.Current()
	if opt == nil {
		return s, nil
	}

	if q.RequiresEvidence() {
		policy := state.Policies.Policy(q.EvidencePolicyID)
		sub, err := state.SingleSubmission(q.ID, opt.ID)
		if err != nil {
			s.setBanner(components.BannerError, err.Error())
			return s, nil
		}
		state.Gate.Begin(evidence.Draft{
			QID:      q.ID,
			AID:      sub.AID,
			Score:    sub.Score,
			PolicyID: q.EvidencePolicyID,
		}, policy)
		s.buildEvidenceChecklist()
		s.mode = modeEvidence
		return s, nil
	}

	sub, err := state.SingleSubmission(q.ID, opt.ID)
	if err != nil {
		s.setBanner(components.BannerError, err.Error())
		return s, nil
	}
	return s, s.submit(sub)
}

func (s *AssessmentScreen) handleEvidenceKey(key string, msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	gate := s.deps.State.Gate

	switch key {
	case "esc":
		gate.Cancel()
		s.mode = modeQuestion
		return s, nil
	case "e":
		gate.SetHasEvidence(!gate.HasEvidence())
		s.buildEvidenceChecklist()
		return s, nil
	case "space", " ":
		if gate.HasEvidence() {
			if item := s.currentEvidenceItem(); item != nil {
				gate.ToggleCheck(item.ID)
				s.evid.SetChecked(item.ID, gate.Checked(item.ID))
			}
		}
		return s, nil
	case "enter":
		draft, att, err := gate.Confirm()
		if err != nil {
			if errors.Is(err, evidence.ErrChecksIncomplete) {
				s.setBanner(components.BannerWarn, "Required checks missing — complete them or declare no evidence.")
			} else {
				s.setBanner(components.BannerError, err.Error())
			}
			return s, nil
		}
		s.mode = modeQuestion
		return s, s.submit(s.deps.State.GatedSubmission(draft, att))
	}

	if gate.HasEvidence() {
		var cmd tea.Cmd
		// Cursor movement only: toggling runs through the gate above.
		if key == "up" || key == "k" || key == "down" || key == "j" {
			s.evid, cmd = s.evid.Update(msg)
		}
		return s, cmd
	}
	return s, nil
}

func (s *AssessmentScreen) handleDomainsKey(key string) (screen.Screen, tea.Cmd) {
	domains := s.deps.State.Catalog.Domains()
	switch key {
	case "esc", "o":
		s.mode = modeQuestion
		return s, nil
	case "up", "k":
		if s.domainCursor > 0 {
			s.domainCursor--
		}
	case "down", "j":
		if s.domainCursor < len(domains)-1 {
			s.domainCursor++
		}
	case "space", " ":
		if s.domainCursor < len(domains) {
			return s, s.toggleOverride(domains[s.domainCursor])
		}
	case "enter":
		if s.domainCursor < len(domains) {
			state := s.deps.State
			state.Nav.SetStartDomain(domains[s.domainCursor])
			if state.Nav.ConsumeStartDomain(state.Mirror, state.DomainOf) {
				s.rebuildInputs()
			}
			s.mode = modeQuestion
		}
	}
	return s, nil
}

// submit runs one submission through the coordinator.
func (s *AssessmentScreen) submit(sub asmt.Submission) tea.Cmd {
	if s.submitting || s.deps.Coord.InFlight() {
		s.setBanner(components.BannerWarn, "A submission is already in flight.")
		return nil
	}
	s.submitting = true

	state, coord := s.deps.State, s.deps.Coord
	return func() tea.Msg {
		res, err := coord.Submit(context.Background(), state, sub)
		return submitResultMsg{Res: res, Err: err}
	}
}

func (s *AssessmentScreen) handleSubmitResult(msg submitResultMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false

	if msg.Err != nil {
		var nf *api.ErrNotFound
		var val *api.ErrValidation
		var unavail *api.ErrUnavailable
		switch {
		case errors.As(msg.Err, &nf):
			s.teardown()
			id := s.deps.State.AssessmentID
			return s, func() tea.Msg { return router.HardResetMsg{AssessmentID: id} }
		case errors.As(msg.Err, &val):
			s.setBanner(components.BannerWarn, "Rejected: "+val.Message)
		case errors.As(msg.Err, &unavail):
			s.offline = true
			s.setBanner(components.BannerError, "Offline — answer not recorded, shown progress may be stale.")
		case errors.Is(msg.Err, asmt.ErrSubmissionInFlight):
			s.setBanner(components.BannerWarn, "A submission is already in flight.")
		default:
			s.setBanner(components.BannerError, msg.Err.Error())
		}
		return s, nil
	}

	s.offline = false
	if msg.Res.LogicReason != "" {
		s.setBanner(components.BannerInfo, msg.Res.LogicReason)
	} else {
		s.banner = components.Banner{}
	}
	s.rebuildInputs()

	cmds := []tea.Cmd{s.saveProgress()}
	if msg.Res.AdvanceTo != "" {
		target := msg.Res.AdvanceTo
		cmds = append(cmds, tea.Tick(autoAdvanceDelay, func(time.Time) tea.Msg {
			return advanceMsg{QID: target}
		}))
	}
	return s, tea.Batch(cmds...)
}

// toggleOverride flips a domain in the local override store. The
// subscription delivers the resulting set back as overridesChangedMsg.
func (s *AssessmentScreen) toggleOverride(domain string) tea.Cmd {
	ov := s.deps.Overrides
	return func() tea.Msg {
		if err := ov.Toggle(context.Background(), domain); err != nil {
			return toggleResultMsg{Err: err}
		}
		return toggleResultMsg{}
	}
}

// waitOverrides blocks until the next override-set change.
func (s *AssessmentScreen) waitOverrides() tea.Cmd {
	events := s.ovEvents
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		set, ok := <-events
		if !ok {
			return nil
		}
		return overridesChangedMsg{Set: set}
	}
}

// saveProgress caches answered/total counters locally so the home
// screen can show something when the server is unreachable.
func (s *AssessmentScreen) saveProgress() tea.Cmd {
	state := s.deps.State
	repo := s.deps.Progress
	userID := s.deps.UserID
	return func() tea.Msg {
		p := state.Progress()
		err := repo.Save(context.Background(), store.ProgressRecord{
			AssessmentID: state.AssessmentID,
			UserID:       userID,
			SessionID:    state.SessionID,
			Answered:     p.Answered,
			Total:        p.Total,
		})
		return progressSavedMsg{Err: err}
	}
}

func (s *AssessmentScreen) openSummary() tea.Cmd {
	state := s.deps.State
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: summary.New(state)}
	}
}

// rebuildInputs resyncs the option list and multi-select checklist with
// the current question and the authoritative mirror.
func (s *AssessmentScreen) rebuildInputs() {
	state := s.deps.State
	q := state.CurrentQuestion()
	if q == nil {
		return
	}

	if q.IsMultiSelect() {
		selected := make(map[string]bool)
		for _, id := range state.MultiSelections(q.ID) {
			selected[id] = true
		}
		items := make([]components.CheckItem, 0, len(q.Options))
		for _, opt := range q.Options {
			items = append(items, components.CheckItem{
				ID:      opt.ID,
				Label:   opt.Text,
				Checked: selected[opt.ID],
			})
		}
		s.multi = components.NewChecklist(items)
		return
	}

	opts := make([]components.Option, 0, len(q.Options))
	for _, opt := range q.Options {
		opts = append(opts, components.Option{ID: opt.ID, Label: opt.Text})
	}
	s.options = components.NewOptionList(opts, state.Mirror.Answer(q.ID).Single())
}

// buildEvidenceChecklist mirrors the gate's policy into the modal's
// checklist.
func (s *AssessmentScreen) buildEvidenceChecklist() {
	gate := s.deps.State.Gate
	policy := gate.Policy()
	if policy == nil {
		s.evid = components.NewChecklist(nil)
		return
	}
	items := make([]components.CheckItem, 0, len(policy.Checks))
	for _, c := range policy.Checks {
		items = append(items, components.CheckItem{
			ID:       c.ID,
			Label:    c.Label,
			Checked:  gate.Checked(c.ID),
			Required: policy.IsRequired(c.ID),
		})
	}
	s.evid = components.NewChecklist(items)
}

func (s *AssessmentScreen) currentEvidenceItem() *components.CheckItem {
	if s.evid.Cursor < 0 || s.evid.Cursor >= len(s.evid.Items) {
		return nil
	}
	return &s.evid.Items[s.evid.Cursor]
}

func (s *AssessmentScreen) setBanner(level components.BannerLevel, msg string) {
	s.banner = components.Banner{Level: level, Message: msg}
}

// teardown stops the override watcher before the screen goes away.
func (s *AssessmentScreen) teardown() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	// Unblocks the last re-armed waitOverrides command.
	if s.ovEvents != nil {
		close(s.ovEvents)
		s.ovEvents = nil
	}
}
