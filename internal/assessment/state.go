// Package assessment ties the flow engine together: the catalog cache,
// the resumption mirror, the override merge, navigation, the evidence
// gate, and the submission coordinator that keeps them consistent with
// the server.
package assessment

import (
	"github.com/gapscan/gapscan/internal/catalog"
	"github.com/gapscan/gapscan/internal/evidence"
	"github.com/gapscan/gapscan/internal/flow"
	"github.com/gapscan/gapscan/internal/overrides"
	"github.com/gapscan/gapscan/internal/scoring"
)

// Prefs are the user preferences affecting flow behavior.
type Prefs struct {
	// AutoAdvance jumps to the server's next-best question after a
	// successful submission.
	AutoAdvance bool
}

// State is the runtime state of one assessment session. The resumption
// mirror inside it is authoritative-but-stale: it is only ever replaced
// wholesale from a server reply, while the effective sequence and sidebar
// are derived locally and recomputed whenever any input changes.
type State struct {
	AssessmentID string
	SessionID    string
	PackID       string

	Catalog  *catalog.Catalog
	Policies *catalog.PolicyTable

	// Mirror is the local copy of the server's resumption state.
	Mirror *flow.ResumptionState

	// Overrides is the current override-domain snapshot.
	Overrides overrides.Set

	// Derived: recomputed by Recompute, never mutated directly.
	Sequence []string
	Sidebar  []flow.SidebarEntry

	Nav  *flow.Navigator
	Gate *evidence.Gate

	// MultiDraft holds the provisional, unsaved selections of an
	// in-progress multi-select answer — the only optimistic local state.
	MultiDraft map[string][]string

	Prefs Prefs
}

// NewState assembles a session State and computes the initial sequence.
func NewState(assessmentID, sessionID string, cat *catalog.Catalog, policies *catalog.PolicyTable, mirror *flow.ResumptionState, ov overrides.Set, prefs Prefs) *State {
	s := &State{
		AssessmentID: assessmentID,
		SessionID:    sessionID,
		Catalog:      cat,
		Policies:     policies,
		Mirror:       mirror,
		Overrides:    ov,
		Nav:          flow.NewNavigator(nil),
		Gate:         evidence.NewGate(),
		MultiDraft:   make(map[string][]string),
		Prefs:        prefs,
	}
	s.Recompute()
	return s
}

// Recompute re-derives the effective sequence and sidebar from the three
// merge inputs and reconciles the navigator position.
func (s *State) Recompute() {
	prev := s.Nav.Current()
	s.Sequence = flow.Merge(s.Mirror.ReachablePath, s.Overrides, s.Catalog)
	s.Sidebar = flow.MergeSidebar(s.Mirror.Sidebar, s.Mirror.ReachablePath, s.Overrides, s.Catalog)
	s.Nav.Reconcile(s.Sequence, s.Mirror.NextBestQID, prev)
}

// ApplyResumption replaces the mirror with a fresh server snapshot. The
// old mirror is discarded entirely so superseded answers cannot leak
// back in.
func (s *State) ApplyResumption(fresh *flow.ResumptionState) {
	s.Mirror = fresh
	s.Recompute()
}

// SetOverrides applies a new override snapshot (local toggle or a write
// observed from another process).
func (s *State) SetOverrides(ov overrides.Set) {
	s.Overrides = ov
	s.Recompute()
}

// CurrentQuestion returns the question at the navigator position, nil
// when the sequence is empty.
func (s *State) CurrentQuestion() *catalog.Question {
	qid := s.Nav.Current()
	if qid == "" {
		return nil
	}
	return s.Catalog.ByID(qid)
}

// DomainOf resolves a question's domain, "" for unknown ids.
func (s *State) DomainOf(qid string) string {
	if q := s.Catalog.ByID(qid); q != nil {
		return q.Domain
	}
	return ""
}

// Origin reports how the question was reached, for the submission
// payload: "override" when it sits outside the server's base path,
// "adaptive" otherwise.
func (s *State) Origin(qid string) string {
	if flow.IsOverrideQuestion(qid, s.Mirror.ReachablePath, s.Overrides, s.Catalog) {
		return "override"
	}
	return "adaptive"
}

// IsOverrideQuestion reports whether qid is reachable only via an
// override domain. UI labeling only.
func (s *State) IsOverrideQuestion(qid string) bool {
	return flow.IsOverrideQuestion(qid, s.Mirror.ReachablePath, s.Overrides, s.Catalog)
}

// Progress summarizes completion over the effective sequence.
func (s *State) Progress() flow.Progress {
	return flow.ComputeProgress(s.Sequence, s.Mirror, s.DomainOf)
}

// ToggleMultiSelection flips one provisional selection of a multi-select
// question. Nothing is recorded until the draft is submitted.
func (s *State) ToggleMultiSelection(qid, aid string) {
	current := s.MultiSelections(qid)
	for i, id := range current {
		if id == aid {
			s.MultiDraft[qid] = append(current[:i:i], current[i+1:]...)
			return
		}
	}
	s.MultiDraft[qid] = append(current, aid)
}

// MultiSelections returns the provisional selections for qid, seeded from
// the recorded answer the first time the question is visited.
func (s *State) MultiSelections(qid string) []string {
	if draft, ok := s.MultiDraft[qid]; ok {
		return draft
	}
	recorded := s.Mirror.Answer(qid).Selections
	draft := make([]string, len(recorded))
	copy(draft, recorded)
	s.MultiDraft[qid] = draft
	return draft
}

// ClearMultiDraft drops the provisional selections after a submission so
// the next visit reseeds from the authoritative answer.
func (s *State) ClearMultiDraft(qid string) {
	delete(s.MultiDraft, qid)
}

// recordedAnswer resolves the answer to re-submit for defer and flag
// operations: the existing answer, or the question's first option as a
// placeholder so a score stays on record.
func (s *State) recordedAnswer(qid string) (aid string, score int, ok bool) {
	q := s.Catalog.ByID(qid)
	if q == nil {
		return "", 0, false
	}

	answer := s.Mirror.Answer(qid)
	if !answer.IsEmpty() {
		if q.IsMultiSelect() {
			return answer.Wire(), scoring.MultiSelectScore(len(answer.Selections)), true
		}
		return answer.Single(), scoring.OptionScore(q, answer.Single()), true
	}

	first := q.FirstOption()
	if first == nil {
		return "", 0, false
	}
	return first.ID, first.Score, true
}
