// Package flow holds the client-side model of the server-computed
// assessment state: the resumption mirror, the reachability/override
// merger, and the navigation over the effective question sequence.
//
// The server owns the branching logic. The client never recomputes it;
// it replaces its mirror wholesale after every successful submission.
package flow

import (
	"encoding/json"
	"fmt"

	"github.com/gapscan/gapscan/internal/scoring"
)

// SidebarStatus is the display status of a sidebar entry.
type SidebarStatus string

const (
	StatusLocked   SidebarStatus = "locked"
	StatusUnlocked SidebarStatus = "unlocked"
	StatusHidden   SidebarStatus = "hidden"
	StatusOverride SidebarStatus = "override"
)

// SidebarEntry is the per-question display metadata for the sidebar tree.
type SidebarEntry struct {
	QID    string        `json:"q_id"`
	Domain string        `json:"domain"`
	Title  string        `json:"title"`
	Status SidebarStatus `json:"status"`
}

// AnswerValue is a recorded answer: one option id, or an ordered list of
// option ids for multi-select questions. The wire form is either a JSON
// string or a JSON array of strings.
type AnswerValue struct {
	Selections []string
}

// Single returns the single-select option id, or "" when empty.
func (v AnswerValue) Single() string {
	if len(v.Selections) == 0 {
		return ""
	}
	return v.Selections[0]
}

// IsEmpty reports whether no option is recorded.
func (v AnswerValue) IsEmpty() bool {
	return len(v.Selections) == 0
}

// Wire returns the submission wire form: the bare id for single answers,
// the comma-joined list for multi-select answers.
func (v AnswerValue) Wire() string {
	return scoring.JoinSelections(v.Selections)
}

// SingleAnswer builds an AnswerValue holding one option id.
func SingleAnswer(aid string) AnswerValue {
	return AnswerValue{Selections: []string{aid}}
}

// MultiAnswer builds an AnswerValue holding the given option ids.
func MultiAnswer(aids []string) AnswerValue {
	return AnswerValue{Selections: aids}
}

// UnmarshalJSON accepts both wire forms.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			v.Selections = nil
			return nil
		}
		v.Selections = scoring.SplitSelections(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("answer value: %w", err)
	}
	v.Selections = many
	return nil
}

// MarshalJSON emits the array form for multi-select values and the string
// form otherwise, mirroring what the server sends.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if len(v.Selections) > 1 {
		return json.Marshal(v.Selections)
	}
	return json.Marshal(v.Single())
}

// ResumptionState is the server-authoritative snapshot of an assessment.
// It is replaced in full on every successful mutation — never merged
// field-by-field with stale local data, so answers the server has since
// invalidated cannot be resurrected.
type ResumptionState struct {
	Responses     map[string]AnswerValue `json:"responses"`
	DeferredIDs   []string               `json:"deferred_ids"`
	FlaggedIDs    []string               `json:"flagged_ids"`
	ReachablePath []string               `json:"reachable_path"`
	Sidebar       []SidebarEntry         `json:"sidebar_context"`
	NextBestQID   string                 `json:"next_best_qid,omitempty"`
}

// IsDeferred reports whether qid is marked for later review.
func (s *ResumptionState) IsDeferred(qid string) bool {
	return containsID(s.DeferredIDs, qid)
}

// IsFlagged reports whether qid is marked for human review.
func (s *ResumptionState) IsFlagged(qid string) bool {
	return containsID(s.FlaggedIDs, qid)
}

// IsAnswered reports whether a non-empty answer is recorded for qid.
func (s *ResumptionState) IsAnswered(qid string) bool {
	v, ok := s.Responses[qid]
	return ok && !v.IsEmpty()
}

// Answer returns the recorded answer for qid, empty when absent.
func (s *ResumptionState) Answer(qid string) AnswerValue {
	return s.Responses[qid]
}

func containsID(ids []string, qid string) bool {
	for _, id := range ids {
		if id == qid {
			return true
		}
	}
	return false
}
