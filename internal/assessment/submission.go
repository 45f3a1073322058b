package assessment

import (
	"fmt"

	"github.com/gapscan/gapscan/internal/api"
	"github.com/gapscan/gapscan/internal/evidence"
	"github.com/gapscan/gapscan/internal/scoring"
)

// Submission is a fully resolved answer ready to send. All four builder
// paths (single, multi, defer, flag) converge on this shape so the
// coordinator has exactly one submit code path.
type Submission struct {
	QID        string
	AID        string
	Score      int
	IsDeferred bool
	IsFlagged  bool
	Evidence   *evidence.Attestation
}

// SingleSubmission builds the submission for a single-select answer. For
// questions with an evidence policy the caller must open the gate
// instead and build the submission from the confirmed draft.
func (s *State) SingleSubmission(qid, aid string) (Submission, error) {
	q := s.Catalog.ByID(qid)
	if q == nil {
		return Submission{}, fmt.Errorf("single submission: unknown question %q", qid)
	}
	if q.Option(aid) == nil {
		return Submission{}, fmt.Errorf("single submission: question %q has no option %q", qid, aid)
	}
	return Submission{
		QID:       qid,
		AID:       aid,
		Score:     scoring.OptionScore(q, aid),
		IsFlagged: s.Mirror.IsFlagged(qid),
	}, nil
}

// MultiSubmission builds the submission for the current multi-select
// draft. The answer id is the comma-joined selection list and the score
// comes from the selection-count banding.
func (s *State) MultiSubmission(qid string) (Submission, error) {
	q := s.Catalog.ByID(qid)
	if q == nil {
		return Submission{}, fmt.Errorf("multi submission: unknown question %q", qid)
	}
	if !q.IsMultiSelect() {
		return Submission{}, fmt.Errorf("multi submission: question %q is not multi-select", qid)
	}
	selections := s.MultiSelections(qid)
	if len(selections) == 0 {
		return Submission{}, fmt.Errorf("multi submission: no options selected for %q", qid)
	}
	return Submission{
		QID:       qid,
		AID:       scoring.JoinSelections(selections),
		Score:     scoring.MultiSelectScore(len(selections)),
		IsFlagged: s.Mirror.IsFlagged(qid),
	}, nil
}

// GatedSubmission builds the submission for a confirmed evidence draft.
func (s *State) GatedSubmission(draft evidence.Draft, att evidence.Attestation) Submission {
	a := att
	return Submission{
		QID:       draft.QID,
		AID:       draft.AID,
		Score:     draft.Score,
		IsFlagged: s.Mirror.IsFlagged(draft.QID),
		Evidence:  &a,
	}
}

// DeferSubmission re-submits the question's answer with the deferred
// marker set. An unanswered question gets its first option as a
// placeholder so the deferral still carries a score.
func (s *State) DeferSubmission(qid string) (Submission, error) {
	aid, score, ok := s.recordedAnswer(qid)
	if !ok {
		return Submission{}, fmt.Errorf("defer: question %q has no options", qid)
	}
	return Submission{
		QID:        qid,
		AID:        aid,
		Score:      score,
		IsDeferred: true,
		IsFlagged:  s.Mirror.IsFlagged(qid),
	}, nil
}

// FlagSubmission re-submits the question's answer with the flag marker
// inverted. Score and deferred status are carried through unchanged.
func (s *State) FlagSubmission(qid string) (Submission, error) {
	aid, score, ok := s.recordedAnswer(qid)
	if !ok {
		return Submission{}, fmt.Errorf("flag: question %q has no options", qid)
	}
	return Submission{
		QID:        qid,
		AID:        aid,
		Score:      score,
		IsDeferred: s.Mirror.IsDeferred(qid),
		IsFlagged:  !s.Mirror.IsFlagged(qid),
	}, nil
}

// Request expands the submission into the wire request for this session.
func (s *State) Request(sub Submission) api.SubmitRequest {
	return api.SubmitRequest{
		AssessmentID: s.AssessmentID,
		QID:          sub.QID,
		AID:          sub.AID,
		Score:        sub.Score,
		PackID:       s.PackID,
		IsDeferred:   sub.IsDeferred,
		IsFlagged:    sub.IsFlagged,
		Evidence:     sub.Evidence,
		Origin:       s.Origin(sub.QID),
		SessionID:    s.SessionID,
	}
}
