package catalog

// TagMultiSelect marks an answer option as part of a multi-select set.
// A question is multi-select when any of its options carries this tag.
const TagMultiSelect = "multiselect"

// AnswerOption is one selectable answer of a question.
type AnswerOption struct {
	ID    string `json:"a_id"`
	Text  string `json:"text"`
	Score int    `json:"score"`
	Tag   string `json:"tag,omitempty"`
}

// Question is a single catalog entry. Questions are immutable for the
// lifetime of an assessment session.
type Question struct {
	ID               string         `json:"q_id"`
	Domain           string         `json:"domain"`
	Text             string         `json:"text"`
	Guidance         string         `json:"guidance,omitempty"`
	EvidencePolicyID string         `json:"evidence_policy_id,omitempty"`
	Options          []AnswerOption `json:"options"`
}

// IsMultiSelect reports whether the question accepts multiple answers.
func (q *Question) IsMultiSelect() bool {
	for _, opt := range q.Options {
		if opt.Tag == TagMultiSelect {
			return true
		}
	}
	return false
}

// Option returns the option with the given id, or nil.
func (q *Question) Option(aid string) *AnswerOption {
	for i := range q.Options {
		if q.Options[i].ID == aid {
			return &q.Options[i]
		}
	}
	return nil
}

// FirstOption returns the first option, or nil for an empty option set.
// Used as the placeholder answer when deferring an unanswered question.
func (q *Question) FirstOption() *AnswerOption {
	if len(q.Options) == 0 {
		return nil
	}
	return &q.Options[0]
}

// RequiresEvidence reports whether answers to this question pass through
// the evidence attestation gate.
func (q *Question) RequiresEvidence() bool {
	return q.EvidencePolicyID != ""
}
