// Package evidence implements the attestation gate that sits between
// selecting an answer on an evidence-governed question and submitting it.
//
// The gate is an explicit state machine. Exactly one state is active at a
// time and each state owns its data, so there is no set of booleans to
// keep in sync.
package evidence

import (
	"errors"

	"github.com/gapscan/gapscan/internal/catalog"
)

// State is the gate's current phase for the question attempt in progress.
type State int

const (
	// StateIdle: no attestation in progress.
	StateIdle State = iota
	// StateAwaiting: an answer is drafted and the user is filling checks.
	StateAwaiting
	// StateReady: the draft can be confirmed.
	StateReady
	// StateBlocked: required checks are missing; confirm is refused.
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	case StateReady:
		return "ready"
	case StateBlocked:
		return "blocked"
	}
	return "unknown"
}

// ErrChecksIncomplete is returned by Confirm while required checks are
// unticked and the user claims evidence exists.
var ErrChecksIncomplete = errors.New("required evidence checks incomplete")

// ErrNoDraft is returned by Confirm with no attestation in progress.
var ErrNoDraft = errors.New("no evidence attestation in progress")

// Draft is the ephemeral answer candidate held while the gate is open.
// It is consumed on Confirm or discarded on Cancel, never persisted.
type Draft struct {
	QID      string
	AID      string
	Score    int
	PolicyID string
}

// Attestation is the evidence payload attached to a gated submission.
type Attestation struct {
	PolicyID    string          `json:"policy_id"`
	HasEvidence bool            `json:"has_evidence"`
	Checks      map[string]bool `json:"checks"`
}

// Gate runs the attestation protocol for one question attempt at a time.
type Gate struct {
	state       State
	draft       Draft
	policy      *catalog.EvidencePolicy
	hasEvidence bool
	checks      map[string]bool
}

// NewGate returns a gate in the idle state.
func NewGate() *Gate {
	return &Gate{}
}

// State returns the current gate state.
func (g *Gate) State() State {
	return g.state
}

// Draft returns the pending answer candidate. Valid only outside StateIdle.
func (g *Gate) Draft() Draft {
	return g.draft
}

// Policy returns the policy governing the current draft, nil when idle.
func (g *Gate) Policy() *catalog.EvidencePolicy {
	return g.policy
}

// HasEvidence reports the user's current evidence declaration.
func (g *Gate) HasEvidence() bool {
	return g.hasEvidence
}

// Checked reports whether the given check is ticked.
func (g *Gate) Checked(checkID string) bool {
	return g.checks[checkID]
}

// Begin opens the gate for a drafted single-select answer. The caller must
// only route questions with an evidence policy through the gate; questions
// without one submit immediately.
func (g *Gate) Begin(draft Draft, policy *catalog.EvidencePolicy) {
	g.draft = draft
	g.policy = policy
	g.hasEvidence = true
	g.checks = make(map[string]bool)
	g.transition()
}

// SetHasEvidence flips the evidence declaration. Declaring "no evidence"
// is itself a valid, submittable attestation; no check is required then.
func (g *Gate) SetHasEvidence(has bool) {
	if g.state == StateIdle {
		return
	}
	g.hasEvidence = has
	g.transition()
}

// ToggleCheck flips one attestation check and recomputes completeness.
func (g *Gate) ToggleCheck(checkID string) {
	if g.state == StateIdle {
		return
	}
	g.checks[checkID] = !g.checks[checkID]
	g.transition()
}

// MissingRequired returns the required checks not yet ticked, in policy
// order. Empty when the user declared no evidence.
func (g *Gate) MissingRequired() []catalog.EvidenceCheck {
	if g.policy == nil || !g.hasEvidence {
		return nil
	}
	var missing []catalog.EvidenceCheck
	for _, c := range g.policy.RequiredChecks() {
		if !g.checks[c.ID] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Confirm closes the gate and returns the submission payload. While
// required checks are missing it refuses locally — no network call is made
// and the draft stays open for correction.
func (g *Gate) Confirm() (Draft, Attestation, error) {
	if g.state == StateIdle {
		return Draft{}, Attestation{}, ErrNoDraft
	}
	if len(g.MissingRequired()) > 0 {
		return Draft{}, Attestation{}, ErrChecksIncomplete
	}

	draft := g.draft
	att := Attestation{
		PolicyID:    g.draft.PolicyID,
		HasEvidence: g.hasEvidence,
		Checks:      g.checks,
	}
	if !g.hasEvidence {
		// A no-evidence attestation carries no checks.
		att.Checks = map[string]bool{}
	}
	g.reset()
	return draft, att, nil
}

// Cancel discards the draft without mutating any recorded response.
func (g *Gate) Cancel() {
	g.reset()
}

// transition recomputes the state from the single source of truth: the
// declaration plus the ticked checks.
func (g *Gate) transition() {
	switch {
	case !g.hasEvidence:
		g.state = StateReady
	case len(g.MissingRequired()) == 0:
		g.state = StateReady
	case len(g.checks) == 0 || !g.anyChecked():
		// Nothing ticked yet: still collecting, not an error surface.
		g.state = StateAwaiting
	default:
		g.state = StateBlocked
	}
}

func (g *Gate) anyChecked() bool {
	for _, on := range g.checks {
		if on {
			return true
		}
	}
	return false
}

func (g *Gate) reset() {
	g.state = StateIdle
	g.draft = Draft{}
	g.policy = nil
	g.hasEvidence = false
	g.checks = nil
}
