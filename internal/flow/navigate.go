package flow

// Navigator maps the effective reachable sequence to a current position
// and restores that position when the sequence changes underneath it.
type Navigator struct {
	sequence []string
	index    int

	// startDomain is a one-shot instruction (e.g. a dashboard deep-link)
	// consumed on the first reconcile after it is set.
	startDomain string
}

// NewNavigator creates a Navigator over an initial sequence.
func NewNavigator(sequence []string) *Navigator {
	return &Navigator{sequence: sequence}
}

// Sequence returns the current effective sequence.
func (n *Navigator) Sequence() []string {
	return n.sequence
}

// Len returns the sequence length.
func (n *Navigator) Len() int {
	return len(n.sequence)
}

// Index returns the current position, -1 when the sequence is empty.
func (n *Navigator) Index() int {
	if len(n.sequence) == 0 {
		return -1
	}
	return n.index
}

// Current returns the current question id, "" when the sequence is empty.
func (n *Navigator) Current() string {
	if len(n.sequence) == 0 {
		return ""
	}
	return n.sequence[n.index]
}

// Reconcile replaces the sequence and re-derives the current position.
// Preference order: the server's nextBest suggestion if present in the new
// sequence, then the previously-current question if still present, then
// index 0. This keeps override toggles and fresh server paths from causing
// jarring jumps mid-session.
func (n *Navigator) Reconcile(sequence []string, nextBest, prevQID string) {
	n.sequence = sequence
	if len(sequence) == 0 {
		n.index = 0
		return
	}
	if i := indexOf(sequence, nextBest); nextBest != "" && i >= 0 {
		n.index = i
		return
	}
	if i := indexOf(sequence, prevQID); prevQID != "" && i >= 0 {
		n.index = i
		return
	}
	n.index = 0
}

// JumpTo moves to the given question. No-op when qid is not reachable.
func (n *Navigator) JumpTo(qid string) bool {
	if i := indexOf(n.sequence, qid); i >= 0 {
		n.index = i
		return true
	}
	return false
}

// Next advances one question, stopping at the end.
func (n *Navigator) Next() bool {
	if n.index+1 < len(n.sequence) {
		n.index++
		return true
	}
	return false
}

// Prev moves back one question, stopping at the start.
func (n *Navigator) Prev() bool {
	if n.index > 0 && len(n.sequence) > 0 {
		n.index--
		return true
	}
	return false
}

// JumpToFirstDeferred moves to the first reachable deferred question.
func (n *Navigator) JumpToFirstDeferred(state *ResumptionState) bool {
	return n.jumpToFirst(func(qid string) bool { return state.IsDeferred(qid) })
}

// JumpToFirstFlagged moves to the first reachable flagged question.
func (n *Navigator) JumpToFirstFlagged(state *ResumptionState) bool {
	return n.jumpToFirst(func(qid string) bool { return state.IsFlagged(qid) })
}

func (n *Navigator) jumpToFirst(match func(string) bool) bool {
	for i, qid := range n.sequence {
		if match(qid) {
			n.index = i
			return true
		}
	}
	return false
}

// SetStartDomain arms the one-shot "start in domain" signal.
func (n *Navigator) SetStartDomain(domain string) {
	n.startDomain = domain
}

// ConsumeStartDomain applies a pending start-domain signal: position on the
// first reachable unanswered-or-deferred question of the domain, falling
// back to the first reachable question of the domain when everything there
// is answered. The signal is cleared whether or not a target was found, so
// it cannot re-trigger.
func (n *Navigator) ConsumeStartDomain(state *ResumptionState, domainOf func(qid string) string) bool {
	if n.startDomain == "" {
		return false
	}
	domain := n.startDomain
	n.startDomain = ""

	fallback := -1
	for i, qid := range n.sequence {
		if domainOf(qid) != domain {
			continue
		}
		if fallback < 0 {
			fallback = i
		}
		if !state.IsAnswered(qid) || state.IsDeferred(qid) {
			n.index = i
			return true
		}
	}
	if fallback >= 0 {
		n.index = fallback
		return true
	}
	return false
}

func indexOf(seq []string, qid string) int {
	for i, id := range seq {
		if id == qid {
			return i
		}
	}
	return -1
}
