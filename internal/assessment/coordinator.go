package assessment

import (
	"context"
	"errors"
	"sync"

	"github.com/gapscan/gapscan/internal/api"
)

// ErrSubmissionInFlight is returned when a submit is attempted while a
// previous one has not finished. One submission at a time keeps the
// mirror replacement ordering trivial.
var ErrSubmissionInFlight = errors.New("assessment: submission already in flight")

// Submitter is the slice of the API client the coordinator needs.
type Submitter interface {
	Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitReply, error)
}

// Result reports what a successful submission changed.
type Result struct {
	// LogicReason is the server's advisory explanation for the path it
	// chose. Display only.
	LogicReason string

	// AdvanceTo is the question to auto-advance to, "" when the
	// auto-advance rule did not fire.
	AdvanceTo string
}

// Coordinator serializes submissions against the server and folds each
// reply back into the session state.
type Coordinator struct {
	client Submitter

	mu       sync.Mutex
	inFlight bool
}

func NewCoordinator(client Submitter) *Coordinator {
	return &Coordinator{client: client}
}

// InFlight reports whether a submission is outstanding.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Submit sends one submission and, on success, replaces the state's
// resumption mirror with the server's reply. Concurrent calls beyond the
// first return ErrSubmissionInFlight without touching the wire.
//
// Failed submissions leave the mirror untouched: the server never
// recorded anything, so there is nothing to roll back.
func (c *Coordinator) Submit(ctx context.Context, s *State, sub Submission) (*Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	// The flag state at submission time decides auto-advance, not the
	// flag state after the reply lands.
	wasFlagged := s.Mirror.IsFlagged(sub.QID)

	reply, err := c.client.Submit(ctx, s.Request(sub))
	if err != nil {
		return nil, err
	}

	s.ClearMultiDraft(sub.QID)
	s.ApplyResumption(&reply.ResumptionState)

	res := &Result{LogicReason: reply.LogicReason}
	if target, ok := c.advanceTarget(s, wasFlagged); ok {
		res.AdvanceTo = target
	}
	return res, nil
}

// advanceTarget applies the auto-advance rule: the preference is on, the
// submitted question was not already flagged, and the server's next-best
// suggestion actually exists in the fresh effective sequence.
func (c *Coordinator) advanceTarget(s *State, wasFlagged bool) (string, bool) {
	if !s.Prefs.AutoAdvance || wasFlagged {
		return "", false
	}
	next := s.Mirror.NextBestQID
	if next == "" {
		return "", false
	}
	for _, qid := range s.Sequence {
		if qid == next {
			return next, true
		}
	}
	return "", false
}
