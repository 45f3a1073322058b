package api

import "fmt"

// ErrNotFound indicates the assessment (or question) no longer exists
// server-side. Callers must hard-reset local assessment-scoped state and
// return to a safe entry point.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrValidation indicates the server rejected a submission payload. It is
// non-fatal: only the current submission is blocked.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Message)
}

// ErrUnavailable indicates a transient network or server failure. The
// resumption mirror must be left untouched; callers fall back to cached
// counters where available and surface a retry-style banner.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assessment service unavailable: %v", e.Err)
	}
	return "assessment service unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrBadPayload indicates a server response failed schema validation or
// decoding. Treated like a transient failure at the coordinator boundary:
// state stays untouched.
type ErrBadPayload struct {
	Endpoint string
	Err      error
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Endpoint, e.Err)
}

func (e *ErrBadPayload) Unwrap() error { return e.Err }
