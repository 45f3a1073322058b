package assessment

import (
	asmt "github.com/gapscan/gapscan/internal/assessment"
	"github.com/gapscan/gapscan/internal/overrides"
)

// submitResultMsg is sent when a submission round-trip finishes.
type submitResultMsg struct {
	Res *asmt.Result
	Err error
}

// advanceMsg is sent after the auto-advance delay to jump to the
// server's suggested question.
type advanceMsg struct {
	QID string
}

// overridesChangedMsg is sent when the override-domain set changes,
// locally or from another process writing the shared database.
type overridesChangedMsg struct {
	Set overrides.Set
}

// toggleResultMsg is sent when a local override toggle has persisted.
type toggleResultMsg struct {
	Err error
}

// progressSavedMsg is sent when the local progress cache write finishes.
type progressSavedMsg struct {
	Err error
}
