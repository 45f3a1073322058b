package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/gapscan/gapscan/internal/ui/theme"
)

// Option is one selectable answer.
type Option struct {
	ID    string
	Label string
}

// OptionList is a single-select answer list. The recorded answer (if
// any) is marked so the user can see what the server currently holds.
type OptionList struct {
	Options  []Option
	Cursor   int
	Recorded string
}

// NewOptionList creates an option list with the cursor on the recorded
// answer when one exists.
func NewOptionList(options []Option, recorded string) OptionList {
	cursor := 0
	for i, opt := range options {
		if opt.ID == recorded {
			cursor = i
			break
		}
	}
	return OptionList{
		Options:  options,
		Cursor:   cursor,
		Recorded: recorded,
	}
}

// Update handles cursor movement. Selection is the caller's business:
// it watches for enter itself.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
	}
	return l, nil
}

// Current returns the option under the cursor.
func (l OptionList) Current() *Option {
	if l.Cursor < 0 || l.Cursor >= len(l.Options) {
		return nil
	}
	return &l.Options[l.Cursor]
}

// View renders the option list.
func (l OptionList) View() string {
	var s string
	for i, opt := range l.Options {
		prefix := "  "
		if i == l.Cursor {
			prefix = "▸ "
		}
		marker := " "
		if opt.ID == l.Recorded && l.Recorded != "" {
			marker = "●"
		}

		line := fmt.Sprintf("%s%s %s", prefix, marker, opt.Label)
		switch {
		case i == l.Cursor:
			s += theme.Selected.Render(line) + "\n"
		case opt.ID == l.Recorded:
			s += theme.Answered.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}
	return s
}
