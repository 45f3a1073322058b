package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/gapscan/gapscan/internal/ui/theme"
)

// CheckItem is one toggleable entry in a Checklist.
type CheckItem struct {
	ID       string
	Label    string
	Checked  bool
	Required bool
}

// Checklist is a toggleable checkbox list. It backs both multi-select
// answers and evidence attestation checks.
type Checklist struct {
	Items  []CheckItem
	Cursor int
}

// NewChecklist creates a checklist from the given items.
func NewChecklist(items []CheckItem) Checklist {
	return Checklist{Items: items}
}

// Update handles cursor movement and space-to-toggle.
func (c Checklist) Update(msg tea.Msg) (Checklist, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Items)-1 {
			c.Cursor++
		}
	case "space", " ":
		if c.Cursor >= 0 && c.Cursor < len(c.Items) {
			c.Items[c.Cursor].Checked = !c.Items[c.Cursor].Checked
		}
	}
	return c, nil
}

// SetChecked sets the checked state of the item with the given id.
func (c *Checklist) SetChecked(id string, checked bool) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Checked = checked
			return
		}
	}
}

// CheckedIDs returns the ids of all checked items in display order.
func (c Checklist) CheckedIDs() []string {
	var out []string
	for _, item := range c.Items {
		if item.Checked {
			out = append(out, item.ID)
		}
	}
	return out
}

// View renders the checklist.
func (c Checklist) View() string {
	var s string
	for i, item := range c.Items {
		prefix := "  "
		if i == c.Cursor {
			prefix = "▸ "
		}
		box := "[ ]"
		if item.Checked {
			box = "[x]"
		}
		label := item.Label
		if item.Required {
			label += " *"
		}

		line := fmt.Sprintf("%s%s %s", prefix, box, label)
		switch {
		case i == c.Cursor:
			s += theme.Selected.Render(line) + "\n"
		case item.Checked:
			s += theme.Answered.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}
	return s
}
