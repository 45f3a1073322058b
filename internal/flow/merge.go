package flow

import (
	"sort"

	"github.com/gapscan/gapscan/internal/catalog"
)

// Merge combines the server's base reachable path with the locally-selected
// override domains. With no overrides the base path is returned as-is.
// Otherwise every catalog question whose domain is overridden and whose
// id is not already reachable is appended after the base path, sorted by
// (domain, q_id) so the extension is reproducible. Base-path order encodes
// the server's adaptive branching and is never reordered.
func Merge(base []string, overrides map[string]bool, cat *catalog.Catalog) []string {
	if len(overrides) == 0 || cat == nil {
		return base
	}

	extra := overrideQuestions(base, overrides, cat)

	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, q := range extra {
		out = append(out, q.ID)
	}
	return out
}

// MergeSidebar appends sidebar entries for override questions after the
// server's sidebar context, tagged with StatusOverride.
func MergeSidebar(sidebar []SidebarEntry, base []string, overrides map[string]bool, cat *catalog.Catalog) []SidebarEntry {
	if len(overrides) == 0 || cat == nil {
		return sidebar
	}

	extra := overrideQuestions(base, overrides, cat)
	if len(extra) == 0 {
		return sidebar
	}

	out := make([]SidebarEntry, 0, len(sidebar)+len(extra))
	out = append(out, sidebar...)
	for _, q := range extra {
		out = append(out, SidebarEntry{
			QID:    q.ID,
			Domain: q.Domain,
			Title:  q.Text,
			Status: StatusOverride,
		})
	}
	return out
}

// IsOverrideQuestion reports whether qid is reachable only through an
// override domain: its domain is overridden and it is absent from the
// current base path. Used for UI labeling, never for gating.
func IsOverrideQuestion(qid string, base []string, overrides map[string]bool, cat *catalog.Catalog) bool {
	if cat == nil {
		return false
	}
	q := cat.ByID(qid)
	if q == nil || !overrides[q.Domain] {
		return false
	}
	return !containsID(base, qid)
}

// overrideQuestions returns the catalog questions appended by the given
// override set, deduplicated against base and sorted by (domain, q_id).
func overrideQuestions(base []string, overrides map[string]bool, cat *catalog.Catalog) []catalog.Question {
	inBase := make(map[string]bool, len(base))
	for _, qid := range base {
		inBase[qid] = true
	}

	var extra []catalog.Question
	for _, q := range cat.Questions() {
		if overrides[q.Domain] && !inBase[q.ID] {
			extra = append(extra, q)
		}
	}
	sort.Slice(extra, func(i, j int) bool {
		if extra[i].Domain != extra[j].Domain {
			return extra[i].Domain < extra[j].Domain
		}
		return extra[i].ID < extra[j].ID
	})
	return extra
}
