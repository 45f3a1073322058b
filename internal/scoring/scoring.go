// Package scoring derives the numeric score carried on answer submissions.
//
// Single-select answers score from the chosen option's static base score.
// Multi-select answers score from a banding function of the selection
// count: breadth of selection is rewarded over per-option weighting.
package scoring

import (
	"strings"

	"github.com/gapscan/gapscan/internal/catalog"
)

// SelectionBand maps a contiguous selection-count range to a score.
type SelectionBand struct {
	Min, Max int // Max < 0 means unbounded
	Score    int
}

// SelectionBands is the multi-select banding policy. The thresholds are a
// deliberate product decision, fixed regardless of a question's option-set
// size; change them here, not in calling code.
var SelectionBands = []SelectionBand{
	{Min: 0, Max: 0, Score: 0},
	{Min: 1, Max: 2, Score: 1},
	{Min: 3, Max: 4, Score: 2},
	{Min: 5, Max: 6, Score: 3},
	{Min: 7, Max: -1, Score: 4},
}

// OptionScore returns the base score of the chosen option. An unresolvable
// question or option scores 0 rather than failing: a stale id must never
// take the flow down.
func OptionScore(q *catalog.Question, aid string) int {
	if q == nil {
		return 0
	}
	opt := q.Option(aid)
	if opt == nil {
		return 0
	}
	return opt.Score
}

// MultiSelectScore returns the banded score for n selected options.
func MultiSelectScore(n int) int {
	if n < 0 {
		n = 0
	}
	for _, b := range SelectionBands {
		if n >= b.Min && (b.Max < 0 || n <= b.Max) {
			return b.Score
		}
	}
	return 0
}

// JoinSelections serializes multi-select option ids into the comma-joined
// wire form the server expects.
func JoinSelections(aids []string) string {
	return strings.Join(aids, ",")
}

// SplitSelections parses the comma-joined wire form back into option ids.
// Empty input yields nil.
func SplitSelections(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
