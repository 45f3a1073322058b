package flow

import (
	"reflect"
	"testing"

	"github.com/gapscan/gapscan/internal/catalog"
)

func mergeCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Question{
		{ID: "gov-1", Domain: "governance", Text: "Policy exists?"},
		{ID: "gov-2", Domain: "governance", Text: "Roles defined?"},
		{ID: "acc-1", Domain: "access", Text: "MFA enforced?"},
		{ID: "acc-2", Domain: "access", Text: "Joiners/leavers process?"},
		{ID: "ir-1", Domain: "incident", Text: "IR plan exists?"},
		{ID: "ir-2", Domain: "incident", Text: "IR plan tested?"},
	})
}

func TestMergeIdentityWithoutOverrides(t *testing.T) {
	cat := mergeCatalog()
	base := []string{"acc-1", "gov-1", "gov-2"}

	got := Merge(base, nil, cat)
	if !reflect.DeepEqual(got, base) {
		t.Errorf("Merge with no overrides = %v, want base %v unchanged", got, base)
	}
	got = Merge(base, map[string]bool{}, cat)
	if !reflect.DeepEqual(got, base) {
		t.Errorf("Merge with empty overrides = %v, want base %v unchanged", got, base)
	}
}

func TestMergeAppendsSortedWithoutDuplicates(t *testing.T) {
	cat := mergeCatalog()
	// Base deliberately not in catalog order: its ordering encodes the
	// server's branching and must survive untouched.
	base := []string{"ir-2", "gov-1"}
	overrides := map[string]bool{"incident": true, "access": true}

	got := Merge(base, overrides, cat)
	want := []string{"ir-2", "gov-1", "acc-1", "acc-2", "ir-1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}

	seen := make(map[string]int)
	for _, qid := range got {
		seen[qid]++
	}
	for qid, count := range seen {
		if count != 1 {
			t.Errorf("question %s appears %d times, want exactly once", qid, count)
		}
	}
}

func TestMergeSidebarTagsOverrideEntries(t *testing.T) {
	cat := mergeCatalog()
	base := []string{"gov-1"}
	sidebar := []SidebarEntry{
		{QID: "gov-1", Domain: "governance", Title: "Policy exists?", Status: StatusUnlocked},
	}

	got := MergeSidebar(sidebar, base, map[string]bool{"access": true}, cat)
	if len(got) != 3 {
		t.Fatalf("MergeSidebar returned %d entries, want 3", len(got))
	}
	if got[0] != sidebar[0] {
		t.Errorf("server sidebar entries must come first, got %+v", got[0])
	}
	for _, e := range got[1:] {
		if e.Status != StatusOverride {
			t.Errorf("appended entry %s status = %s, want override", e.QID, e.Status)
		}
		if e.Domain != "access" {
			t.Errorf("appended entry %s domain = %s, want access", e.QID, e.Domain)
		}
	}
}

func TestIsOverrideQuestion(t *testing.T) {
	cat := mergeCatalog()
	base := []string{"acc-1", "gov-1"}
	overrides := map[string]bool{"access": true}

	// In override domain but already on the base path: not an override.
	if IsOverrideQuestion("acc-1", base, overrides, cat) {
		t.Errorf("acc-1 is on the base path, should not be an override question")
	}
	// In override domain and off the base path.
	if !IsOverrideQuestion("acc-2", base, overrides, cat) {
		t.Errorf("acc-2 should be an override question")
	}
	// Domain not overridden.
	if IsOverrideQuestion("ir-1", base, overrides, cat) {
		t.Errorf("ir-1's domain is not overridden")
	}
	// Unknown question.
	if IsOverrideQuestion("nope", base, overrides, cat) {
		t.Errorf("unknown question should not be an override question")
	}
}

func TestMergeStateReplacementDropsSupersededQuestions(t *testing.T) {
	cat := mergeCatalog()

	// First reply reaches gov-1 and ir-1; a later reply supersedes it.
	first := Merge([]string{"gov-1", "ir-1"}, nil, cat)
	if len(first) != 2 {
		t.Fatalf("setup: first sequence = %v", first)
	}

	second := Merge([]string{"gov-1", "gov-2"}, nil, cat)
	if containsID(second, "ir-1") {
		t.Errorf("superseded question ir-1 must not survive a path replacement")
	}

	// Unless an override domain reintroduces it.
	reintroduced := Merge([]string{"gov-1", "gov-2"}, map[string]bool{"incident": true}, cat)
	if !containsID(reintroduced, "ir-1") {
		t.Errorf("override domain should reintroduce ir-1, got %v", reintroduced)
	}
}
