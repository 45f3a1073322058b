package flow

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAnswerValueUnmarshalBothWireForms(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`"a1"`, []string{"a1"}},
		{`"a1,a3"`, []string{"a1", "a3"}},
		{`["a1","a3"]`, []string{"a1", "a3"}},
		{`""`, nil},
		{`[]`, []string{}},
	}

	for _, tt := range tests {
		var v AnswerValue
		if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if len(tt.want) == 0 && len(v.Selections) == 0 {
			continue
		}
		if !reflect.DeepEqual(v.Selections, tt.want) {
			t.Errorf("unmarshal %s = %v, want %v", tt.raw, v.Selections, tt.want)
		}
	}

	var v AnswerValue
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Errorf("numeric answer value should fail to decode")
	}
}

func TestAnswerValueWireForm(t *testing.T) {
	if got := SingleAnswer("a1").Wire(); got != "a1" {
		t.Errorf("single Wire = %q, want a1", got)
	}
	if got := MultiAnswer([]string{"a1", "a3"}).Wire(); got != "a1,a3" {
		t.Errorf("multi Wire = %q, want a1,a3", got)
	}
	if got := (AnswerValue{}).Wire(); got != "" {
		t.Errorf("empty Wire = %q, want empty", got)
	}
}

func TestAnswerValueMarshal(t *testing.T) {
	b, err := json.Marshal(MultiAnswer([]string{"a1", "a3"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["a1","a3"]` {
		t.Errorf("multi marshal = %s, want array form", b)
	}

	b, err = json.Marshal(SingleAnswer("a1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"a1"` {
		t.Errorf("single marshal = %s, want string form", b)
	}
}

func TestResumptionStateQueries(t *testing.T) {
	s := &ResumptionState{
		Responses: map[string]AnswerValue{
			"q1": SingleAnswer("a1"),
			"q2": {},
		},
		DeferredIDs: []string{"q3"},
		FlaggedIDs:  []string{"q1"},
	}

	if !s.IsAnswered("q1") {
		t.Errorf("q1 should be answered")
	}
	if s.IsAnswered("q2") {
		t.Errorf("empty answer should not count as answered")
	}
	if !s.IsDeferred("q3") || s.IsDeferred("q1") {
		t.Errorf("deferred set wrong")
	}
	if !s.IsFlagged("q1") || s.IsFlagged("q3") {
		t.Errorf("flagged set wrong")
	}
	if got := s.Answer("q1").Single(); got != "a1" {
		t.Errorf("Answer(q1) = %q, want a1", got)
	}
}

func TestResumptionStateDecodesServerPayload(t *testing.T) {
	raw := `{
		"responses": {"q1": "q1-yes", "q2": ["a", "b", "c"]},
		"deferred_ids": ["q3"],
		"flagged_ids": [],
		"reachable_path": ["q1", "q2", "q3"],
		"sidebar_context": [
			{"q_id": "q1", "domain": "gov", "title": "Policy?", "status": "unlocked"},
			{"q_id": "q3", "domain": "gov", "title": "Scope?", "status": "locked"}
		],
		"next_best_qid": "q3"
	}`

	var s ResumptionState
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.NextBestQID != "q3" {
		t.Errorf("NextBestQID = %q", s.NextBestQID)
	}
	if got := s.Answer("q2").Selections; len(got) != 3 {
		t.Errorf("multi answer = %v, want 3 selections", got)
	}
	if len(s.Sidebar) != 2 || s.Sidebar[1].Status != StatusLocked {
		t.Errorf("sidebar decode wrong: %+v", s.Sidebar)
	}
}
