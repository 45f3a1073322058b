package stubserver

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gapscan/gapscan/internal/api"
)

func newTestClient(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(New(nil).Handler())
	t.Cleanup(srv.Close)
	return api.New(srv.URL, "acme", "u-1")
}

func TestQuestionsEndpoint(t *testing.T) {
	c := newTestClient(t)
	payload, err := c.Questions(context.Background(), "asmt-1")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(payload.Questions) != len(fixtureQuestions) {
		t.Errorf("questions = %d, want %d", len(payload.Questions), len(fixtureQuestions))
	}
	if len(payload.EvidencePolicies) == 0 {
		t.Error("no evidence policies delivered")
	}
}

func TestResumeFreshSession(t *testing.T) {
	c := newTestClient(t)
	state, err := c.Resume(context.Background(), "asmt-1")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	want := []string{"GOV-1", "GOV-2", "AC-1", "OPS-1"}
	if len(state.ReachablePath) != len(want) {
		t.Fatalf("path = %v, want %v", state.ReachablePath, want)
	}
	for i, qid := range want {
		if state.ReachablePath[i] != qid {
			t.Fatalf("path = %v, want %v", state.ReachablePath, want)
		}
	}
	if state.NextBestQID != "GOV-1" {
		t.Errorf("next best = %q", state.NextBestQID)
	}
	// vendor-risk is override-only: present in the sidebar but hidden.
	var vrHidden bool
	for _, e := range state.Sidebar {
		if e.QID == "VR-1" {
			vrHidden = e.Status == "hidden"
		}
	}
	if !vrHidden {
		t.Error("VR-1 should be hidden in a fresh sidebar")
	}
}

func TestExpiredAssessment(t *testing.T) {
	c := newTestClient(t)
	tests := []struct {
		name string
		call func() error
	}{
		{"resume", func() error { _, err := c.Resume(context.Background(), ExpiredAssessmentID); return err }},
		{"questions", func() error { _, err := c.Questions(context.Background(), ExpiredAssessmentID); return err }},
		{"submit", func() error {
			_, err := c.Submit(context.Background(), api.SubmitRequest{AssessmentID: ExpiredAssessmentID, QID: "GOV-1", AID: "gov1-approved"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if _, ok := err.(*api.ErrNotFound); !ok {
				t.Errorf("error = %v, want *ErrNotFound", err)
			}
		})
	}
}

func TestIntakeGate(t *testing.T) {
	c := newTestClient(t)

	responses, err := c.Intake(context.Background(), "asmt-1")
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if !api.IntakeComplete(responses) {
		t.Error("default intake should pass the gate")
	}

	responses, err = c.Intake(context.Background(), UnprovisionedAssessmentID)
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if api.IntakeComplete(responses) {
		t.Error("unprovisioned intake should block the gate")
	}
}

func TestBranchingOnGovernanceScore(t *testing.T) {
	c := newTestClient(t)

	reply, err := c.Submit(context.Background(), api.SubmitRequest{
		AssessmentID: "asmt-branch", QID: "GOV-1", AID: "gov1-approved", Score: 3, Origin: api.OriginAdaptive,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !containsQID(reply.ReachablePath, "GOV-3") {
		t.Errorf("high governance score should unlock GOV-3, path = %v", reply.ReachablePath)
	}
	if reply.LogicReason == "" {
		t.Error("branch decision should carry a logic reason")
	}
	if reply.NextBestQID != "GOV-2" {
		t.Errorf("next best = %q", reply.NextBestQID)
	}

	// A downgraded answer prunes the branch again: the path is a pure
	// function of the recorded answers.
	reply, err = c.Submit(context.Background(), api.SubmitRequest{
		AssessmentID: "asmt-branch", QID: "GOV-1", AID: "gov1-draft", Score: 1, Origin: api.OriginAdaptive,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if containsQID(reply.ReachablePath, "GOV-3") {
		t.Errorf("low governance score should prune GOV-3, path = %v", reply.ReachablePath)
	}
}

func TestBranchingOnMultiSelectBreadth(t *testing.T) {
	c := newTestClient(t)

	reply, err := c.Submit(context.Background(), api.SubmitRequest{
		AssessmentID: "asmt-multi", QID: "AC-1", AID: "ac1-sso,ac1-mfa,ac1-rbac", Score: 2, Origin: api.OriginAdaptive,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !containsQID(reply.ReachablePath, "AC-2") {
		t.Errorf("three selections should unlock AC-2, path = %v", reply.ReachablePath)
	}
	if got := reply.Answer("AC-1").Selections; len(got) != 3 {
		t.Errorf("recorded selections = %v", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Submit(context.Background(), api.SubmitRequest{AssessmentID: "a", QID: "NOPE", AID: "x"})
	if _, ok := err.(*api.ErrValidation); !ok {
		t.Errorf("unknown question: error = %v, want *ErrValidation", err)
	}

	_, err = c.Submit(context.Background(), api.SubmitRequest{AssessmentID: "a", QID: "GOV-1", AID: "not-an-option"})
	if _, ok := err.(*api.ErrValidation); !ok {
		t.Errorf("unknown option: error = %v, want *ErrValidation", err)
	}
}

func TestDeferAndFlagRoundTrip(t *testing.T) {
	c := newTestClient(t)

	reply, err := c.Submit(context.Background(), api.SubmitRequest{
		AssessmentID: "asmt-df", QID: "GOV-1", AID: "gov1-none", Score: 0, IsDeferred: true,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !reply.IsDeferred("GOV-1") {
		t.Error("deferral not recorded")
	}
	// Deferred questions stay eligible for next-best.
	if reply.NextBestQID != "GOV-1" {
		t.Errorf("next best = %q, want the deferred question", reply.NextBestQID)
	}

	reply, err = c.Submit(context.Background(), api.SubmitRequest{
		AssessmentID: "asmt-df", QID: "GOV-1", AID: "gov1-none", Score: 0, IsFlagged: true,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if reply.IsDeferred("GOV-1") {
		t.Error("re-submission should clear the deferral")
	}
	if !reply.IsFlagged("GOV-1") {
		t.Error("flag not recorded")
	}
}

func TestMalformedSubmissionBody(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp, err := srv.Client().Post(srv.URL+"/submissions", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func containsQID(path []string, qid string) bool {
	for _, id := range path {
		if id == qid {
			return true
		}
	}
	return false
}
