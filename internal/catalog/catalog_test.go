package catalog

import "testing"

func testQuestions() []Question {
	return []Question{
		{ID: "q1", Domain: "governance", Text: "Is there a security policy?", Options: []AnswerOption{
			{ID: "q1-no", Text: "No", Score: 0},
			{ID: "q1-partial", Text: "Partially", Score: 1},
			{ID: "q1-yes", Text: "Yes", Score: 3},
		}},
		{ID: "q2", Domain: "governance", Text: "Which roles are defined?", Options: []AnswerOption{
			{ID: "q2-ciso", Text: "CISO", Score: 1, Tag: TagMultiSelect},
			{ID: "q2-dpo", Text: "DPO", Score: 1, Tag: TagMultiSelect},
		}},
		{ID: "q3", Domain: "access", Text: "Is MFA enforced?", EvidencePolicyID: "ep-technical", Options: []AnswerOption{
			{ID: "q3-no", Text: "No", Score: 0},
			{ID: "q3-yes", Text: "Yes", Score: 4},
		}},
	}
}

func TestCatalogLookupAndDomains(t *testing.T) {
	c := New(testQuestions())

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if q := c.ByID("q3"); q == nil || q.Domain != "access" {
		t.Errorf("ByID(q3) = %+v, want access-domain question", q)
	}
	if c.ByID("missing") != nil {
		t.Errorf("ByID(missing) should be nil")
	}

	domains := c.Domains()
	if len(domains) != 2 || domains[0] != "governance" || domains[1] != "access" {
		t.Errorf("Domains = %v, want [governance access]", domains)
	}

	gov := c.InDomain("governance")
	if len(gov) != 2 || gov[0].ID != "q1" || gov[1].ID != "q2" {
		t.Errorf("InDomain(governance) = %v, want q1,q2 in catalog order", gov)
	}
}

func TestQuestionMultiSelectDerivation(t *testing.T) {
	qs := testQuestions()
	if qs[0].IsMultiSelect() {
		t.Errorf("q1 should not be multi-select")
	}
	if !qs[1].IsMultiSelect() {
		t.Errorf("q2 should be multi-select (tagged options)")
	}
}

func TestQuestionOptionLookup(t *testing.T) {
	q := testQuestions()[0]

	if opt := q.Option("q1-yes"); opt == nil || opt.Score != 3 {
		t.Errorf("Option(q1-yes) = %+v, want score 3", opt)
	}
	if q.Option("nope") != nil {
		t.Errorf("unknown option should resolve to nil")
	}
	if first := q.FirstOption(); first == nil || first.ID != "q1-no" {
		t.Errorf("FirstOption = %+v, want q1-no", first)
	}

	empty := Question{ID: "empty"}
	if empty.FirstOption() != nil {
		t.Errorf("FirstOption on empty option set should be nil")
	}
}

func TestPolicyTable(t *testing.T) {
	table := NewPolicyTable(nil)

	p := table.Policy("ep-document")
	if p == nil {
		t.Fatalf("seed policy ep-document missing")
	}
	req := p.RequiredChecks()
	if len(req) != 2 || req[0].ID != "exists" || req[1].ID != "freshness" {
		t.Errorf("RequiredChecks = %v, want exists,freshness in check order", req)
	}
	if !p.IsRequired("freshness") || p.IsRequired("owner") {
		t.Errorf("IsRequired gave wrong answers")
	}

	if table.Policy("nope") != nil {
		t.Errorf("unknown policy should be nil")
	}
}

func TestPolicyTableMergeOverridesSeed(t *testing.T) {
	extra := []EvidencePolicy{
		{ID: "ep-document", Label: "Tenant variant", Checks: []EvidenceCheck{{ID: "exists", Label: "Doc"}}, Required: []string{"exists"}},
		{ID: "ep-custom", Label: "Custom", Checks: []EvidenceCheck{{ID: "x", Label: "X"}}},
	}
	table := NewPolicyTable(extra)

	if p := table.Policy("ep-document"); p == nil || p.Label != "Tenant variant" {
		t.Errorf("extra policy should win on id collision, got %+v", p)
	}
	if table.Policy("ep-custom") == nil {
		t.Errorf("extra policy ep-custom missing")
	}
}
