package stubserver

import "github.com/gapscan/gapscan/internal/catalog"

// Fixture catalog: a small maturity questionnaire over four domains. The
// vendor-risk domain is deliberately absent from every base path so it is
// only reachable through a domain override.
var fixtureQuestions = []catalog.Question{
	{
		ID:     "GOV-1",
		Domain: "governance",
		Text:   "Does the organization maintain an approved information security policy?",
		Options: []catalog.AnswerOption{
			{ID: "gov1-none", Text: "No policy exists", Score: 0},
			{ID: "gov1-draft", Text: "Draft, not approved", Score: 1},
			{ID: "gov1-approved", Text: "Approved by leadership", Score: 3},
			{ID: "gov1-reviewed", Text: "Approved and reviewed annually", Score: 4},
		},
	},
	{
		ID:     "GOV-2",
		Domain: "governance",
		Text:   "Is there a named owner accountable for the security program?",
		Options: []catalog.AnswerOption{
			{ID: "gov2-no", Text: "No", Score: 0},
			{ID: "gov2-partial", Text: "Shared responsibility", Score: 2},
			{ID: "gov2-yes", Text: "Dedicated owner", Score: 4},
		},
	},
	{
		ID:       "GOV-3",
		Domain:   "governance",
		Text:     "How often does leadership review security program metrics?",
		Guidance: "Asked only when a formal policy is in place.",
		Options: []catalog.AnswerOption{
			{ID: "gov3-never", Text: "Never", Score: 0},
			{ID: "gov3-annual", Text: "Annually", Score: 2},
			{ID: "gov3-quarterly", Text: "Quarterly or more", Score: 4},
		},
	},
	{
		ID:     "AC-1",
		Domain: "access-control",
		Text:   "Which access controls are in place?",
		Options: []catalog.AnswerOption{
			{ID: "ac1-sso", Text: "Single sign-on", Tag: catalog.TagMultiSelect},
			{ID: "ac1-mfa", Text: "Multi-factor authentication", Tag: catalog.TagMultiSelect},
			{ID: "ac1-rbac", Text: "Role-based access", Tag: catalog.TagMultiSelect},
			{ID: "ac1-jit", Text: "Just-in-time elevation", Tag: catalog.TagMultiSelect},
			{ID: "ac1-reviews", Text: "Periodic access reviews", Tag: catalog.TagMultiSelect},
		},
	},
	{
		ID:       "AC-2",
		Domain:   "access-control",
		Text:     "Are privileged accounts reviewed on a fixed cadence?",
		Guidance: "Asked only when a broad control set is already deployed.",
		Options: []catalog.AnswerOption{
			{ID: "ac2-no", Text: "No", Score: 0},
			{ID: "ac2-adhoc", Text: "Ad hoc", Score: 1},
			{ID: "ac2-quarterly", Text: "Quarterly", Score: 3},
		},
	},
	{
		ID:               "OPS-1",
		Domain:           "operations",
		Text:             "Are production backups tested by restoring them?",
		EvidencePolicyID: "ep-process",
		Options: []catalog.AnswerOption{
			{ID: "ops1-no", Text: "Never tested", Score: 0},
			{ID: "ops1-annual", Text: "Tested annually", Score: 2},
			{ID: "ops1-auto", Text: "Automated restore verification", Score: 4},
		},
	},
	{
		ID:     "VR-1",
		Domain: "vendor-risk",
		Text:   "Are critical vendors assessed before onboarding?",
		Options: []catalog.AnswerOption{
			{ID: "vr1-no", Text: "No", Score: 0},
			{ID: "vr1-yes", Text: "Yes, documented assessment", Score: 3},
		},
	},
	{
		ID:               "VR-2",
		Domain:           "vendor-risk",
		Text:             "Is there a contractual right to audit critical vendors?",
		EvidencePolicyID: "ep-document",
		Options: []catalog.AnswerOption{
			{ID: "vr2-no", Text: "No", Score: 0},
			{ID: "vr2-some", Text: "Some contracts", Score: 2},
			{ID: "vr2-all", Text: "All critical vendors", Score: 4},
		},
	},
}

var fixtureIntake = []intakeResponse{
	{IntakeQID: "intake-headcount", Value: "250"},
	{IntakeQID: "intake-industry", Value: "saas"},
}

type intakeResponse struct {
	IntakeQID string `json:"intake_q_id"`
	Value     string `json:"value"`
}
