package catalog

// EvidenceCheck is one attestation item within an evidence policy.
type EvidenceCheck struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// EvidencePolicy describes the attestation checks an answer must carry
// before it may be submitted. Policies are static and shared across all
// assessments.
type EvidencePolicy struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Checks      []EvidenceCheck `json:"checks"`
	Required    []string        `json:"required"`
}

// RequiredChecks returns the policy's required checks in check order.
func (p *EvidencePolicy) RequiredChecks() []EvidenceCheck {
	req := make(map[string]bool, len(p.Required))
	for _, id := range p.Required {
		req[id] = true
	}
	var out []EvidenceCheck
	for _, c := range p.Checks {
		if req[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// IsRequired reports whether the given check id is required by the policy.
func (p *EvidencePolicy) IsRequired(checkID string) bool {
	for _, id := range p.Required {
		if id == checkID {
			return true
		}
	}
	return false
}

// seedPolicies is the built-in evidence policy table. Tenant catalogs may
// carry additional policies which are merged over this table at load time.
var seedPolicies = []EvidencePolicy{
	{
		ID:          "ep-document",
		Label:       "Documented control",
		Description: "The control is described in a maintained document",
		Checks: []EvidenceCheck{
			{ID: "exists", Label: "A written document exists"},
			{ID: "freshness", Label: "Reviewed within the last 12 months"},
			{ID: "owner", Label: "Has a named owner"},
		},
		Required: []string{"exists", "freshness"},
	},
	{
		ID:          "ep-technical",
		Label:       "Technical enforcement",
		Description: "The control is enforced by a system, not by convention",
		Checks: []EvidenceCheck{
			{ID: "config", Label: "Configuration or screenshot captured"},
			{ID: "coverage", Label: "Covers all in-scope systems"},
			{ID: "tested", Label: "Verified within the last quarter"},
		},
		Required: []string{"config"},
	},
	{
		ID:          "ep-process",
		Label:       "Operating process",
		Description: "The process runs on a schedule and leaves a trail",
		Checks: []EvidenceCheck{
			{ID: "records", Label: "Execution records retained"},
			{ID: "cadence", Label: "Runs on the stated cadence"},
		},
		Required: []string{"records", "cadence"},
	},
}

// SeedPolicies returns a copy of the built-in policy table, for servers
// that deliver policies alongside the catalog.
func SeedPolicies() []EvidencePolicy {
	out := make([]EvidencePolicy, len(seedPolicies))
	copy(out, seedPolicies)
	return out
}

// PolicyTable resolves evidence policies by id.
type PolicyTable struct {
	byID map[string]*EvidencePolicy
}

// NewPolicyTable builds the policy table from the built-in seed merged
// with any extra policies delivered alongside the catalog. Extras win on
// id collision.
func NewPolicyTable(extra []EvidencePolicy) *PolicyTable {
	t := &PolicyTable{byID: make(map[string]*EvidencePolicy)}
	for i := range seedPolicies {
		t.byID[seedPolicies[i].ID] = &seedPolicies[i]
	}
	for i := range extra {
		t.byID[extra[i].ID] = &extra[i]
	}
	return t
}

// Policy returns the policy with the given id, or nil if unknown.
func (t *PolicyTable) Policy(id string) *EvidencePolicy {
	return t.byID[id]
}
