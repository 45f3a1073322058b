package flow

// DomainProgress is the per-domain answered/total breakdown shown in the
// sidebar.
type DomainProgress struct {
	Domain   string
	Answered int
	Deferred int
	Flagged  int
	Total    int
}

// Progress summarizes completion over an effective sequence.
type Progress struct {
	Answered int
	Deferred int
	Flagged  int
	Total    int
	Domains  []DomainProgress
}

// ComputeProgress derives completion counters for the given sequence from
// the resumption mirror. Domain order follows first appearance in the
// sequence, matching the sidebar.
func ComputeProgress(sequence []string, state *ResumptionState, domainOf func(qid string) string) Progress {
	p := Progress{Total: len(sequence)}
	domainIdx := make(map[string]int)

	for _, qid := range sequence {
		domain := domainOf(qid)
		i, ok := domainIdx[domain]
		if !ok {
			i = len(p.Domains)
			domainIdx[domain] = i
			p.Domains = append(p.Domains, DomainProgress{Domain: domain})
		}
		dp := &p.Domains[i]
		dp.Total++
		if state.IsAnswered(qid) {
			p.Answered++
			dp.Answered++
		}
		if state.IsDeferred(qid) {
			p.Deferred++
			dp.Deferred++
		}
		if state.IsFlagged(qid) {
			p.Flagged++
			dp.Flagged++
		}
	}
	return p
}
