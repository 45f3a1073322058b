package catalog

// Catalog is the read-only question bank for one assessment. It is loaded
// once per assessment and never mutated afterwards.
type Catalog struct {
	questions []Question
	byID      map[string]*Question
	domains   []string
}

// New builds a Catalog from the server's question payload. Question order
// is preserved; domain order is first-appearance order.
func New(questions []Question) *Catalog {
	c := &Catalog{
		questions: questions,
		byID:      make(map[string]*Question, len(questions)),
	}
	seen := make(map[string]bool)
	for i := range c.questions {
		q := &c.questions[i]
		c.byID[q.ID] = q
		if !seen[q.Domain] {
			seen[q.Domain] = true
			c.domains = append(c.domains, q.Domain)
		}
	}
	return c
}

// Questions returns all questions in catalog order.
func (c *Catalog) Questions() []Question {
	return c.questions
}

// ByID returns the question with the given id, or nil.
func (c *Catalog) ByID(qid string) *Question {
	return c.byID[qid]
}

// Len returns the number of questions in the catalog.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Domains returns the distinct domains in first-appearance order.
func (c *Catalog) Domains() []string {
	return c.domains
}

// InDomain returns the questions belonging to the given domain, in
// catalog order.
func (c *Catalog) InDomain(domain string) []Question {
	var out []Question
	for _, q := range c.questions {
		if q.Domain == domain {
			out = append(out, q)
		}
	}
	return out
}
