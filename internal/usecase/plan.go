package usecase

import "github.com/naka-gawa/github-code-survey/internal/domain"

// ExpandPlan returns every (term, org) pair, term-major, in input order.
// With no orgs each term is searched once without an organization qualifier.
func ExpandPlan(terms, orgs []string) []domain.QueryPair {
	if len(orgs) == 0 {
		orgs = []string{""}
	}
	pairs := make([]domain.QueryPair, 0, len(terms)*len(orgs))
	for _, term := range terms {
		for _, org := range orgs {
			pairs = append(pairs, domain.QueryPair{Term: term, Org: org})
		}
	}
	return pairs
}
