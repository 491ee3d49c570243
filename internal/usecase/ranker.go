package usecase

import (
	"sort"

	"github.com/naka-gawa/github-code-survey/internal/domain"
)

// Rank orders repositories by path count and terms by total count, both
// descending. Ties keep the order in which the names were first seen.
func Rank(findings *domain.Findings) domain.Priority {
	repos := findings.RepoNames()
	sort.SliceStable(repos, func(i, j int) bool {
		return findings.Repos[repos[i]].PathCount > findings.Repos[repos[j]].PathCount
	})

	terms := findings.TermNames()
	sort.SliceStable(terms, func(i, j int) bool {
		return findings.Terms[terms[i]].TotalCount > findings.Terms[terms[j]].TotalCount
	})

	return domain.Priority{
		ReposByPathCount:  repos,
		TermsByTotalCount: terms,
	}
}
