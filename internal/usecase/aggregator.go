// Package usecase contains the business logic of the application.
package usecase

import (
	"log"

	"github.com/naka-gawa/github-code-survey/internal/domain"
)

// Aggregator folds pages of search results into the findings of one run.
// It is not safe for concurrent use.
type Aggregator struct {
	findings *domain.Findings
	logger   *log.Logger
}

// NewAggregator creates a new Aggregator over fresh findings.
func NewAggregator(logger *log.Logger) *Aggregator {
	return &Aggregator{
		findings: domain.NewFindings(),
		logger:   logger,
	}
}

// Findings returns the findings accumulated so far.
func (a *Aggregator) Findings() *domain.Findings {
	return a.findings
}

// EnsureTerm makes sure term has an entry, even if no page for it ever arrives.
func (a *Aggregator) EnsureTerm(term string) {
	a.findings.Term(term)
}

// Fold adds one page of results for term. A nil page counts as zero hits.
// Folding the same page twice counts its hits twice.
func (a *Aggregator) Fold(term string, page *domain.Page) {
	termStats := a.findings.Term(term)
	if page == nil {
		return
	}
	a.logger.Printf("%s: %d - %d", term, len(page.Items), page.TotalCount)

	termStats.TotalCount += page.TotalCount
	for _, hit := range page.Items {
		termStats.AddRepo(hit.RepositoryFullName)
		a.findings.Repo(hit.RepositoryFullName).AddHit(term, hit)
	}
}
