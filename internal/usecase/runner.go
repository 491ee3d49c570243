package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/naka-gawa/github-code-survey/internal/domain"
)

// Fetcher defines the behavior needed to turn one query pair into a page.
type Fetcher interface {
	Fetch(ctx context.Context, pair domain.QueryPair) (*domain.Page, error)
}

// Persister stores the findings of a finished run.
type Persister interface {
	Persist(findings *domain.Findings) error
}

// Runner is the use case for running a whole search plan.
// It orchestrates fetching, folding and ranking.
type Runner struct {
	fetcher   Fetcher
	persister Persister
	logger    *log.Logger
}

// NewRunner creates a new Runner instance.
func NewRunner(fetcher Fetcher, persister Persister, logger *log.Logger) *Runner {
	return &Runner{
		fetcher:   fetcher,
		persister: persister,
		logger:    logger,
	}
}

// Run executes every pair of the plan strictly one after another, ranks the
// result and hands it to the persister.
// Searches share one rate limit, so pairs are never fetched concurrently.
func (r *Runner) Run(ctx context.Context, plan []domain.QueryPair) (*domain.Findings, error) {
	r.logger.Println("Starting Search...")
	aggregator := NewAggregator(r.logger)

	for i, pair := range plan {
		r.logger.Printf("[%d/%d] Searching %s", i+1, len(plan), describePair(pair))
		aggregator.EnsureTerm(pair.Term)
		page, err := r.fetcher.Fetch(ctx, pair)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", describePair(pair), err)
		}
		aggregator.Fold(pair.Term, page)
	}

	findings := aggregator.Findings()
	findings.Priority = Rank(findings)

	if r.persister != nil {
		if err := r.persister.Persist(findings); err != nil {
			return nil, fmt.Errorf("failed to persist findings: %w", err)
		}
	}
	r.logger.Println("Search Complete!")
	return findings, nil
}

func describePair(pair domain.QueryPair) string {
	if pair.Org == "" {
		return fmt.Sprintf("%q", pair.Term)
	}
	return fmt.Sprintf("%q in %s", pair.Term, pair.Org)
}
