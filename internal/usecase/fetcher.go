package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/naka-gawa/github-code-survey/internal/domain"
	"github.com/naka-gawa/github-code-survey/internal/gateway"
)

const (
	// DefaultMaxAttempts bounds how many requests are made for one query pair.
	DefaultMaxAttempts = 2
	// DefaultLanguage is the language qualifier added to every search.
	DefaultLanguage = "YAML"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BackoffFetcher runs one query pair against the search gateway, backing off
// as the server directs when it is throttled.
type BackoffFetcher struct {
	searcher    gateway.Searcher
	logger      *log.Logger
	language    string
	maxAttempts int
	sleep       SleepFunc
}

// FetcherOption customizes a BackoffFetcher.
type FetcherOption func(*BackoffFetcher)

// WithLanguage sets the language qualifier. An empty language drops the qualifier.
func WithLanguage(language string) FetcherOption {
	return func(f *BackoffFetcher) {
		f.language = language
	}
}

// WithMaxAttempts overrides the number of attempts per query pair.
func WithMaxAttempts(n int) FetcherOption {
	return func(f *BackoffFetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep SleepFunc) FetcherOption {
	return func(f *BackoffFetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// NewBackoffFetcher creates a new BackoffFetcher instance.
func NewBackoffFetcher(searcher gateway.Searcher, logger *log.Logger, opts ...FetcherOption) *BackoffFetcher {
	f := &BackoffFetcher{
		searcher:    searcher,
		logger:      logger,
		language:    DefaultLanguage,
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BuildQuery renders the search qualifier string for a query pair.
func BuildQuery(pair domain.QueryPair, language string) string {
	parts := []string{pair.Term}
	if pair.Org != "" {
		parts = append(parts, "org:"+pair.Org)
	}
	if language != "" {
		parts = append(parts, "language:"+language)
	}
	return strings.Join(parts, " ")
}

// Fetch returns the first page of results for pair.
// When every attempt fails it returns an empty page, not an error; the only
// error it reports is ctx being done while waiting to retry.
func (f *BackoffFetcher) Fetch(ctx context.Context, pair domain.QueryPair) (*domain.Page, error) {
	query := BuildQuery(pair, f.language)
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		page, err := f.searcher.SearchCode(ctx, query)
		if err == nil {
			if page == nil {
				return domain.EmptyPage(), nil
			}
			return page, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var throttled *gateway.ThrottledError
		if !errors.As(err, &throttled) {
			f.logger.Printf("Search %q failed (attempt %d/%d): %v", query, attempt, f.maxAttempts, err)
			continue
		}

		f.logger.Println(throttled.Message)
		wait := throttled.RetryAfter.Truncate(time.Second) + time.Second
		f.logger.Printf("Sleeping for %d seconds before trying again...", int(wait/time.Second))
		if err := f.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	f.logger.Printf("Giving up on %q after %d attempts", query, f.maxAttempts)
	return domain.EmptyPage(), nil
}
