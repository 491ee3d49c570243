// Package gateway provides a gateway to the GitHub code search API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-code-survey/internal/domain"
)

// MaxPerPage is the largest page size the code search API accepts.
const MaxPerPage = 100

// Searcher defines the behavior of a gateway for searching code on GitHub.
type Searcher interface {
	// SearchCode issues exactly one request for the first page of results.
	// A non-200 response is reported as a *ThrottledError.
	SearchCode(ctx context.Context, query string) (*domain.Page, error)
}

// ThrottledError is returned when the API answers with anything other than 200.
type ThrottledError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("github search returned %d: %s (retry after %s)", e.StatusCode, e.Message, e.RetryAfter)
}

// Options configures the HTTP stack built by NewGitHubGateway.
type Options struct {
	// TransportWait lets the secondary rate limit waiter absorb throttling
	// responses that ask for at most this long. Zero disables the waiter.
	TransportWait time.Duration
	// BaseURL overrides the API endpoint, mainly for GitHub Enterprise.
	BaseURL string
}

// GitHubGateway is the concrete implementation of the Searcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     *log.Logger
	now        func() time.Time
}

// codeSearchResult mirrors the parts of the search/code payload we consume.
// go-github's CodeResult drops the score field, so the payload is decoded here.
type codeSearchResult struct {
	TotalCount        int  `json:"total_count"`
	IncompleteResults bool `json:"incomplete_results"`
	Items             []struct {
		Name       string  `json:"name"`
		Path       string  `json:"path"`
		HTMLURL    string  `json:"html_url"`
		Score      float64 `json:"score"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger, opts Options) (*GitHubGateway, error) {
	var base http.RoundTripper = http.DefaultTransport
	if opts.TransportWait > 0 {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(opts.TransportWait, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		base = rateLimitWaiter
	}
	httpClient := &http.Client{Transport: base}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   base,
			Source: ts,
		}
	}
	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		var err error
		restClient, err = restClient.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set enterprise URL: %w", err)
		}
	}
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SearchCode runs a single code search and returns its first page.
func (g *GitHubGateway) SearchCode(ctx context.Context, query string) (*domain.Page, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(MaxPerPage))
	req, err := g.restClient.NewRequest(http.MethodGet, "search/code?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build code search request: %w", err)
	}

	var result codeSearchResult
	resp, err := g.restClient.Do(ctx, req, &result)
	if err != nil {
		if resp == nil || resp.Response == nil {
			return nil, fmt.Errorf("failed to search code with REST API: %w", err)
		}
		return nil, &ThrottledError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(err),
			RetryAfter: g.retryAfter(resp.Response, err),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ThrottledError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			RetryAfter: g.retryAfter(resp.Response, nil),
		}
	}
	if result.IncompleteResults {
		g.logger.Printf("  Search for %q returned incomplete results", query)
	}

	page := &domain.Page{TotalCount: result.TotalCount, Items: make([]domain.SearchHit, 0, len(result.Items))}
	for _, item := range result.Items {
		page.Items = append(page.Items, domain.SearchHit{
			Path:               item.Path,
			Score:              item.Score,
			HTMLURL:            item.HTMLURL,
			RepositoryFullName: item.Repository.FullName,
		})
	}
	return page, nil
}

// retryAfter works out how long the server asked us to wait.
// The Retry-After header wins, then go-github's parsed limits, else zero.
func (g *GitHubGateway) retryAfter(resp *http.Response, err error) time.Duration {
	if resp != nil {
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, convErr := strconv.Atoi(v); convErr == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		return *abuseErr.RetryAfter
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		if wait := rateErr.Rate.Reset.Time.Sub(g.now()); wait > 0 {
			return wait.Truncate(time.Second)
		}
	}
	return 0
}

func errorMessage(err error) string {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.Message
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Message
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Message
	}
	return err.Error()
}

// RateLimitBucket is a snapshot of one rate limit category.
type RateLimitBucket struct {
	Name      string    `json:"name"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// FetchRateLimits reports the buckets relevant to code searches.
func (g *GitHubGateway) FetchRateLimits(ctx context.Context) ([]RateLimitBucket, error) {
	g.logger.Println("Fetching rate limit status...")
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate limits: %w", err)
	}
	var buckets []RateLimitBucket
	add := func(name string, rate *github.Rate) {
		if rate == nil {
			return
		}
		buckets = append(buckets, RateLimitBucket{
			Name:      name,
			Limit:     rate.Limit,
			Remaining: rate.Remaining,
			Reset:     rate.Reset.Time,
		})
	}
	add("core", limits.Core)
	add("search", limits.Search)
	add("code_search", limits.CodeSearch)
	return buckets, nil
}
