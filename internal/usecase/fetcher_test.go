package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/naka-gawa/github-code-survey/internal/domain"
	"github.com/naka-gawa/github-code-survey/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockSearcher is a mock implementation of the gateway.Searcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchCode(ctx context.Context, query string) (*domain.Page, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

// sleepRecorder records every requested sleep instead of blocking.
type sleepRecorder struct {
	sleeps []time.Duration
	err    error
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return s.err
}

func TestBuildQuery(t *testing.T) {
	testCases := []struct {
		name     string
		pair     domain.QueryPair
		language string
		expected string
	}{
		{name: "org and language", pair: domain.QueryPair{Term: "foo", Org: "acme"}, language: "YAML", expected: "foo org:acme language:YAML"},
		{name: "unscoped", pair: domain.QueryPair{Term: "foo"}, language: "YAML", expected: "foo language:YAML"},
		{name: "no language", pair: domain.QueryPair{Term: "foo bar", Org: "acme"}, expected: "foo bar org:acme"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BuildQuery(tc.pair, tc.language))
		})
	}
}

func TestBackoffFetcher_Fetch(t *testing.T) {
	page := &domain.Page{
		TotalCount: 1,
		Items:      []domain.SearchHit{{Path: "a.yaml", RepositoryFullName: "acme/x"}},
	}
	throttled := &gateway.ThrottledError{StatusCode: 403, Message: "rate limited", RetryAfter: 2 * time.Second}

	type call struct {
		page *domain.Page
		err  error
	}
	testCases := []struct {
		name           string
		calls          []call
		expectedPage   *domain.Page
		expectedSleeps []time.Duration
	}{
		{
			name:         "first attempt succeeds",
			calls:        []call{{page: page}},
			expectedPage: page,
		},
		{
			name:           "throttled once then succeeds after one sleep of retry-after plus one second",
			calls:          []call{{err: throttled}, {page: page}},
			expectedPage:   page,
			expectedSleeps: []time.Duration{3 * time.Second},
		},
		{
			name:           "throttled on every attempt yields an empty page",
			calls:          []call{{err: throttled}, {err: throttled}},
			expectedPage:   domain.EmptyPage(),
			expectedSleeps: []time.Duration{3 * time.Second, 3 * time.Second},
		},
		{
			name:         "transport failure consumes an attempt without sleeping",
			calls:        []call{{err: errors.New("connection reset")}, {page: page}},
			expectedPage: page,
		},
		{
			name:         "transport failures exhaust the attempts",
			calls:        []call{{err: errors.New("connection reset")}, {err: errors.New("connection reset")}},
			expectedPage: domain.EmptyPage(),
		},
		{
			name:           "missing retry-after still waits one second",
			calls:          []call{{err: &gateway.ThrottledError{StatusCode: 500, Message: "boom"}}, {page: page}},
			expectedPage:   page,
			expectedSleeps: []time.Duration{time.Second},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			searcher := new(mockSearcher)
			for _, c := range tc.calls {
				if c.page != nil {
					searcher.On("SearchCode", mock.Anything, "foo org:acme language:YAML").Return(c.page, nil).Once()
				} else {
					searcher.On("SearchCode", mock.Anything, "foo org:acme language:YAML").Return(nil, c.err).Once()
				}
			}
			recorder := &sleepRecorder{}
			fetcher := NewBackoffFetcher(searcher, log.New(io.Discard, "", 0), WithSleep(recorder.sleep))

			got, err := fetcher.Fetch(context.Background(), domain.QueryPair{Term: "foo", Org: "acme"})

			require.NoError(t, err)
			assert.Equal(t, tc.expectedPage, got)
			assert.Equal(t, tc.expectedSleeps, recorder.sleeps)
			searcher.AssertExpectations(t)
			searcher.AssertNumberOfCalls(t, "SearchCode", len(tc.calls))
		})
	}
}

func TestBackoffFetcher_FetchStopsWhenSleepIsCancelled(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("SearchCode", mock.Anything, mock.Anything).
		Return(nil, &gateway.ThrottledError{StatusCode: 403, RetryAfter: time.Minute}).Once()
	recorder := &sleepRecorder{err: context.Canceled}
	fetcher := NewBackoffFetcher(searcher, log.New(io.Discard, "", 0), WithSleep(recorder.sleep))

	got, err := fetcher.Fetch(context.Background(), domain.QueryPair{Term: "foo"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	searcher.AssertExpectations(t)
}

func TestBackoffFetcher_Options(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("SearchCode", mock.Anything, "foo").Return(nil, errors.New("down")).Times(3)
	fetcher := NewBackoffFetcher(searcher, log.New(io.Discard, "", 0), WithLanguage(""), WithMaxAttempts(3))

	got, err := fetcher.Fetch(context.Background(), domain.QueryPair{Term: "foo"})

	require.NoError(t, err)
	assert.Equal(t, domain.EmptyPage(), got)
	searcher.AssertExpectations(t)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
