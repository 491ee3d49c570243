// Package domain contains the core data structures and domain logic for the application.
package domain

// QueryPair is one (term, organization) search to run. An empty Org means the
// search is not restricted to an organization.
type QueryPair struct {
	Term string
	Org  string
}

// SearchHit is one matched file returned by the code search API.
type SearchHit struct {
	Path               string
	Score              float64
	HTMLURL            string
	RepositoryFullName string
}

// Page is a single page of code search results for one QueryPair.
// A Page with no items and a zero TotalCount is also what a failed query yields.
type Page struct {
	TotalCount int
	Items      []SearchHit
}

// EmptyPage returns a well-formed page with no hits.
func EmptyPage() *Page {
	return &Page{Items: []SearchHit{}}
}

// PathRecord is one hit as recorded against its repository.
type PathRecord struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
	URL   string  `json:"url"`
}

// TermStats holds the aggregated results for a single search term.
type TermStats struct {
	TotalCount   int      `json:"totalCount"`
	MatchedRepos []string `json:"matchedRepos"`
	RepoCount    int      `json:"repoCount"`

	seen map[string]struct{}
}

func newTermStats() *TermStats {
	return &TermStats{
		MatchedRepos: []string{},
		seen:         make(map[string]struct{}),
	}
}

// AddRepo records that repo produced a hit for this term.
// It reports whether the repository was new to the term.
func (t *TermStats) AddRepo(repo string) bool {
	if _, ok := t.seen[repo]; ok {
		return false
	}
	t.seen[repo] = struct{}{}
	t.MatchedRepos = append(t.MatchedRepos, repo)
	t.RepoCount = len(t.MatchedRepos)
	return true
}

// HasRepo reports whether repo has produced a hit for this term.
func (t *TermStats) HasRepo(repo string) bool {
	_, ok := t.seen[repo]
	return ok
}

// RepoStats holds every hit observed for a single repository.
// It is the core domain entity of this application.
type RepoStats struct {
	Paths      []PathRecord   `json:"paths"`
	PathCount  int            `json:"pathCount"`
	TermCounts map[string]int `json:"termCounts"`
	TermCount  int            `json:"termCount"`
}

func newRepoStats() *RepoStats {
	return &RepoStats{
		Paths:      []PathRecord{},
		TermCounts: make(map[string]int),
	}
}

// AddHit appends hit to the repository's paths and counts it against term.
// Paths are never deduplicated.
func (r *RepoStats) AddHit(term string, hit SearchHit) {
	r.Paths = append(r.Paths, PathRecord{Path: hit.Path, Score: hit.Score, URL: hit.HTMLURL})
	r.PathCount = len(r.Paths)
	if r.TermCounts[term] == 0 {
		r.TermCount++
	}
	r.TermCounts[term]++
}

// Priority holds the rankings derived from a completed run.
type Priority struct {
	ReposByPathCount  []string `json:"reposByPathCount"`
	TermsByTotalCount []string `json:"termsByTotalCount"`
}

// Findings is the aggregate result of one run.
type Findings struct {
	Repos    map[string]*RepoStats `json:"repos"`
	Terms    map[string]*TermStats `json:"terms"`
	Priority Priority              `json:"priority"`

	// first-seen order, used for deterministic tie-breaks when ranking
	repoOrder []string
	termOrder []string
}

// NewFindings returns empty findings ready to be folded into.
func NewFindings() *Findings {
	return &Findings{
		Repos: make(map[string]*RepoStats),
		Terms: make(map[string]*TermStats),
		Priority: Priority{
			ReposByPathCount:  []string{},
			TermsByTotalCount: []string{},
		},
	}
}

// Term returns the stats for term, creating them on first sight.
func (f *Findings) Term(term string) *TermStats {
	if ts, ok := f.Terms[term]; ok {
		return ts
	}
	ts := newTermStats()
	f.Terms[term] = ts
	f.termOrder = append(f.termOrder, term)
	return ts
}

// Repo returns the stats for the named repository, creating them on first sight.
func (f *Findings) Repo(name string) *RepoStats {
	if rs, ok := f.Repos[name]; ok {
		return rs
	}
	rs := newRepoStats()
	f.Repos[name] = rs
	f.repoOrder = append(f.repoOrder, name)
	return rs
}

// TermNames returns every term in the order it was first seen.
func (f *Findings) TermNames() []string {
	out := make([]string, len(f.termOrder))
	copy(out, f.termOrder)
	return out
}

// RepoNames returns every repository name in the order it was first seen.
func (f *Findings) RepoNames() []string {
	out := make([]string, len(f.repoOrder))
	copy(out, f.repoOrder)
	return out
}
