package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-code-survey/internal/domain"
)

// DefaultTop is how many rows of each ranking the summary prints.
const DefaultTop = 10

// Distribution describes how hits are spread across repositories.
type Distribution struct {
	Repos      int
	Hits       int
	MeanPaths  float64
	MedianPath float64
	P90Paths   float64
	MeanScore  float64
}

// Distribute computes the spread of paths per repository and the mean hit score.
func Distribute(findings *domain.Findings) Distribution {
	d := Distribution{Repos: len(findings.Repos)}
	if d.Repos == 0 {
		return d
	}

	pathCounts := make(stats.Float64Data, 0, len(findings.Repos))
	var scores stats.Float64Data
	for _, name := range findings.RepoNames() {
		repo := findings.Repos[name]
		pathCounts = append(pathCounts, float64(repo.PathCount))
		d.Hits += repo.PathCount
		for _, p := range repo.Paths {
			scores = append(scores, p.Score)
		}
	}

	// stats only errors on empty input, which is ruled out above.
	d.MeanPaths, _ = pathCounts.Mean()
	d.MedianPath, _ = pathCounts.Median()
	d.P90Paths, _ = pathCounts.Percentile(90)
	if len(scores) > 0 {
		d.MeanScore, _ = scores.Mean()
	}
	return d
}

// WriteSummary prints the top entries of both rankings and the hit distribution.
func WriteSummary(w io.Writer, findings *domain.Findings, top int) error {
	if top <= 0 {
		top = DefaultTop
	}
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Top repositories by matched paths")
	repos := findings.Priority.ReposByPathCount
	if len(repos) == 0 {
		fmt.Fprintln(w, "  (no matches)")
	}
	for i, name := range limit(repos, top) {
		repo := findings.Repos[name]
		fmt.Fprintf(w, "  %2d. %-50s %5d paths %3d terms\n", i+1, name, repo.PathCount, repo.TermCount)
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "Top terms by total matches")
	for i, term := range limit(findings.Priority.TermsByTotalCount, top) {
		ts := findings.Terms[term]
		fmt.Fprintf(w, "  %2d. %-50s %5d total %3d repos\n", i+1, term, ts.TotalCount, ts.RepoCount)
	}
	fmt.Fprintln(w)

	d := Distribute(findings)
	bold.Fprintln(w, "Distribution")
	_, err := fmt.Fprintf(w, "  repos: %d  hits: %d  paths/repo mean %.2f median %.2f p90 %.2f  mean score %.2f\n",
		d.Repos, d.Hits, d.MeanPaths, d.MedianPath, d.P90Paths, d.MeanScore)
	return err
}

func limit(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}
