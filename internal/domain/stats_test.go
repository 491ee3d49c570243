package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindings_CreateOnFirstSight(t *testing.T) {
	f := NewFindings()

	first := f.Repo("acme/x")
	again := f.Repo("acme/x")
	f.Term("foo")
	f.Term("bar")
	f.Term("foo")

	assert.Same(t, first, again)
	assert.Len(t, f.Repos, 1)
	assert.Equal(t, []string{"acme/x"}, f.RepoNames())
	assert.Equal(t, []string{"foo", "bar"}, f.TermNames())
}

func TestTermStats_AddRepo(t *testing.T) {
	ts := NewFindings().Term("foo")

	assert.True(t, ts.AddRepo("acme/x"))
	assert.False(t, ts.AddRepo("acme/x"))
	assert.True(t, ts.AddRepo("acme/y"))

	assert.Equal(t, []string{"acme/x", "acme/y"}, ts.MatchedRepos)
	assert.Equal(t, 2, ts.RepoCount)
	assert.True(t, ts.HasRepo("acme/y"))
	assert.False(t, ts.HasRepo("acme/z"))
}

func TestRepoStats_AddHit(t *testing.T) {
	rs := NewFindings().Repo("acme/x")

	rs.AddHit("foo", SearchHit{Path: "a.yaml", Score: 1, HTMLURL: "u1"})
	rs.AddHit("foo", SearchHit{Path: "a.yaml", Score: 1, HTMLURL: "u1"})
	rs.AddHit("bar", SearchHit{Path: "b.yaml", Score: 2, HTMLURL: "u2"})

	assert.Equal(t, 3, rs.PathCount)
	assert.Len(t, rs.Paths, 3)
	assert.Equal(t, map[string]int{"foo": 2, "bar": 1}, rs.TermCounts)
	assert.Equal(t, 2, rs.TermCount)
	assert.Equal(t, PathRecord{Path: "b.yaml", Score: 2, URL: "u2"}, rs.Paths[2])
}

func TestNamesAreCopies(t *testing.T) {
	f := NewFindings()
	f.Term("foo")
	names := f.TermNames()
	names[0] = "changed"

	assert.Equal(t, []string{"foo"}, f.TermNames())
}
