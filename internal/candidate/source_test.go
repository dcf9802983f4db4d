package candidate_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/candidate"
)

func drain(t *testing.T, src candidate.Source) []candidate.Candidate {
	t.Helper()
	var out []candidate.Candidate
	for {
		c, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestHeuristicSource_BoundedAndSuffixed(t *testing.T) {
	src := candidate.NewHeuristic("example.test", 5)
	got := drain(t, src)
	require.Len(t, got, 5)
	for _, c := range got {
		assert.Equal(t, "example.test", c.Apex)
		assert.True(t, strings.HasSuffix(c.FQDN, ".example.test"))
	}
}

func TestWordlistSource_SkipsBlankLines(t *testing.T) {
	src := candidate.NewWordlistFromReader("example.test", strings.NewReader("www\n\nadmin\n"))
	got := drain(t, src)
	require.Len(t, got, 2)
	assert.Equal(t, "www.example.test", got[0].FQDN)
	assert.Equal(t, "admin.example.test", got[1].FQDN)
}

func TestInterleaved_RoundRobinsAcrossApexes(t *testing.T) {
	a := candidate.NewWordlistFromReader("a.test", strings.NewReader("one\ntwo\n"))
	b := candidate.NewWordlistFromReader("b.test", strings.NewReader("uno\ndos\ntres\n"))
	src := candidate.NewInterleaved(a, b)

	got := drain(t, src)
	require.Len(t, got, 5)

	assert.Equal(t, "a.test", got[0].Apex)
	assert.Equal(t, "b.test", got[1].Apex)
	assert.Equal(t, "a.test", got[2].Apex)
	assert.Equal(t, "b.test", got[3].Apex)
	// a.test is exhausted after 2; b.test's remainder drains alone.
	assert.Equal(t, "b.test", got[4].Apex)
}

func TestInterleaved_EmptyYieldsEOF(t *testing.T) {
	src := candidate.NewInterleaved()
	_, err := src.Next()
	assert.ErrorIs(t, err, io.EOF)
}
