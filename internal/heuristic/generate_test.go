package heuristic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/heuristic"
)

func TestGenerate_BoundedAndUnique(t *testing.T) {
	apex := "example.test"
	pool := heuristic.PoolSize()

	for _, max := range []int{0, 1, 4, 50, 512, 2048} {
		got := heuristic.Generate(apex, max)
		want := min(max, pool)
		require.Len(t, got, want, "max=%d", max)

		seen := make(map[string]struct{}, len(got))
		for _, fqdn := range got {
			assert.NotContains(t, seen, fqdn)
			seen[fqdn] = struct{}{}
			assert.Contains(t, fqdn, "."+apex)
		}
	}
}

func TestGenerate_DeterministicAcrossRuns(t *testing.T) {
	apex := "example.test"
	first := heuristic.Generate(apex, 512)
	for i := 0; i < 5; i++ {
		again := heuristic.Generate(apex, 512)
		assert.Equal(t, first, again)
	}
}

func TestGenerate_PriorityOrder(t *testing.T) {
	got := heuristic.Generate("example.test", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "www.example.test", got[0])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
