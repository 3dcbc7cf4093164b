package decisiontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSumsPositionally(t *testing.T) {
	records := [][]Value{
		seq("Three", true, true), seq("Three", true, false),
		seq("Layup", false, true), seq("Layup", false, true),
		seq("Mid-range", true, false), seq("Dunk", true, true),
	}

	sequential := mustBuild(t, "p", shotTypes, 1)
	for _, r := range records {
		_, err := sequential.Ingest(r)
		require.NoError(t, err)
	}

	left := mustBuild(t, "p", shotTypes, 1)
	right := mustBuild(t, "p", shotTypes, 1)
	for i, r := range records {
		part := left
		if i%2 == 1 {
			part = right
		}
		_, err := part.Ingest(r)
		require.NoError(t, err)
	}

	require.NoError(t, Merge(left, right))
	assert.Equal(t, sequential.String(), left.String())
	assert.Equal(t, 5, totalAttempts(left))
}

func TestMergeShapeMismatch(t *testing.T) {
	a := mustBuild(t, "p", shotTypes, 1)

	b := mustBuild(t, "q", shotTypes, 1)
	assert.ErrorIs(t, Merge(a, b), ErrShapeMismatch)

	c := mustBuild(t, "p", shotTypes, 2)
	assert.ErrorIs(t, Merge(a, c), ErrShapeMismatch)

	d := mustBuild(t, "p", []string{"Three", "Layup", "Mid-range"}, 1)
	assert.ErrorIs(t, Merge(a, d), ErrShapeMismatch)

	assert.ErrorIs(t, Merge(a, New(nil)), ErrEmptyTree)
	assert.Equal(t, 0, totalAttempts(a))
}
