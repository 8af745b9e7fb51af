package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	an, err := NewAnalyzer(emptyNet(), copyComputation())
	require.NoError(t, err)
	return an
}

func TestMatrixAccessedBefore(t *testing.T) {
	an := queryAnalyzer(t)

	// m1's first log entry is its own allocation, which does not count;
	// the first real access is the copy's read at c2.
	assert.False(t, MatrixAccessedBefore(an.MatrixAccesses, 1, 2))
	assert.True(t, MatrixAccessedBefore(an.MatrixAccesses, 1, 3))

	// An input matrix has no allocation, so its first access counts.
	comp := copyComputation()
	comp.Commands = comp.Commands[1:] // drop the alloc of m1
	comp.Commands = comp.Commands[:len(comp.Commands)-2]
	an, err := NewAnalyzer(emptyNet(), comp)
	require.NoError(t, err)
	assert.False(t, MatrixAccessedBefore(an.MatrixAccesses, 1, 1))
	assert.True(t, MatrixAccessedBefore(an.MatrixAccesses, 1, 2))
}

func TestMatrixAccessedAfter(t *testing.T) {
	an := queryAnalyzer(t)

	assert.True(t, MatrixAccessedAfter(an.MatrixAccesses, 1, 1))
	assert.False(t, MatrixAccessedAfter(an.MatrixAccesses, 1, 2))
	assert.False(t, MatrixAccessedAfter(an.MatrixAccesses, 2, 2))
}

func TestMatrixWrittenAfter(t *testing.T) {
	an := queryAnalyzer(t)

	// m2 is written by its allocation at c1 and the copy at c2.
	assert.True(t, MatrixWrittenAfter(an.MatrixAccesses, 2, 0))
	assert.True(t, MatrixWrittenAfter(an.MatrixAccesses, 2, 1))
	assert.False(t, MatrixWrittenAfter(an.MatrixAccesses, 2, 2))

	// m1's only access after c0 is a read.
	assert.False(t, MatrixWrittenAfter(an.MatrixAccesses, 1, 0))
}

func TestFirstWriteToSubmatrixAfter(t *testing.T) {
	an := queryAnalyzer(t)

	assert.Equal(t, 1, FirstWriteToSubmatrixAfter(an, 2, 0))
	assert.Equal(t, 2, FirstWriteToSubmatrixAfter(an, 2, 1))
	assert.Equal(t, NoCommand, FirstWriteToSubmatrixAfter(an, 2, 2))
	assert.Equal(t, NoCommand, FirstWriteToSubmatrixAfter(an, 1, 0))
}
