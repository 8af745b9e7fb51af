package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// indexError runs only up to the first failure, so these fixtures do
// not need to be complete programs.
func indexError(t *testing.T, net computation.Network, comp *computation.Computation, code string) errors.Diagnostic {
	t.Helper()
	return requireDiagnostic(t, runCheck(net, comp), code)
}

func TestIndexesMatrixOutOfRange(t *testing.T) {
	comp := copyComputation()
	comp.Commands[0].Arg1 = 7
	d := indexError(t, reluNet(0), comp, errors.CodeIndexOutOfRange)
	assert.Equal(t, 0, d.Command)
	assert.Equal(t, 7, d.Matrix)
}

func TestIndexesPropagateDimensionMismatch(t *testing.T) {
	comp := trainingComputation()
	comp.Submatrices[1].NumCols = 2 // relu wants 4
	d := indexError(t, reluNet(0), comp, errors.CodeDimensionMismatch)
	assert.Equal(t, 1, d.Command)
	assert.Contains(t, d.Message, "input-dim mismatch")
}

func TestIndexesPropagateRowMismatch(t *testing.T) {
	comp := trainingComputation()
	comp.Submatrices[1].NumRows = 1
	d := indexError(t, reluNet(0), comp, errors.CodeDimensionMismatch)
	assert.Contains(t, d.Message, "num-rows mismatch")
}

func TestIndexesPropagateInPlace(t *testing.T) {
	comp := trainingComputation()
	comp.Commands[1].Arg4 = comp.Commands[1].Arg3
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "in-place propagate")
}

func TestIndexesPropagateNullInput(t *testing.T) {
	comp := trainingComputation()
	// A simple operator must be given its input.
	comp.Commands[1].Arg3 = 0
	indexError(t, reluNet(0), comp, errors.CodeIndexOutOfRange)
}

func TestIndexesPrecomputedForSimpleOperator(t *testing.T) {
	comp := trainingComputation()
	comp.NumPrecomputedIndexes = 1
	comp.Commands[1].Arg2 = 1
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "simple operator")
}

func TestIndexesStoreStats(t *testing.T) {
	comp := trainingComputation()
	comp.Commands[0] = computation.Command{Kind: computation.StoreStats, Arg1: 0, Arg2: 2}
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "does not accumulate statistics")
}

func TestIndexesBackpropNoEffect(t *testing.T) {
	comp := &computation.Computation{
		Matrices: []computation.Matrix{
			{},
			{NumRows: 2, NumCols: 4},
		},
		Submatrices: []computation.Submatrix{
			{},
			{MatrixIndex: 1, NumRows: 2, NumCols: 4},
		},
		Commands: []computation.Command{
			{Kind: computation.AllocZeroed, Arg1: 1},
			{Kind: computation.NoOpMarker},
			{Kind: computation.Backprop, Arg1: 1, Arg5: 1, Arg6: 0},
			{Kind: computation.Dealloc, Arg1: 1},
		},
		IOInfo: map[int]computation.IOPair{},
	}

	// No input derivative and no parameters to update: the command can
	// do nothing at all.
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Equal(t, 2, d.Command)
	assert.Contains(t, d.Message, "no effect")

	// An updatable operator still accumulates parameter gradients.
	require.NoError(t, runCheck(reluNet(computation.Updatable), comp))
}

func TestIndexesBackpropInPlace(t *testing.T) {
	comp := trainingComputation()
	comp.Commands[4].Arg6 = comp.Commands[4].Arg5
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "in-place backprop")

	comp = trainingComputation()
	comp.Commands[4].Arg6 = comp.Commands[4].Arg5
	d = requireDiagnostic(t,
		runCheck(reluNet(computation.InPlaceBackward), comp), errors.CodeLifetimeViolation)
	// The in-place form passes operand checking; the leftover m4
	// allocation then trips the lifetime pass instead.
	assert.Equal(t, 4, d.Matrix)
}

func TestIndexesBackpropNeedsInput(t *testing.T) {
	comp := trainingComputation()
	d := requireDiagnostic(t,
		runCheck(reluNet(computation.BackpropNeedsInput), comp), errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "input needed but not supplied")
}

func TestIndexesMatrixCopySelf(t *testing.T) {
	comp := copyComputation()
	comp.Commands[2].Arg2 = comp.Commands[2].Arg1
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "itself")
}

func TestIndexesMatrixCopyShapeMismatch(t *testing.T) {
	comp := copyComputation()
	comp.Submatrices[2].NumRows = 1
	indexError(t, reluNet(0), comp, errors.CodeDimensionMismatch)
}

func TestIndexesRowsCommand(t *testing.T) {
	base := func() *computation.Computation {
		comp := copyComputation()
		comp.Indexes = [][]int{{0, computation.NoSource}}
		comp.Commands[2] = computation.Command{
			Kind: computation.CopyRows, Arg1: 2, Arg2: 1, Arg3: 0,
		}
		return comp
	}

	// Valid: a gap plus an in-range row.
	require.NoError(t, runCheck(reluNet(0), base()))

	comp := base()
	comp.Indexes[0] = []int{0, 5}
	d := indexError(t, reluNet(0), comp, errors.CodeIndexOutOfRange)
	assert.Contains(t, d.Message, "row index 5")

	comp = base()
	comp.Indexes[0] = []int{0}
	indexError(t, reluNet(0), comp, errors.CodeDimensionMismatch)

	comp = base()
	comp.Indexes[0] = []int{0, -2}
	indexError(t, reluNet(0), comp, errors.CodeIndexOutOfRange)
}

func TestIndexesMultiCommand(t *testing.T) {
	base := func(pairs []computation.SubmatrixRow) *computation.Computation {
		comp := copyComputation()
		comp.IndexesMulti = [][]computation.SubmatrixRow{pairs}
		comp.Commands[2] = computation.Command{
			Kind: computation.CopyRowsMulti, Arg1: 2, Arg2: 0,
		}
		return comp
	}

	require.NoError(t, runCheck(reluNet(0), base([]computation.SubmatrixRow{
		{Submatrix: 1, Row: 0},
		{Submatrix: 1, Row: 1},
	})))

	// A sentinel submatrix must carry a sentinel row.
	d := indexError(t, reluNet(0), base([]computation.SubmatrixRow{
		{Submatrix: 1, Row: 0},
		{Submatrix: computation.NoSource, Row: 1},
	}), errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "sentinel")

	d = indexError(t, reluNet(0), base([]computation.SubmatrixRow{
		{Submatrix: 1, Row: 0},
		{Submatrix: 2, Row: 0},
	}), errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "references itself")

	d = indexError(t, reluNet(0), base([]computation.SubmatrixRow{
		{Submatrix: 1, Row: 0},
		{Submatrix: 1, Row: 9},
	}), errors.CodeIndexOutOfRange)
	assert.Contains(t, d.Message, "row index 9")
}

func TestIndexesScatterDuplicateDestination(t *testing.T) {
	comp := copyComputation()
	comp.IndexesMulti = [][]computation.SubmatrixRow{{
		{Submatrix: 2, Row: 0},
		{Submatrix: 2, Row: 0},
	}}
	comp.Commands[2] = computation.Command{
		Kind: computation.AddToRowsMulti, Arg1: 1, Arg2: 0,
	}
	d := indexError(t, reluNet(0), comp, errors.CodeStructuralViolation)
	assert.Equal(t, 2, d.Command)
	assert.Contains(t, d.Message, "duplicate destination (s2, 0)")

	// Gathers tolerate repeated sources.
	comp.Commands[2].Kind = computation.AddRowsMulti
	require.NoError(t, runCheck(reluNet(0), comp))
}

func TestIndexesRowRanges(t *testing.T) {
	base := func(ranges []computation.RowRange) *computation.Computation {
		comp := copyComputation()
		comp.IndexesRanges = [][]computation.RowRange{ranges}
		comp.Commands[2] = computation.Command{
			Kind: computation.AddRowRanges, Arg1: 2, Arg2: 1, Arg3: 0,
		}
		return comp
	}

	require.NoError(t, runCheck(reluNet(0), base([]computation.RowRange{
		{Begin: 0, End: 2},
		{Begin: 1, End: 1}, // empty range is legal
	})))

	d := indexError(t, reluNet(0), base([]computation.RowRange{
		{Begin: 0, End: 2},
		{Begin: 2, End: 1},
	}), errors.CodeStructuralViolation)
	assert.Contains(t, d.Message, "row range (2, 1)")

	indexError(t, reluNet(0), base([]computation.RowRange{
		{Begin: 0, End: 3},
		{Begin: 0, End: 2},
	}), errors.CodeStructuralViolation)
}
