package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

func TestVariableAccessLogs(t *testing.T) {
	comp := copyComputation()
	an, err := NewAnalyzer(emptyNet(), comp)
	require.NoError(t, err)

	require.Equal(t, 2, an.Variables.NumVariables())

	// m1's variable: zeroed by c0, read by the copy at c2.
	assert.Equal(t, []Access{
		{Command: 0, Kind: WriteAccess},
		{Command: 2, Kind: ReadAccess},
	}, an.VariableAccesses[0])

	// m2's variable: zeroed by c1, overwritten by the copy at c2.
	assert.Equal(t, []Access{
		{Command: 1, Kind: WriteAccess},
		{Command: 2, Kind: WriteAccess},
	}, an.VariableAccesses[1])
}

func TestVariableAccessMergesToReadWrite(t *testing.T) {
	comp := copyComputation()
	// Accumulate m1 into itself: one command both reads and writes v0.
	comp.Commands[2] = computation.Command{
		Kind: computation.MatrixAdd, Arg1: 1, Arg2: 1,
	}
	an, err := NewAnalyzer(emptyNet(), comp)
	require.NoError(t, err)

	assert.Equal(t, []Access{
		{Command: 0, Kind: WriteAccess},
		{Command: 2, Kind: ReadWriteAccess},
	}, an.VariableAccesses[0])
}

func TestMatrixLifecycleRecording(t *testing.T) {
	comp := copyComputation()
	an, err := NewAnalyzer(emptyNet(), comp)
	require.NoError(t, err)

	m1 := an.MatrixAccesses[1]
	assert.Equal(t, 0, m1.AllocateCommand)
	assert.Equal(t, 4, m1.DeallocateCommand)
	assert.False(t, m1.IsInput)
	assert.False(t, m1.IsOutput)

	// Allocation shows up in the log as its write; deallocation is
	// lifecycle only and is not logged.
	assert.Equal(t, []Access{
		{Command: 0, Kind: WriteAccess},
		{Command: 2, Kind: ReadAccess},
	}, m1.Accesses)

	m2 := an.MatrixAccesses[2]
	assert.Equal(t, 1, m2.AllocateCommand)
	assert.Equal(t, 5, m2.DeallocateCommand)
}

func TestMatrixInitializedTwice(t *testing.T) {
	comp := copyComputation()
	comp.Commands = append(comp.Commands,
		computation.Command{Kind: computation.AllocUndefined, Arg1: 1})
	_, err := NewAnalyzer(emptyNet(), comp)
	require.Error(t, err)
	d, ok := err.(errors.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, errors.CodeLifetimeViolation, d.Code)
	assert.Equal(t, 1, d.Matrix)
	assert.Equal(t, 6, d.Command)
}

func TestMatrixDestroyedTwice(t *testing.T) {
	comp := copyComputation()
	comp.Commands = append(comp.Commands,
		computation.Command{Kind: computation.Dealloc, Arg1: 2})
	_, err := NewAnalyzer(emptyNet(), comp)
	require.Error(t, err)
	d, ok := err.(errors.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, errors.CodeLifetimeViolation, d.Code)
	assert.Equal(t, 2, d.Matrix)
}

func TestBoundaryMarking(t *testing.T) {
	net := &computation.OperatorTable{
		Nodes: []computation.Node{
			{Kind: computation.InputNode},
			{Kind: computation.OutputNode},
		},
	}
	comp := partitionedComputation()
	comp.Matrices = append(comp.Matrices,
		computation.Matrix{NumRows: 3, NumCols: 4},
		computation.Matrix{NumRows: 2, NumCols: 3})
	comp.IOInfo = map[int]computation.IOPair{
		0: {ValueMatrix: 1, DerivMatrix: 3},
		1: {ValueMatrix: 2, DerivMatrix: 4},
	}
	an, err := NewAnalyzer(net, comp)
	require.NoError(t, err)

	// Derivatives flow against the values: the derivative of an input
	// leaves the computation and the derivative of an output enters it.
	assert.True(t, an.MatrixAccesses[1].IsInput)
	assert.False(t, an.MatrixAccesses[1].IsOutput)
	assert.True(t, an.MatrixAccesses[2].IsOutput)
	assert.True(t, an.MatrixAccesses[3].IsOutput)
	assert.True(t, an.MatrixAccesses[4].IsInput)
}

func TestBoundaryMarkedTwice(t *testing.T) {
	net := &computation.OperatorTable{
		Nodes: []computation.Node{
			{Kind: computation.InputNode},
			{Kind: computation.InputNode},
		},
	}
	comp := partitionedComputation()
	comp.IOInfo = map[int]computation.IOPair{
		0: {ValueMatrix: 1},
		1: {ValueMatrix: 1},
	}
	_, err := NewAnalyzer(net, comp)
	require.Error(t, err)
	d, ok := err.(errors.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, errors.CodeStructuralViolation, d.Code)
}

func TestAnalyzerIsDeterministic(t *testing.T) {
	comp := copyComputation()
	first, err := NewAnalyzer(emptyNet(), comp)
	require.NoError(t, err)
	second, err := NewAnalyzer(emptyNet(), comp)
	require.NoError(t, err)

	assert.Equal(t, first.CommandAttributes, second.CommandAttributes)
	assert.Equal(t, first.VariableAccesses, second.VariableAccesses)
	assert.Equal(t, first.MatrixAccesses, second.MatrixAccesses)
}
