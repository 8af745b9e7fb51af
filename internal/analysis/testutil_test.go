package analysis

import (
	"nnetcheck/internal/computation"
)

// partitionedComputation has one 3x4 matrix split into two variables
// by its submatrices, plus a second 2x3 matrix with a single variable:
//
//	m1: s1 = whole, s2 = cols [0,2), s3 = cols [2,4), s4 = rows [0,2)
//	m2: s5 = whole
//
// Variables: v0 = m1 cols [0,2), v1 = m1 cols [2,4), v2 = m2.
func partitionedComputation() *computation.Computation {
	return &computation.Computation{
		Matrices: []computation.Matrix{
			{},
			{NumRows: 3, NumCols: 4},
			{NumRows: 2, NumCols: 3},
		},
		Submatrices: []computation.Submatrix{
			{},
			{MatrixIndex: 1, RowOffset: 0, NumRows: 3, ColOffset: 0, NumCols: 4},
			{MatrixIndex: 1, RowOffset: 0, NumRows: 3, ColOffset: 0, NumCols: 2},
			{MatrixIndex: 1, RowOffset: 0, NumRows: 3, ColOffset: 2, NumCols: 2},
			{MatrixIndex: 1, RowOffset: 0, NumRows: 2, ColOffset: 0, NumCols: 4},
			{MatrixIndex: 2, RowOffset: 0, NumRows: 2, ColOffset: 0, NumCols: 3},
		},
		IOInfo: map[int]computation.IOPair{},
	}
}

// copyComputation is a minimal well-formed program: zero m1 and m2,
// copy m1 into m2, phase marker, release both.
//
//	m1: 2x2 (s1 = whole), m2: 2x2 (s2 = whole)
func copyComputation() *computation.Computation {
	return &computation.Computation{
		Matrices: []computation.Matrix{
			{},
			{NumRows: 2, NumCols: 2},
			{NumRows: 2, NumCols: 2},
		},
		Submatrices: []computation.Submatrix{
			{},
			{MatrixIndex: 1, NumRows: 2, NumCols: 2},
			{MatrixIndex: 2, NumRows: 2, NumCols: 2},
		},
		Commands: []computation.Command{
			{Kind: computation.AllocZeroed, Arg1: 1},
			{Kind: computation.AllocZeroed, Arg1: 2},
			{Kind: computation.MatrixCopy, Arg1: 2, Arg2: 1},
			{Kind: computation.NoOpMarker},
			{Kind: computation.Dealloc, Arg1: 1},
			{Kind: computation.Dealloc, Arg1: 2},
		},
		IOInfo: map[int]computation.IOPair{},
	}
}

func emptyNet() *computation.OperatorTable {
	return &computation.OperatorTable{}
}
