package computation

// The computation IR describes a sequence of buffer-oriented numeric
// operations over matrices and rectangular windows into them.
// It is produced fully formed by an external builder and never mutated
// by the analysis packages.

// Matrix is a rectangular buffer. Index 0 is the permanent null matrix
// with zero rows and columns; it is never allocated.
type Matrix struct {
	NumRows int
	NumCols int
}

// Submatrix is a rectangular window into exactly one matrix. Index 0 is
// the null submatrix. Many submatrices may alias the same matrix with
// overlapping or disjoint windows.
type Submatrix struct {
	MatrixIndex int
	RowOffset   int
	NumRows     int
	ColOffset   int
	NumCols     int
}

// SubmatrixRow addresses one row of one submatrix inside an
// indexes-multi table. The pair (-1, -1) is the reserved sentinel
// meaning "no effect for this row".
type SubmatrixRow struct {
	Submatrix int
	Row       int
}

// NoSource is the sentinel row index in a direct index list, and the
// sentinel submatrix/row value in an indexes-multi table.
const NoSource = -1

// IsSentinel reports whether the pair is the reserved no-effect marker.
func (p SubmatrixRow) IsSentinel() bool {
	return p.Submatrix == NoSource
}

// RowRange is a half-open row interval [Begin, End) of a source
// submatrix, used by the add-row-ranges command. The empty range is
// represented by Begin == End; negative values are invalid.
type RowRange struct {
	Begin int
	End   int
}

// IOPair maps a boundary node to its value matrix and, optionally, its
// derivative matrix (0 when no derivative is requested).
type IOPair struct {
	ValueMatrix int
	DerivMatrix int
}

// Computation is one fully materialized program: matrices, submatrices,
// an ordered command list and the auxiliary index tables the commands
// refer to by table id.
type Computation struct {
	Matrices    []Matrix
	Submatrices []Submatrix
	Commands    []Command

	// Indexes holds direct index lists: one source row per destination
	// row, with NoSource meaning the destination row has no source.
	Indexes [][]int

	// IndexesMulti holds indirect-addressing tables of
	// (submatrix, row) pairs.
	IndexesMulti [][]SubmatrixRow

	// IndexesRanges holds row-range tables for add-row-ranges.
	IndexesRanges [][]RowRange

	// IOInfo maps boundary node ids to their value/derivative matrix
	// pair.
	IOInfo map[int]IOPair

	// NumPrecomputedIndexes is the number of precomputed-index tables
	// available to propagate/backprop commands. The tables themselves
	// are opaque to the analysis; only the id range matters.
	NumPrecomputedIndexes int
}

// IsWholeMatrix reports whether submatrix s covers the full extent of
// the matrix it references. The null submatrix never does.
func (c *Computation) IsWholeMatrix(s int) bool {
	if s <= 0 || s >= len(c.Submatrices) {
		return false
	}
	sub := c.Submatrices[s]
	m := c.Matrices[sub.MatrixIndex]
	return sub.RowOffset == 0 && sub.ColOffset == 0 &&
		sub.NumRows == m.NumRows && sub.NumCols == m.NumCols
}
