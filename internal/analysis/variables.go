// Package analysis computes, for every command of a computation,
// exactly which storage regions it reads and writes, and aggregates
// those effects into chronological per-variable and per-matrix access
// logs. The check package consumes these to verify the computation;
// optimization passes consume them through the query helpers.
package analysis

import (
	"sort"

	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// AccessKind is the combined effect of one command on one variable or
// matrix.
type AccessKind int

const (
	ReadAccess AccessKind = iota
	WriteAccess
	ReadWriteAccess
)

func (k AccessKind) String() string {
	switch k {
	case ReadAccess:
		return "r"
	case WriteAccess:
		return "w"
	default:
		return "rw"
	}
}

// Variables is the finer storage partition the analysis reasons about.
// For each matrix, the column offsets and offset+width boundaries of
// every submatrix referencing it become split points; consecutive split
// points delimit the matrix's variables. Variables are numbered in one
// contiguous global range, matrix by matrix; the null matrix owns none.
type Variables struct {
	// splitPoints[m] holds the sorted, deduplicated column boundaries
	// of matrix m, always including 0 and the full column count.
	splitPoints [][]int

	// matrixToVariableIndex[m] is the first global variable index owned
	// by matrix m; the entry at m+1 is one past its last. Length is
	// number of matrices + 1.
	matrixToVariableIndex []int

	// variableRanges[s] is the half-open global variable range covered
	// by submatrix s.
	variableRanges [][2]int

	// fullRowSpan[s] reports whether submatrix s spans all rows of its
	// matrix. A write through a submatrix that does not is only a
	// partial redefinition of its variables.
	fullRowSpan []bool

	submatrixToMatrix      []int
	submatrixIsWholeMatrix []bool
	variableToMatrix       []int
	numVariables           int
}

// NewVariables derives the variable partition of a computation. It
// fails with an internal-consistency diagnostic when the geometry of a
// submatrix does not line up with the split points of its matrix, which
// indicates a defect in the upstream computation builder.
func NewVariables(comp *computation.Computation) (*Variables, error) {
	v := &Variables{}
	if err := v.computeSplitPoints(comp); err != nil {
		return nil, err
	}
	if err := v.computeVariableRanges(comp); err != nil {
		return nil, err
	}
	if err := v.computeVariableToMatrix(comp); err != nil {
		return nil, err
	}
	v.computeSubmatrixInfo(comp)
	return v, nil
}

func (v *Variables) computeSplitPoints(comp *computation.Computation) error {
	numMatrices := len(comp.Matrices)
	v.splitPoints = make([][]int, numMatrices)
	for m := 1; m < numMatrices; m++ {
		v.splitPoints[m] = []int{0, comp.Matrices[m].NumCols}
	}
	for s := 1; s < len(comp.Submatrices); s++ {
		sub := comp.Submatrices[s]
		v.splitPoints[sub.MatrixIndex] = append(v.splitPoints[sub.MatrixIndex],
			sub.ColOffset, sub.ColOffset+sub.NumCols)
	}
	for m := 1; m < numMatrices; m++ {
		v.splitPoints[m] = sortAndUniq(v.splitPoints[m])
		if len(v.splitPoints[m]) < 2 {
			return errors.Newf(errors.CodeInternalInconsistency,
				"matrix has fewer than two column split points").OnMatrix(m)
		}
	}

	// The last split point of each matrix does not get its own variable.
	v.matrixToVariableIndex = make([]int, numMatrices+1)
	for m := 1; m < numMatrices; m++ {
		v.matrixToVariableIndex[m+1] =
			v.matrixToVariableIndex[m] + len(v.splitPoints[m]) - 1
	}
	v.numVariables = v.matrixToVariableIndex[numMatrices]
	return nil
}

func (v *Variables) computeVariableRanges(comp *computation.Computation) error {
	numSubmatrices := len(comp.Submatrices)
	v.variableRanges = make([][2]int, numSubmatrices)
	v.fullRowSpan = make([]bool, numSubmatrices)

	for s := 1; s < numSubmatrices; s++ {
		sub := comp.Submatrices[s]
		split := v.splitPoints[sub.MatrixIndex]
		startDim, endDim := sub.ColOffset, sub.ColOffset+sub.NumCols

		// Both boundaries must coincide exactly with split points; a
		// miss means the split-point derivation and the submatrix table
		// disagree.
		startIndex := sort.SearchInts(split, startDim)
		if startIndex == len(split) || split[startIndex] != startDim {
			return errors.Newf(errors.CodeInternalInconsistency,
				"column offset %d is not a split point of matrix m%d",
				startDim, sub.MatrixIndex).OnSubmatrix(s)
		}
		endIndex := sort.SearchInts(split, endDim)
		if endIndex == len(split) || split[endIndex] != endDim {
			return errors.Newf(errors.CodeInternalInconsistency,
				"column end %d is not a split point of matrix m%d",
				endDim, sub.MatrixIndex).OnSubmatrix(s)
		}
		if endIndex <= startIndex {
			return errors.Newf(errors.CodeInternalInconsistency,
				"submatrix covers no variables").OnSubmatrix(s)
		}

		offset := v.matrixToVariableIndex[sub.MatrixIndex]
		v.variableRanges[s] = [2]int{offset + startIndex, offset + endIndex}
		v.fullRowSpan[s] = sub.RowOffset == 0 &&
			sub.NumRows == comp.Matrices[sub.MatrixIndex].NumRows
	}
	return nil
}

func (v *Variables) computeVariableToMatrix(comp *computation.Computation) error {
	v.variableToMatrix = make([]int, v.numVariables)
	for i := range v.variableToMatrix {
		v.variableToMatrix[i] = -1
	}
	for s := 1; s < len(comp.Submatrices); s++ {
		matrixIndex := comp.Submatrices[s].MatrixIndex
		for vi := v.variableRanges[s][0]; vi < v.variableRanges[s][1]; vi++ {
			if v.variableToMatrix[vi] != -1 && v.variableToMatrix[vi] != matrixIndex {
				return errors.Newf(errors.CodeInternalInconsistency,
					"variable claimed by matrices m%d and m%d",
					v.variableToMatrix[vi], matrixIndex).OnVariable(vi)
			}
			v.variableToMatrix[vi] = matrixIndex
		}
	}
	// Variables not covered by any submatrix still belong to the matrix
	// whose index range they fall in.
	for m := 1; m < len(comp.Matrices); m++ {
		for vi := v.matrixToVariableIndex[m]; vi < v.matrixToVariableIndex[m+1]; vi++ {
			if v.variableToMatrix[vi] == -1 {
				v.variableToMatrix[vi] = m
			} else if v.variableToMatrix[vi] != m {
				return errors.Newf(errors.CodeInternalInconsistency,
					"variable range of m%d overlaps m%d",
					m, v.variableToMatrix[vi]).OnVariable(vi)
			}
		}
	}
	return nil
}

func (v *Variables) computeSubmatrixInfo(comp *computation.Computation) {
	numSubmatrices := len(comp.Submatrices)
	v.submatrixToMatrix = make([]int, numSubmatrices)
	v.submatrixIsWholeMatrix = make([]bool, numSubmatrices)
	for s := 1; s < numSubmatrices; s++ {
		v.submatrixToMatrix[s] = comp.Submatrices[s].MatrixIndex
		v.submatrixIsWholeMatrix[s] = comp.IsWholeMatrix(s)
	}
}

// NumVariables returns the size of the global variable index range.
func (v *Variables) NumVariables() int {
	return v.numVariables
}

// MatrixForVariable returns the matrix owning the given variable.
func (v *Variables) MatrixForVariable(variable int) int {
	return v.variableToMatrix[variable]
}

// AppendVariablesForSubmatrix appends the variables covered by
// submatrix s, in increasing order, to dst.
func (v *Variables) AppendVariablesForSubmatrix(s int, dst []int) []int {
	for vi := v.variableRanges[s][0]; vi < v.variableRanges[s][1]; vi++ {
		dst = append(dst, vi)
	}
	return dst
}

// AppendVariablesForMatrix appends all variables owned by matrix m, in
// increasing order, to dst.
func (v *Variables) AppendVariablesForMatrix(m int, dst []int) []int {
	for vi := v.matrixToVariableIndex[m]; vi < v.matrixToVariableIndex[m+1]; vi++ {
		dst = append(dst, vi)
	}
	return dst
}

// RecordSubmatrixAccess appends the variable-, submatrix- and
// matrix-level effects of accessing submatrix s with the given kind to
// attr. A write through a submatrix that does not span all rows of its
// matrix leaves untouched rows of each variable intact, so it is
// recorded as a read of those variables as well; the same promotion
// applies at matrix granularity for a submatrix that is not the whole
// matrix. Submatrix 0 is a no-op.
func (v *Variables) RecordSubmatrixAccess(s int, kind AccessKind, attr *CommandAttributes) {
	if s == 0 {
		return
	}
	matrixIndex := v.submatrixToMatrix[s]
	switch kind {
	case ReadAccess:
		attr.VariablesRead = v.AppendVariablesForSubmatrix(s, attr.VariablesRead)
		attr.SubmatricesRead = append(attr.SubmatricesRead, s)
		attr.MatricesRead = append(attr.MatricesRead, matrixIndex)
	case WriteAccess:
		attr.VariablesWritten = v.AppendVariablesForSubmatrix(s, attr.VariablesWritten)
		attr.SubmatricesWritten = append(attr.SubmatricesWritten, s)
		attr.MatricesWritten = append(attr.MatricesWritten, matrixIndex)
		if !v.fullRowSpan[s] {
			attr.VariablesRead = v.AppendVariablesForSubmatrix(s, attr.VariablesRead)
		}
		if !v.submatrixIsWholeMatrix[s] {
			attr.MatricesRead = append(attr.MatricesRead, matrixIndex)
		}
	case ReadWriteAccess:
		attr.VariablesRead = v.AppendVariablesForSubmatrix(s, attr.VariablesRead)
		attr.VariablesWritten = v.AppendVariablesForSubmatrix(s, attr.VariablesWritten)
		attr.SubmatricesRead = append(attr.SubmatricesRead, s)
		attr.SubmatricesWritten = append(attr.SubmatricesWritten, s)
		attr.MatricesRead = append(attr.MatricesRead, matrixIndex)
		attr.MatricesWritten = append(attr.MatricesWritten, matrixIndex)
	}
}
