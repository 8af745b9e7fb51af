package computation

import "fmt"

// CommandKind tags one IR instruction. The set is closed: the attribute
// extractor and the checker both switch exhaustively over it, so a new
// kind is a compile-time obligation in those packages.
type CommandKind int

const (
	// AllocZeroed allocates Arg1's storage and zero-fills it.
	AllocZeroed CommandKind = iota
	// AllocUndefined allocates Arg1's storage with undefined content.
	AllocUndefined
	// Dealloc releases Arg1's storage.
	Dealloc
	// Propagate applies operator Arg1 forward with precomputed-indexes
	// Arg2, input submatrix Arg3 and output submatrix Arg4.
	Propagate
	// StoreStats lets operator Arg1 accumulate statistics from
	// submatrix Arg2.
	StoreStats
	// Backprop applies the operator of node Arg1 backward:
	// precomputed-indexes Arg2, input Arg3, output Arg4, output
	// derivative Arg5, input derivative Arg6.
	Backprop
	// MatrixCopy copies submatrix Arg2 into Arg1.
	MatrixCopy
	// MatrixAdd adds submatrix Arg2 into Arg1.
	MatrixAdd
	// AddRows adds rows of Arg2, gathered through direct index list
	// Arg3, into the rows of Arg1.
	AddRows
	// CopyRows copies rows of Arg2, gathered through direct index list
	// Arg3, into the rows of Arg1. Rows whose index is NoSource keep
	// their old content.
	CopyRows
	// AddRowsMulti adds rows addressed by indexes-multi table Arg2
	// into the rows of Arg1.
	AddRowsMulti
	// CopyRowsMulti copies rows addressed by indexes-multi table Arg2
	// into the rows of Arg1. Rows with a sentinel entry are zero-filled.
	CopyRowsMulti
	// AddToRowsMulti scatters rows of Arg1 by addition into the
	// destinations of indexes-multi table Arg2.
	AddToRowsMulti
	// CopyToRowsMulti scatters rows of Arg1 by copy into the
	// destinations of indexes-multi table Arg2.
	CopyToRowsMulti
	// AddRowRanges accumulates, for each row of Arg1, the row range of
	// Arg2 given by row-ranges table Arg3.
	AddRowRanges
	// NoOp does nothing.
	NoOp
	// NoOpMarker does nothing; it is the single phase marker separating
	// forward-pass commands from backward-pass commands.
	NoOpMarker
)

var commandKindNames = map[CommandKind]string{
	AllocZeroed:     "alloc_zeroed",
	AllocUndefined:  "alloc_undefined",
	Dealloc:         "dealloc",
	Propagate:       "propagate",
	StoreStats:      "store_stats",
	Backprop:        "backprop",
	MatrixCopy:      "matrix_copy",
	MatrixAdd:       "matrix_add",
	AddRows:         "add_rows",
	CopyRows:        "copy_rows",
	AddRowsMulti:    "add_rows_multi",
	CopyRowsMulti:   "copy_rows_multi",
	AddToRowsMulti:  "add_to_rows_multi",
	CopyToRowsMulti: "copy_to_rows_multi",
	AddRowRanges:    "add_row_ranges",
	NoOp:            "no_op",
	NoOpMarker:      "marker",
}

func (k CommandKind) String() string {
	if name, ok := commandKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is one typed IR instruction. The meaning of the integer
// operands depends on Kind; unused operands are zero.
type Command struct {
	Kind CommandKind
	Arg1 int
	Arg2 int
	Arg3 int
	Arg4 int
	Arg5 int
	Arg6 int
}
