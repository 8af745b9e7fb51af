package computation

import (
	"fmt"
	"io"
)

// Print writes a human-readable listing of the computation. The format
// is a best-effort debug surface, not a contract.
func (c *Computation) Print(w io.Writer) {
	for m := 1; m < len(c.Matrices); m++ {
		fmt.Fprintf(w, "matrix m%d: %d x %d\n", m, c.Matrices[m].NumRows, c.Matrices[m].NumCols)
	}
	for s := 1; s < len(c.Submatrices); s++ {
		sub := c.Submatrices[s]
		fmt.Fprintf(w, "submatrix s%d = m%d[%d:%d, %d:%d]\n", s, sub.MatrixIndex,
			sub.RowOffset, sub.RowOffset+sub.NumRows,
			sub.ColOffset, sub.ColOffset+sub.NumCols)
	}
	for ci, cmd := range c.Commands {
		fmt.Fprintf(w, "c%d: %s\n", ci, commandString(cmd))
	}
}

func commandString(cmd Command) string {
	switch cmd.Kind {
	case AllocZeroed, AllocUndefined, Dealloc:
		return fmt.Sprintf("%s m%d", cmd.Kind, cmd.Arg1)
	case Propagate:
		return fmt.Sprintf("propagate op%d, %d, s%d, s%d", cmd.Arg1, cmd.Arg2, cmd.Arg3, cmd.Arg4)
	case StoreStats:
		return fmt.Sprintf("store_stats op%d, s%d", cmd.Arg1, cmd.Arg2)
	case Backprop:
		return fmt.Sprintf("backprop n%d, %d, s%d, s%d, s%d, s%d",
			cmd.Arg1, cmd.Arg2, cmd.Arg3, cmd.Arg4, cmd.Arg5, cmd.Arg6)
	case MatrixCopy, MatrixAdd:
		return fmt.Sprintf("%s s%d, s%d", cmd.Kind, cmd.Arg1, cmd.Arg2)
	case AddRows, CopyRows:
		return fmt.Sprintf("%s s%d, s%d, i%d", cmd.Kind, cmd.Arg1, cmd.Arg2, cmd.Arg3)
	case AddRowsMulti, CopyRowsMulti, AddToRowsMulti, CopyToRowsMulti:
		return fmt.Sprintf("%s s%d, x%d", cmd.Kind, cmd.Arg1, cmd.Arg2)
	case AddRowRanges:
		return fmt.Sprintf("add_row_ranges s%d, s%d, r%d", cmd.Arg1, cmd.Arg2, cmd.Arg3)
	default:
		return cmd.Kind.String()
	}
}
