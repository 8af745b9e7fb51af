package analysis

import (
	"fmt"
	"io"
)

// PrintMatrixAccesses writes one line per matrix listing its lifecycle
// commands and chronological accesses. Debug surface only.
func PrintMatrixAccesses(w io.Writer, matrixAccesses []MatrixAccesses) {
	for m := 1; m < len(matrixAccesses); m++ {
		a := matrixAccesses[m]
		fmt.Fprintf(w, "m%d: init-command=%d, destroy-command=%d, accesses=",
			m, a.AllocateCommand, a.DeallocateCommand)
		for _, access := range a.Accesses {
			fmt.Fprintf(w, "c%d(%s) ", access.Command, access.Kind)
		}
		fmt.Fprintln(w)
	}
}

// PrintCommandAttributes writes one line per command listing the
// variables and matrices it reads and writes.
func PrintCommandAttributes(w io.Writer, attributes []CommandAttributes) {
	for c, attr := range attributes {
		fmt.Fprintf(w, "c%d: ", c)
		printIDSet(w, "r", "v", attr.VariablesRead)
		printIDSet(w, "w", "v", attr.VariablesWritten)
		printIDSet(w, "r", "m", attr.MatricesRead)
		printIDSet(w, "w", "m", attr.MatricesWritten)
		fmt.Fprintln(w)
	}
}

func printIDSet(w io.Writer, tag, prefix string, ids []int) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(w, "%s(", tag)
	for i, id := range ids {
		if i > 0 {
			fmt.Fprint(w, ",")
		}
		fmt.Fprintf(w, "%s%d", prefix, id)
	}
	fmt.Fprint(w, ") ")
}
