package analysis

import (
	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// CommandAttributes lists the storage a single command touches, at
// variable, submatrix and matrix granularity. Each slice is sorted and
// deduplicated once the command has been classified.
type CommandAttributes struct {
	VariablesRead    []int
	VariablesWritten []int

	SubmatricesRead    []int
	SubmatricesWritten []int

	MatricesRead    []int
	MatricesWritten []int

	// HasSideEffects marks commands whose effect is not representable
	// as a submatrix write, e.g. parameter-gradient accumulation by an
	// updatable operator's backward pass. Such commands must not be
	// reordered or eliminated.
	HasSideEffects bool
}

// submatrixIndexesOfTable extracts the distinct submatrices referenced
// by an indexes-multi table, skipping sentinel entries. The result is
// sorted and deduplicated.
func submatrixIndexesOfTable(pairs []computation.SubmatrixRow) []int {
	var out []int
	cur := computation.NoSource
	for _, p := range pairs {
		if p.Submatrix != computation.NoSource && p.Submatrix != cur {
			cur = p.Submatrix
			out = append(out, p.Submatrix)
		}
	}
	return sortAndUniq(out)
}

// ComputeCommandAttributes classifies every command of the computation
// into its read/write sets, one forward pass over the command list.
func ComputeCommandAttributes(
	net computation.Network,
	comp *computation.Computation,
	vars *Variables,
) ([]CommandAttributes, error) {
	attributes := make([]CommandAttributes, len(comp.Commands))
	for ci, cmd := range comp.Commands {
		attr := &attributes[ci]
		switch cmd.Kind {
		case computation.AllocZeroed:
			attr.VariablesWritten = vars.AppendVariablesForMatrix(cmd.Arg1, attr.VariablesWritten)
			attr.MatricesWritten = append(attr.MatricesWritten, cmd.Arg1)

		case computation.AllocUndefined:
			// Content is undefined, so nothing is written.

		case computation.Dealloc:
			// Nothing read or written.

		case computation.Propagate:
			vars.RecordSubmatrixAccess(cmd.Arg3, ReadAccess, attr)
			if net.Operator(cmd.Arg1).Properties.Has(computation.AddsToOutput) {
				vars.RecordSubmatrixAccess(cmd.Arg4, ReadWriteAccess, attr)
			} else {
				vars.RecordSubmatrixAccess(cmd.Arg4, WriteAccess, attr)
			}

		case computation.StoreStats:
			vars.RecordSubmatrixAccess(cmd.Arg2, ReadAccess, attr)

		case computation.Backprop:
			op, ok := net.OperatorForNode(cmd.Arg1)
			if !ok {
				return nil, errors.Newf(errors.CodeIndexOutOfRange,
					"backprop on node n%d which has no operator", cmd.Arg1).AtCommand(ci)
			}
			props := net.Operator(op).Properties
			vars.RecordSubmatrixAccess(cmd.Arg3, ReadAccess, attr)
			vars.RecordSubmatrixAccess(cmd.Arg4, ReadAccess, attr)
			vars.RecordSubmatrixAccess(cmd.Arg5, ReadAccess, attr)
			if props.Has(computation.AddsToInputDeriv) {
				vars.RecordSubmatrixAccess(cmd.Arg6, ReadWriteAccess, attr)
			} else {
				vars.RecordSubmatrixAccess(cmd.Arg6, WriteAccess, attr)
			}
			if props.Has(computation.Updatable) {
				attr.HasSideEffects = true
			}

		case computation.MatrixCopy:
			vars.RecordSubmatrixAccess(cmd.Arg1, WriteAccess, attr)
			vars.RecordSubmatrixAccess(cmd.Arg2, ReadAccess, attr)

		case computation.MatrixAdd, computation.AddRows:
			vars.RecordSubmatrixAccess(cmd.Arg1, ReadWriteAccess, attr)
			vars.RecordSubmatrixAccess(cmd.Arg2, ReadAccess, attr)

		case computation.CopyRows:
			// A NoSource entry leaves that destination row's old content
			// in place, which makes the result depend on the prior value.
			indexes := comp.Indexes[cmd.Arg3]
			hasGap := false
			for _, idx := range indexes {
				if idx == computation.NoSource {
					hasGap = true
					break
				}
			}
			if hasGap {
				vars.RecordSubmatrixAccess(cmd.Arg1, ReadWriteAccess, attr)
			} else {
				vars.RecordSubmatrixAccess(cmd.Arg1, WriteAccess, attr)
			}
			vars.RecordSubmatrixAccess(cmd.Arg2, ReadAccess, attr)

		case computation.AddRowsMulti:
			vars.RecordSubmatrixAccess(cmd.Arg1, ReadWriteAccess, attr)
			for _, s := range submatrixIndexesOfTable(comp.IndexesMulti[cmd.Arg2]) {
				vars.RecordSubmatrixAccess(s, ReadAccess, attr)
			}

		case computation.CopyRowsMulti:
			// Rows with a sentinel entry are zero-filled by this command,
			// so the destination is a pure write despite the gaps.
			vars.RecordSubmatrixAccess(cmd.Arg1, WriteAccess, attr)
			for _, s := range submatrixIndexesOfTable(comp.IndexesMulti[cmd.Arg2]) {
				vars.RecordSubmatrixAccess(s, ReadAccess, attr)
			}

		case computation.AddToRowsMulti, computation.CopyToRowsMulti:
			vars.RecordSubmatrixAccess(cmd.Arg1, ReadAccess, attr)
			// Row coverage of each destination cannot be proven complete,
			// so the destinations are conservatively read-write.
			for _, s := range submatrixIndexesOfTable(comp.IndexesMulti[cmd.Arg2]) {
				vars.RecordSubmatrixAccess(s, ReadWriteAccess, attr)
			}

		case computation.AddRowRanges:
			vars.RecordSubmatrixAccess(cmd.Arg1, ReadWriteAccess, attr)
			vars.RecordSubmatrixAccess(cmd.Arg2, ReadAccess, attr)

		case computation.NoOp, computation.NoOpMarker:

		default:
			return nil, errors.Newf(errors.CodeUnknownCommandKind,
				"unknown command kind %v", cmd.Kind).AtCommand(ci)
		}

		attr.VariablesRead = sortAndUniq(attr.VariablesRead)
		attr.VariablesWritten = sortAndUniq(attr.VariablesWritten)
		attr.SubmatricesRead = sortAndUniq(attr.SubmatricesRead)
		attr.SubmatricesWritten = sortAndUniq(attr.SubmatricesWritten)
		attr.MatricesRead = sortAndUniq(attr.MatricesRead)
		attr.MatricesWritten = sortAndUniq(attr.MatricesWritten)
	}
	return attributes, nil
}
