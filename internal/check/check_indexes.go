package check

import (
	"sort"

	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// checkIndexes validates every operand of every command: index bounds,
// shape agreement with the addressed operator, in-place reuse rules and
// the internal consistency of the auxiliary index tables.
func (c *Checker) checkIndexes() error {
	for ci, cmd := range c.comp.Commands {
		var err error
		switch cmd.Kind {
		case computation.AllocZeroed, computation.AllocUndefined, computation.Dealloc:
			err = c.checkMatrixArg(cmd.Arg1)
		case computation.Propagate:
			err = c.checkPropagate(cmd)
		case computation.StoreStats:
			err = c.checkStoreStats(cmd)
		case computation.Backprop:
			err = c.checkBackprop(cmd)
		case computation.MatrixCopy, computation.MatrixAdd:
			err = c.checkMatrixCopyAdd(cmd)
		case computation.AddRows, computation.CopyRows:
			err = c.checkRowsCommand(cmd)
		case computation.AddRowsMulti, computation.CopyRowsMulti,
			computation.AddToRowsMulti, computation.CopyToRowsMulti:
			err = c.checkMultiCommand(cmd)
		case computation.AddRowRanges:
			err = c.checkRowRanges(cmd)
		case computation.NoOp, computation.NoOpMarker:
		default:
			err = errors.Newf(errors.CodeUnknownCommandKind,
				"unknown command kind %v", cmd.Kind)
		}
		if err != nil {
			if d, ok := err.(errors.Diagnostic); ok {
				return d.AtCommand(ci)
			}
			return err
		}
	}
	return nil
}

func (c *Checker) checkMatrixArg(m int) error {
	if m < 1 || m >= len(c.comp.Matrices) {
		return errors.Newf(errors.CodeIndexOutOfRange,
			"matrix index out of range").OnMatrix(m)
	}
	return nil
}

func (c *Checker) validSubmatrix(s int) bool {
	return s >= 0 && s < len(c.comp.Submatrices)
}

func (c *Checker) checkPrecomputedIndexes(id int, props computation.Properties) error {
	if id < 0 || id > c.comp.NumPrecomputedIndexes {
		return errors.New(errors.CodeIndexOutOfRange,
			"precomputed-indexes index out of range")
	}
	if id != 0 && props.Has(computation.Simple) {
		return errors.New(errors.CodeStructuralViolation,
			"precomputed-indexes index nonzero for simple operator")
	}
	return nil
}

func (c *Checker) checkPropagate(cmd computation.Command) error {
	if cmd.Arg1 < 0 || cmd.Arg1 >= c.net.NumOperators() {
		return errors.New(errors.CodeIndexOutOfRange, "operator index out of range")
	}
	op := c.net.Operator(cmd.Arg1)
	props := op.Properties
	if err := c.checkPrecomputedIndexes(cmd.Arg2, props); err != nil {
		return err
	}
	// The input may be the null submatrix, but only for non-simple
	// operators.
	if !c.validSubmatrix(cmd.Arg3) || (cmd.Arg3 == 0 && props.Has(computation.Simple)) ||
		cmd.Arg4 < 1 || cmd.Arg4 >= len(c.comp.Submatrices) {
		return errors.New(errors.CodeIndexOutOfRange, "submatrix index out of range in propagate")
	}
	sub := c.comp.Submatrices
	if cmd.Arg3 != 0 && sub[cmd.Arg3].NumCols != op.InputDim {
		return errors.Newf(errors.CodeDimensionMismatch,
			"input-dim mismatch in propagate: got %d, operator %s wants %d",
			sub[cmd.Arg3].NumCols, op.Name, op.InputDim).OnSubmatrix(cmd.Arg3)
	}
	if sub[cmd.Arg4].NumCols != op.OutputDim {
		return errors.Newf(errors.CodeDimensionMismatch,
			"output-dim mismatch in propagate: got %d, operator %s wants %d",
			sub[cmd.Arg4].NumCols, op.Name, op.OutputDim).OnSubmatrix(cmd.Arg4)
	}
	if props.Has(computation.Simple) && sub[cmd.Arg3].NumRows != sub[cmd.Arg4].NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"num-rows mismatch in propagate for simple operator")
	}
	if !props.Has(computation.InPlaceForward) && cmd.Arg3 == cmd.Arg4 {
		return errors.New(errors.CodeStructuralViolation,
			"in-place propagate not supported by this operator").OnSubmatrix(cmd.Arg3)
	}
	return nil
}

func (c *Checker) checkStoreStats(cmd computation.Command) error {
	if cmd.Arg1 < 0 || cmd.Arg1 >= c.net.NumOperators() {
		return errors.New(errors.CodeIndexOutOfRange, "operator index out of range")
	}
	op := c.net.Operator(cmd.Arg1)
	if !op.Properties.Has(computation.StoresStats) {
		return errors.Newf(errors.CodeStructuralViolation,
			"store_stats on operator %s which does not accumulate statistics", op.Name)
	}
	if cmd.Arg2 < 1 || cmd.Arg2 >= len(c.comp.Submatrices) {
		return errors.New(errors.CodeIndexOutOfRange, "submatrix index out of range in store_stats")
	}
	if c.comp.Submatrices[cmd.Arg2].NumCols != op.OutputDim {
		return errors.New(errors.CodeDimensionMismatch,
			"dimension mismatch in store_stats").OnSubmatrix(cmd.Arg2)
	}
	return nil
}

func (c *Checker) checkBackprop(cmd computation.Command) error {
	opIndex, ok := c.net.OperatorForNode(cmd.Arg1)
	if !ok {
		return errors.New(errors.CodeIndexOutOfRange,
			"node index in backprop invalid or out of range")
	}
	op := c.net.Operator(opIndex)
	props := op.Properties
	if err := c.checkPrecomputedIndexes(cmd.Arg2, props); err != nil {
		return err
	}
	// The output derivative must be supplied; input, output and input
	// derivative may individually be null.
	if !c.validSubmatrix(cmd.Arg3) || !c.validSubmatrix(cmd.Arg4) ||
		cmd.Arg5 < 1 || cmd.Arg5 >= len(c.comp.Submatrices) ||
		!c.validSubmatrix(cmd.Arg6) {
		return errors.New(errors.CodeIndexOutOfRange, "submatrix index out of range in backprop")
	}
	if props.Has(computation.BackpropNeedsInput) && cmd.Arg3 == 0 {
		return errors.New(errors.CodeStructuralViolation,
			"backprop input needed but not supplied")
	}
	if props.Has(computation.BackpropNeedsOutput) && cmd.Arg4 == 0 {
		return errors.New(errors.CodeStructuralViolation,
			"backprop output needed but not supplied")
	}
	// With no input derivative to produce and no parameters to update,
	// the command has no effect at all.
	if cmd.Arg6 == 0 && !props.Has(computation.Updatable) {
		return errors.New(errors.CodeStructuralViolation,
			"backprop is done but has no effect")
	}
	if cmd.Arg5 == cmd.Arg6 && !props.Has(computation.InPlaceBackward) {
		return errors.New(errors.CodeStructuralViolation,
			"in-place backprop not supported by this operator").OnSubmatrix(cmd.Arg5)
	}
	sub := c.comp.Submatrices
	if cmd.Arg3 != 0 && sub[cmd.Arg3].NumCols != op.InputDim {
		return errors.New(errors.CodeDimensionMismatch,
			"input-dim mismatch in backprop").OnSubmatrix(cmd.Arg3)
	}
	if cmd.Arg4 != 0 && sub[cmd.Arg4].NumCols != op.OutputDim {
		return errors.New(errors.CodeDimensionMismatch,
			"output-dim mismatch in backprop").OnSubmatrix(cmd.Arg4)
	}
	if sub[cmd.Arg5].NumCols != op.OutputDim {
		return errors.New(errors.CodeDimensionMismatch,
			"output-dim mismatch in backprop").OnSubmatrix(cmd.Arg5)
	}
	if cmd.Arg6 != 0 && sub[cmd.Arg6].NumCols != op.InputDim {
		return errors.New(errors.CodeDimensionMismatch,
			"input-dim mismatch in backprop").OnSubmatrix(cmd.Arg6)
	}
	if cmd.Arg3 != 0 && cmd.Arg6 != 0 &&
		sub[cmd.Arg3].NumRows != sub[cmd.Arg6].NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"num-rows mismatch between backprop input and input derivative")
	}
	if cmd.Arg4 != 0 && sub[cmd.Arg4].NumRows != sub[cmd.Arg5].NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"num-rows mismatch between backprop output and output derivative")
	}
	if props.Has(computation.Simple) && cmd.Arg6 != 0 &&
		sub[cmd.Arg5].NumRows != sub[cmd.Arg6].NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"num-rows mismatch between backprop derivatives for simple operator")
	}
	return nil
}

func (c *Checker) checkMatrixCopyAdd(cmd computation.Command) error {
	if cmd.Arg1 < 1 || cmd.Arg1 >= len(c.comp.Submatrices) ||
		cmd.Arg2 < 1 || cmd.Arg2 >= len(c.comp.Submatrices) {
		return errors.New(errors.CodeIndexOutOfRange,
			"submatrix index out of range in matrix copy/add")
	}
	dst, src := c.comp.Submatrices[cmd.Arg1], c.comp.Submatrices[cmd.Arg2]
	if dst.NumRows != src.NumRows || dst.NumCols != src.NumCols {
		return errors.New(errors.CodeDimensionMismatch,
			"shape mismatch in matrix copy/add")
	}
	if cmd.Arg1 == cmd.Arg2 {
		return errors.New(errors.CodeStructuralViolation,
			"copying/adding a submatrix to itself").OnSubmatrix(cmd.Arg1)
	}
	return nil
}

func (c *Checker) checkRowsCommand(cmd computation.Command) error {
	if cmd.Arg1 < 1 || cmd.Arg1 >= len(c.comp.Submatrices) ||
		cmd.Arg2 < 1 || cmd.Arg2 >= len(c.comp.Submatrices) ||
		cmd.Arg3 < 0 || cmd.Arg3 >= len(c.comp.Indexes) {
		return errors.New(errors.CodeIndexOutOfRange,
			"index out of range in add-rows/copy-rows")
	}
	dst, src := c.comp.Submatrices[cmd.Arg1], c.comp.Submatrices[cmd.Arg2]
	indexes := c.comp.Indexes[cmd.Arg3]
	if len(indexes) != dst.NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"index list size does not match destination rows in add-rows/copy-rows")
	}
	if dst.NumCols != src.NumCols {
		return errors.New(errors.CodeDimensionMismatch,
			"dimension mismatch in add-rows/copy-rows")
	}
	for _, idx := range indexes {
		if idx < computation.NoSource || idx >= src.NumRows {
			return errors.Newf(errors.CodeIndexOutOfRange,
				"row index %d out of range in add-rows/copy-rows", idx)
		}
	}
	if cmd.Arg1 == cmd.Arg2 {
		return errors.New(errors.CodeStructuralViolation,
			"copying a submatrix to itself in add-rows/copy-rows").OnSubmatrix(cmd.Arg1)
	}
	return nil
}

func (c *Checker) checkMultiCommand(cmd computation.Command) error {
	if cmd.Arg1 < 1 || cmd.Arg1 >= len(c.comp.Submatrices) ||
		cmd.Arg2 < 0 || cmd.Arg2 >= len(c.comp.IndexesMulti) {
		return errors.New(errors.CodeIndexOutOfRange,
			"index out of range in rows-multi command")
	}
	pairs := c.comp.IndexesMulti[cmd.Arg2]
	base := c.comp.Submatrices[cmd.Arg1]
	if len(pairs) != base.NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"table size does not match submatrix rows in rows-multi command")
	}
	for _, p := range pairs {
		if p.Submatrix == computation.NoSource {
			if p.Row != computation.NoSource {
				return errors.Newf(errors.CodeStructuralViolation,
					"expected sentinel row with sentinel submatrix, got row %d", p.Row)
			}
			continue
		}
		if p.Submatrix < 1 || p.Submatrix >= len(c.comp.Submatrices) {
			return errors.New(errors.CodeIndexOutOfRange,
				"submatrix index out of range in indexes-multi table")
		}
		if p.Row < 0 || p.Row >= c.comp.Submatrices[p.Submatrix].NumRows {
			return errors.Newf(errors.CodeIndexOutOfRange,
				"row index %d out of range in indexes-multi table", p.Row).
				OnSubmatrix(p.Submatrix)
		}
		if p.Submatrix == cmd.Arg1 {
			return errors.New(errors.CodeStructuralViolation,
				"submatrix references itself in rows-multi command").OnSubmatrix(cmd.Arg1)
		}
		if c.comp.Submatrices[p.Submatrix].NumCols != base.NumCols {
			return errors.New(errors.CodeDimensionMismatch,
				"dimension mismatch in rows-multi command").OnSubmatrix(p.Submatrix)
		}
	}
	if cmd.Kind == computation.AddToRowsMulti || cmd.Kind == computation.CopyToRowsMulti {
		// Duplicate destinations would mean concurrent accumulation
		// into the same row, which the execution kernels do not allow.
		if dup, ok := firstDuplicatePair(pairs); ok {
			return errors.Newf(errors.CodeStructuralViolation,
				"duplicate destination (s%d, %d) in scatter command",
				dup.Submatrix, dup.Row).OnSubmatrix(dup.Submatrix)
		}
	}
	return nil
}

func firstDuplicatePair(pairs []computation.SubmatrixRow) (computation.SubmatrixRow, bool) {
	sorted := make([]computation.SubmatrixRow, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Submatrix != sorted[j].Submatrix {
			return sorted[i].Submatrix < sorted[j].Submatrix
		}
		return sorted[i].Row < sorted[j].Row
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] && !sorted[i].IsSentinel() {
			return sorted[i], true
		}
	}
	return computation.SubmatrixRow{}, false
}

func (c *Checker) checkRowRanges(cmd computation.Command) error {
	if cmd.Arg1 < 1 || cmd.Arg1 >= len(c.comp.Submatrices) ||
		cmd.Arg2 < 1 || cmd.Arg2 >= len(c.comp.Submatrices) ||
		cmd.Arg3 < 0 || cmd.Arg3 >= len(c.comp.IndexesRanges) {
		return errors.New(errors.CodeIndexOutOfRange,
			"index out of range in add-row-ranges")
	}
	dst, src := c.comp.Submatrices[cmd.Arg1], c.comp.Submatrices[cmd.Arg2]
	ranges := c.comp.IndexesRanges[cmd.Arg3]
	if len(ranges) != dst.NumRows {
		return errors.New(errors.CodeDimensionMismatch,
			"range table size does not match destination rows in add-row-ranges")
	}
	if dst.NumCols != src.NumCols {
		return errors.New(errors.CodeDimensionMismatch,
			"dimension mismatch in add-row-ranges")
	}
	for _, r := range ranges {
		// Sentinels are not allowed here; the empty range is a valid
		// index repeated, i.e. Begin == End.
		if r.Begin < 0 || r.End < r.Begin || r.End > src.NumRows {
			return errors.Newf(errors.CodeStructuralViolation,
				"row range (%d, %d) invalid in add-row-ranges", r.Begin, r.End)
		}
	}
	return nil
}
