package analysis

import (
	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// NoCommand marks a missing allocation or deallocation command.
const NoCommand = -1

// Access is one entry of an access log: the command index and the
// combined effect that command had on the logged entity.
type Access struct {
	Command int
	Kind    AccessKind
}

// MatrixAccesses is the chronological access log of one matrix plus its
// lifecycle bookkeeping.
type MatrixAccesses struct {
	// Accesses is ordered by ascending command index. Allocation and
	// deallocation commands do not appear in it.
	Accesses []Access

	AllocateCommand   int
	DeallocateCommand int

	IsInput  bool
	IsOutput bool
}

// mergeAccesses classifies each entity in the union of a sorted read
// set and a sorted write set and appends Access entries for command c
// through emit.
func mergeAccesses(read, written []int, c int, emit func(entity int, a Access)) {
	all := make([]int, 0, len(read)+len(written))
	all = append(all, read...)
	all = append(all, written...)
	all = sortAndUniq(all)
	for _, entity := range all {
		isRead := containsSorted(read, entity)
		isWritten := !isRead || containsSorted(written, entity)
		switch {
		case isRead && isWritten:
			emit(entity, Access{Command: c, Kind: ReadWriteAccess})
		case isRead:
			emit(entity, Access{Command: c, Kind: ReadAccess})
		default:
			emit(entity, Access{Command: c, Kind: WriteAccess})
		}
	}
}

// ComputeVariableAccesses inverts the per-command attribute sets into
// one chronological access log per variable. Logs are built by a single
// forward pass over the commands, so ordering is automatic.
func ComputeVariableAccesses(vars *Variables, attributes []CommandAttributes) [][]Access {
	accesses := make([][]Access, vars.NumVariables())
	for c, attr := range attributes {
		mergeAccesses(attr.VariablesRead, attr.VariablesWritten, c,
			func(v int, a Access) {
				accesses[v] = append(accesses[v], a)
			})
	}
	return accesses
}

// ComputeMatrixAccesses builds the per-matrix access logs, records each
// matrix's allocation and deallocation commands, and marks matrices as
// program inputs or outputs from the computation's boundary-node
// mapping.
func ComputeMatrixAccesses(
	net computation.Network,
	comp *computation.Computation,
	attributes []CommandAttributes,
) ([]MatrixAccesses, error) {
	accesses := make([]MatrixAccesses, len(comp.Matrices))
	for m := range accesses {
		accesses[m].AllocateCommand = NoCommand
		accesses[m].DeallocateCommand = NoCommand
	}

	for c, attr := range attributes {
		mergeAccesses(attr.MatricesRead, attr.MatricesWritten, c,
			func(m int, a Access) {
				accesses[m].Accesses = append(accesses[m].Accesses, a)
			})

		cmd := comp.Commands[c]
		switch cmd.Kind {
		case computation.AllocZeroed, computation.AllocUndefined:
			if accesses[cmd.Arg1].AllocateCommand != NoCommand {
				return nil, errors.Newf(errors.CodeLifetimeViolation,
					"matrix m%d initialized twice", cmd.Arg1).
					AtCommand(c).OnMatrix(cmd.Arg1)
			}
			accesses[cmd.Arg1].AllocateCommand = c
		case computation.Dealloc:
			if accesses[cmd.Arg1].DeallocateCommand != NoCommand {
				return nil, errors.Newf(errors.CodeLifetimeViolation,
					"matrix m%d destroyed twice", cmd.Arg1).
					AtCommand(c).OnMatrix(cmd.Arg1)
			}
			accesses[cmd.Arg1].DeallocateCommand = c
		}
	}

	// Boundary nodes mark matrices as inputs and outputs. Derivatives
	// flow against the values: the derivative of an input is an output
	// of the computation, and the derivative of an output is an input.
	for node, io := range comp.IOInfo {
		if io.ValueMatrix <= 0 || io.ValueMatrix >= len(comp.Matrices) {
			return nil, errors.Newf(errors.CodeIndexOutOfRange,
				"value matrix of node n%d out of range", node).OnMatrix(io.ValueMatrix)
		}
		switch {
		case net.IsInputNode(node):
			if accesses[io.ValueMatrix].IsInput {
				return nil, errors.Newf(errors.CodeStructuralViolation,
					"matrix m%d marked input twice", io.ValueMatrix).OnMatrix(io.ValueMatrix)
			}
			accesses[io.ValueMatrix].IsInput = true
			if io.DerivMatrix != 0 {
				if accesses[io.DerivMatrix].IsOutput {
					return nil, errors.Newf(errors.CodeStructuralViolation,
						"matrix m%d marked output twice", io.DerivMatrix).OnMatrix(io.DerivMatrix)
				}
				accesses[io.DerivMatrix].IsOutput = true
			}
		case net.IsOutputNode(node):
			if accesses[io.ValueMatrix].IsOutput {
				return nil, errors.Newf(errors.CodeStructuralViolation,
					"matrix m%d marked output twice", io.ValueMatrix).OnMatrix(io.ValueMatrix)
			}
			accesses[io.ValueMatrix].IsOutput = true
			if io.DerivMatrix != 0 {
				if accesses[io.DerivMatrix].IsInput {
					return nil, errors.Newf(errors.CodeStructuralViolation,
						"matrix m%d marked input twice", io.DerivMatrix).OnMatrix(io.DerivMatrix)
				}
				accesses[io.DerivMatrix].IsInput = true
			}
		default:
			return nil, errors.Newf(errors.CodeStructuralViolation,
				"boundary node n%d is neither input nor output", node)
		}
	}
	return accesses, nil
}
