// Package parser turns computation-format source into an immutable
// computation plus its operator table, resolving declared names to the
// dense indices the analysis works with.
package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"

	"nnetcheck/grammar"
	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

var propertyNames = map[string]computation.Properties{
	"simple":                computation.Simple,
	"in_place_forward":      computation.InPlaceForward,
	"in_place_backward":     computation.InPlaceBackward,
	"backprop_needs_input":  computation.BackpropNeedsInput,
	"backprop_needs_output": computation.BackpropNeedsOutput,
	"adds_to_output":        computation.AddsToOutput,
	"adds_to_input_deriv":   computation.AddsToInputDeriv,
	"updatable":             computation.Updatable,
	"stores_stats":          computation.StoresStats,
}

var commandKinds = map[string]computation.CommandKind{
	"alloc_zeroed":       computation.AllocZeroed,
	"alloc_undefined":    computation.AllocUndefined,
	"dealloc":            computation.Dealloc,
	"propagate":          computation.Propagate,
	"store_stats":        computation.StoreStats,
	"backprop":           computation.Backprop,
	"matrix_copy":        computation.MatrixCopy,
	"matrix_add":         computation.MatrixAdd,
	"add_rows":           computation.AddRows,
	"copy_rows":          computation.CopyRows,
	"add_rows_multi":     computation.AddRowsMulti,
	"copy_rows_multi":    computation.CopyRowsMulti,
	"add_to_rows_multi":  computation.AddToRowsMulti,
	"copy_to_rows_multi": computation.CopyToRowsMulti,
	"add_row_ranges":     computation.AddRowRanges,
	"no_op":              computation.NoOp,
	"marker":             computation.NoOpMarker,
}

// operandKind says how one positional argument of a command statement
// is resolved.
type operandKind int

const (
	operandMatrix operandKind = iota
	operandSubmatrix
	operandOperator
	operandInt
	operandIndexes
	operandMulti
	operandRanges
)

var signatures = map[computation.CommandKind][]operandKind{
	computation.AllocZeroed:     {operandMatrix},
	computation.AllocUndefined:  {operandMatrix},
	computation.Dealloc:         {operandMatrix},
	computation.Propagate:       {operandOperator, operandInt, operandSubmatrix, operandSubmatrix},
	computation.StoreStats:      {operandOperator, operandSubmatrix},
	computation.Backprop:        {operandInt, operandInt, operandSubmatrix, operandSubmatrix, operandSubmatrix, operandSubmatrix},
	computation.MatrixCopy:      {operandSubmatrix, operandSubmatrix},
	computation.MatrixAdd:       {operandSubmatrix, operandSubmatrix},
	computation.AddRows:         {operandSubmatrix, operandSubmatrix, operandIndexes},
	computation.CopyRows:        {operandSubmatrix, operandSubmatrix, operandIndexes},
	computation.AddRowsMulti:    {operandSubmatrix, operandMulti},
	computation.CopyRowsMulti:   {operandSubmatrix, operandMulti},
	computation.AddToRowsMulti:  {operandSubmatrix, operandMulti},
	computation.CopyToRowsMulti: {operandSubmatrix, operandMulti},
	computation.AddRowRanges:    {operandSubmatrix, operandSubmatrix, operandRanges},
	computation.NoOp:            {},
	computation.NoOpMarker:      {},
}

type resolver struct {
	comp  *computation.Computation
	table *computation.OperatorTable

	operators   map[string]int
	matrices    map[string]int
	submatrices map[string]int
	indexes     map[string]int
	multis      map[string]int
	ranges      map[string]int
}

// Parse parses and resolves computation-format source. On failure the
// returned diagnostic carries the source position of the defect.
func Parse(filename, source string) (*computation.Computation, *computation.OperatorTable, error) {
	file, err := grammar.ParseString(filename, source)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			return nil, nil, errors.Newf(errors.CodeParseError, "%s", pe.Message()).
				AtPosition(pe.Position().Line, pe.Position().Column)
		}
		return nil, nil, errors.Newf(errors.CodeParseError, "%v", err)
	}

	r := &resolver{
		comp: &computation.Computation{
			// Index 0 is the null matrix and null submatrix.
			Matrices:    []computation.Matrix{{}},
			Submatrices: []computation.Submatrix{{}},
			IOInfo:      map[int]computation.IOPair{},
		},
		table:       &computation.OperatorTable{},
		operators:   map[string]int{},
		matrices:    map[string]int{},
		submatrices: map[string]int{},
		indexes:     map[string]int{},
		multis:      map[string]int{},
		ranges:      map[string]int{},
	}
	if err := r.resolveNetwork(file.Network); err != nil {
		return nil, nil, err
	}
	if err := r.resolveComputation(file.Computation); err != nil {
		return nil, nil, err
	}
	return r.comp, r.table, nil
}

func (r *resolver) resolveNetwork(section *grammar.NetworkSection) error {
	for _, item := range section.Items {
		switch {
		case item.Operator != nil:
			decl := item.Operator
			if _, exists := r.operators[decl.Name]; exists {
				return errorAt(decl.Pos, errors.CodeParseError,
					"operator %q declared twice", decl.Name)
			}
			var props computation.Properties
			for _, name := range decl.Props {
				p, ok := propertyNames[name]
				if !ok {
					return errorAt(decl.Pos, errors.CodeParseError,
						"unknown operator property %q", name)
				}
				props |= p
			}
			r.operators[decl.Name] = len(r.table.Operators)
			r.table.Operators = append(r.table.Operators, computation.OperatorInfo{
				Name:       decl.Name,
				InputDim:   decl.In,
				OutputDim:  decl.Out,
				Properties: props,
			})
		case item.Node != nil:
			decl := item.Node
			if decl.ID != len(r.table.Nodes) {
				return errorAt(decl.Pos, errors.CodeParseError,
					"node ids must be declared in order; expected %d, got %d",
					len(r.table.Nodes), decl.ID)
			}
			node := computation.Node{}
			switch decl.Kind {
			case "input":
				node.Kind = computation.InputNode
			case "output":
				node.Kind = computation.OutputNode
			case "operator":
				op, ok := r.operators[decl.Operator]
				if !ok {
					return errorAt(decl.Pos, errors.CodeUndefinedName,
						"undefined operator %q", decl.Operator)
				}
				node.Kind = computation.OperatorNode
				node.Operator = op
			}
			r.table.Nodes = append(r.table.Nodes, node)
		}
	}
	return nil
}

func (r *resolver) resolveComputation(section *grammar.ComputationSection) error {
	for _, item := range section.Items {
		var err error
		switch {
		case item.Matrix != nil:
			err = r.resolveMatrix(item.Matrix)
		case item.Submatrix != nil:
			err = r.resolveSubmatrix(item.Submatrix)
		case item.Indexes != nil:
			err = define(r.indexes, item.Indexes.Name, item.Indexes.Pos, "index list",
				&r.comp.Indexes, item.Indexes.Values)
		case item.Multi != nil:
			err = r.resolveMulti(item.Multi)
		case item.Ranges != nil:
			err = r.resolveRanges(item.Ranges)
		case item.Precomputed != nil:
			r.comp.NumPrecomputedIndexes = item.Precomputed.Count
		case item.IO != nil:
			err = r.resolveIO(item.IO)
		case item.Command != nil:
			err = r.resolveCommand(item.Command)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveMatrix(decl *grammar.MatrixDecl) error {
	if _, exists := r.matrices[decl.Name]; exists {
		return errorAt(decl.Pos, errors.CodeParseError, "matrix %q declared twice", decl.Name)
	}
	r.matrices[decl.Name] = len(r.comp.Matrices)
	r.comp.Matrices = append(r.comp.Matrices, computation.Matrix{
		NumRows: decl.NumRows,
		NumCols: decl.NumCols,
	})
	return nil
}

func (r *resolver) resolveSubmatrix(decl *grammar.SubmatrixDecl) error {
	if _, exists := r.submatrices[decl.Name]; exists {
		return errorAt(decl.Pos, errors.CodeParseError, "submatrix %q declared twice", decl.Name)
	}
	m, ok := r.matrices[decl.Matrix]
	if !ok {
		return errorAt(decl.Pos, errors.CodeUndefinedName, "undefined matrix %q", decl.Matrix)
	}
	if decl.RowEnd < decl.RowBegin || decl.ColEnd < decl.ColBegin ||
		decl.RowBegin < 0 || decl.ColBegin < 0 ||
		decl.RowEnd > r.comp.Matrices[m].NumRows ||
		decl.ColEnd > r.comp.Matrices[m].NumCols {
		return errorAt(decl.Pos, errors.CodeParseError,
			"submatrix %q window exceeds matrix %q", decl.Name, decl.Matrix)
	}
	r.submatrices[decl.Name] = len(r.comp.Submatrices)
	r.comp.Submatrices = append(r.comp.Submatrices, computation.Submatrix{
		MatrixIndex: m,
		RowOffset:   decl.RowBegin,
		NumRows:     decl.RowEnd - decl.RowBegin,
		ColOffset:   decl.ColBegin,
		NumCols:     decl.ColEnd - decl.ColBegin,
	})
	return nil
}

func (r *resolver) resolveMulti(decl *grammar.MultiDecl) error {
	pairs := make([]computation.SubmatrixRow, 0, len(decl.Pairs))
	for _, p := range decl.Pairs {
		if p.Submatrix == "-1" {
			pairs = append(pairs, computation.SubmatrixRow{
				Submatrix: computation.NoSource,
				Row:       p.Row,
			})
			continue
		}
		s, ok := r.submatrices[p.Submatrix]
		if !ok {
			return errorAt(decl.Pos, errors.CodeUndefinedName,
				"undefined submatrix %q in indexes_multi %q", p.Submatrix, decl.Name)
		}
		pairs = append(pairs, computation.SubmatrixRow{Submatrix: s, Row: p.Row})
	}
	return define(r.multis, decl.Name, decl.Pos, "indexes_multi table",
		&r.comp.IndexesMulti, pairs)
}

func (r *resolver) resolveRanges(decl *grammar.RangesDecl) error {
	ranges := make([]computation.RowRange, 0, len(decl.Ranges))
	for _, rr := range decl.Ranges {
		ranges = append(ranges, computation.RowRange{Begin: rr.Begin, End: rr.End})
	}
	return define(r.ranges, decl.Name, decl.Pos, "indexes_ranges table",
		&r.comp.IndexesRanges, ranges)
}

func (r *resolver) resolveIO(decl *grammar.IODecl) error {
	if decl.Node < 0 || decl.Node >= len(r.table.Nodes) {
		return errorAt(decl.Pos, errors.CodeUndefinedName, "undefined node %d", decl.Node)
	}
	if _, exists := r.comp.IOInfo[decl.Node]; exists {
		return errorAt(decl.Pos, errors.CodeParseError, "node %d bound twice", decl.Node)
	}
	value, err := r.matrixRef(decl.Value, decl.Pos)
	if err != nil {
		return err
	}
	deriv, err := r.matrixRef(decl.Deriv, decl.Pos)
	if err != nil {
		return err
	}
	r.comp.IOInfo[decl.Node] = computation.IOPair{ValueMatrix: value, DerivMatrix: deriv}
	return nil
}

// matrixRef resolves a matrix name, or "0" meaning no matrix.
func (r *resolver) matrixRef(name string, pos lexerPosition) (int, error) {
	if name == "0" {
		return 0, nil
	}
	m, ok := r.matrices[name]
	if !ok {
		return 0, errorAt(pos, errors.CodeUndefinedName, "undefined matrix %q", name)
	}
	return m, nil
}

func (r *resolver) resolveCommand(stmt *grammar.CommandStmt) error {
	expected := fmt.Sprintf("c%d", len(r.comp.Commands))
	if stmt.Label != expected {
		return errorAt(stmt.Pos, errors.CodeParseError,
			"command label %q out of sequence, expected %q", stmt.Label, expected)
	}
	kind, ok := commandKinds[stmt.Kind]
	if !ok {
		return errorAt(stmt.Pos, errors.CodeParseError, "unknown command %q", stmt.Kind)
	}
	signature := signatures[kind]
	if len(stmt.Args) != len(signature) {
		return errorAt(stmt.Pos, errors.CodeParseError,
			"command %s takes %d operands, got %d", stmt.Kind, len(signature), len(stmt.Args))
	}
	cmd := computation.Command{Kind: kind}
	slots := []*int{&cmd.Arg1, &cmd.Arg2, &cmd.Arg3, &cmd.Arg4, &cmd.Arg5, &cmd.Arg6}
	for i, arg := range stmt.Args {
		value, err := r.resolveOperand(arg, signature[i], stmt.Pos)
		if err != nil {
			return err
		}
		*slots[i] = value
	}
	r.comp.Commands = append(r.comp.Commands, cmd)
	return nil
}

func (r *resolver) resolveOperand(arg string, kind operandKind, pos lexerPosition) (int, error) {
	lookup := func(table map[string]int, what string) (int, error) {
		if id, ok := table[arg]; ok {
			return id, nil
		}
		return 0, errorAt(pos, errors.CodeUndefinedName, "undefined %s %q", what, arg)
	}
	switch kind {
	case operandMatrix:
		return lookup(r.matrices, "matrix")
	case operandSubmatrix:
		if arg == "0" {
			return 0, nil
		}
		return lookup(r.submatrices, "submatrix")
	case operandOperator:
		return lookup(r.operators, "operator")
	case operandIndexes:
		return lookup(r.indexes, "index list")
	case operandMulti:
		return lookup(r.multis, "indexes_multi table")
	case operandRanges:
		return lookup(r.ranges, "indexes_ranges table")
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, errorAt(pos, errors.CodeParseError, "expected integer operand, got %q", arg)
		}
		return n, nil
	}
}

// define registers a named table, appending its contents to the
// computation-owned slice it belongs to.
func define[T any](names map[string]int, name string, pos lexerPosition, what string, dst *[]T, value T) error {
	if _, exists := names[name]; exists {
		return errorAt(pos, errors.CodeParseError, "%s %q declared twice", what, name)
	}
	names[name] = len(*dst)
	*dst = append(*dst, value)
	return nil
}
