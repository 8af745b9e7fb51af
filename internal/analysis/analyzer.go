package analysis

import (
	"nnetcheck/internal/computation"
)

// Analyzer bundles the outputs of the full analysis pipeline over one
// computation: the variable partition, the per-command attributes and
// the per-variable and per-matrix access logs. Every stage consumes
// only the previous stages' outputs; nothing here mutates the
// computation itself.
type Analyzer struct {
	Variables         *Variables
	CommandAttributes []CommandAttributes
	VariableAccesses  [][]Access
	MatrixAccesses    []MatrixAccesses
}

// NewAnalyzer runs the pipeline: partition, attribute extraction,
// access-log construction. The first violation found aborts the run.
func NewAnalyzer(net computation.Network, comp *computation.Computation) (*Analyzer, error) {
	vars, err := NewVariables(comp)
	if err != nil {
		return nil, err
	}
	attributes, err := ComputeCommandAttributes(net, comp, vars)
	if err != nil {
		return nil, err
	}
	matrixAccesses, err := ComputeMatrixAccesses(net, comp, attributes)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		Variables:         vars,
		CommandAttributes: attributes,
		VariableAccesses:  ComputeVariableAccesses(vars, attributes),
		MatrixAccesses:    matrixAccesses,
	}, nil
}
