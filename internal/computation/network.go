package computation

// Properties is the capability bit-set an operator declares to the
// analysis. The analysis never invokes operators; it reasons purely
// from these flags and the declared dimensions.
type Properties int

const (
	// Simple operators obey the simple shape contract: equal row
	// counts on input and output, and no precomputed-index table.
	Simple Properties = 1 << iota
	// InPlaceForward allows the forward pass to reuse the input
	// submatrix as its output.
	InPlaceForward
	// InPlaceBackward allows the backward pass to reuse the output
	// derivative as the input derivative.
	InPlaceBackward
	// BackpropNeedsInput means the backward pass must be given the
	// forward input.
	BackpropNeedsInput
	// BackpropNeedsOutput means the backward pass must be given the
	// forward output.
	BackpropNeedsOutput
	// AddsToOutput means the forward pass accumulates into its output
	// instead of overwriting it.
	AddsToOutput
	// AddsToInputDeriv means the backward pass accumulates into the
	// input derivative instead of overwriting it.
	AddsToInputDeriv
	// Updatable operators own learnable parameters; their backward
	// pass accumulates parameter gradients, an externally visible side
	// effect invisible to submatrix-level dataflow.
	Updatable
	// StoresStats operators support the store-stats command.
	StoresStats
)

// Has reports whether all bits of q are set.
func (p Properties) Has(q Properties) bool {
	return p&q == q
}

// OperatorInfo describes one operator: its declared dimensionality and
// capabilities. Operators themselves are opaque to the analysis.
type OperatorInfo struct {
	Name       string
	InputDim   int
	OutputDim  int
	Properties Properties
}

// Network is the operator registry and boundary-node oracle the
// analysis consults. It is supplied by the surrounding system.
type Network interface {
	NumOperators() int
	Operator(i int) OperatorInfo

	NumNodes() int
	// OperatorForNode resolves a node id to its operator index; ok is
	// false for nodes that carry no operator (inputs and outputs).
	OperatorForNode(node int) (op int, ok bool)
	IsInputNode(node int) bool
	IsOutputNode(node int) bool
}

// NodeKind classifies a node of an OperatorTable.
type NodeKind int

const (
	// InputNode is a declared program input.
	InputNode NodeKind = iota
	// OutputNode is a declared program output.
	OutputNode
	// OperatorNode applies an operator.
	OperatorNode
)

// Node is one entry of an OperatorTable's node list.
type Node struct {
	Kind     NodeKind
	Operator int // valid for OperatorNode only
}

// OperatorTable is a concrete Network backed by plain slices. The
// parser builds one from the network section of a computation file;
// tests build them directly.
type OperatorTable struct {
	Operators []OperatorInfo
	Nodes     []Node
}

func (t *OperatorTable) NumOperators() int           { return len(t.Operators) }
func (t *OperatorTable) Operator(i int) OperatorInfo { return t.Operators[i] }
func (t *OperatorTable) NumNodes() int               { return len(t.Nodes) }

func (t *OperatorTable) OperatorForNode(node int) (int, bool) {
	if node < 0 || node >= len(t.Nodes) || t.Nodes[node].Kind != OperatorNode {
		return 0, false
	}
	return t.Nodes[node].Operator, true
}

func (t *OperatorTable) IsInputNode(node int) bool {
	return node >= 0 && node < len(t.Nodes) && t.Nodes[node].Kind == InputNode
}

func (t *OperatorTable) IsOutputNode(node int) bool {
	return node >= 0 && node < len(t.Nodes) && t.Nodes[node].Kind == OutputNode
}
