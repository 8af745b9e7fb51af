// Package grammar defines the textual computation format. A file has a
// network section declaring operators and nodes, followed by a
// computation section declaring matrices, submatrices, index tables,
// boundary bindings and the command list:
//
//	network {
//	    operator relu { in: 64, out: 64, props: [simple, in_place_forward] }
//	    node 0: input;
//	    node 1: operator relu;
//	    node 2: output;
//	}
//	computation {
//	    matrix m1: 8 x 64;
//	    submatrix s1 = m1[0:8, 0:64];
//	    indexes i0 = [0, 1, -1, 3];
//	    indexes_multi x0 = [(s1, 0), (-1, -1)];
//	    indexes_ranges r0 = [(0, 4), (2, 8)];
//	    input 0 -> (m1, 0);
//	    c0: alloc_zeroed m2;
//	    c1: propagate relu, 0, s1, s2;
//	    c2: marker;
//	}
//
// The format is a debugging surface for feeding computations to the
// analysis, not a stable interchange format.
package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type File struct {
	Network     *NetworkSection     `@@`
	Computation *ComputationSection `@@`
}

type NetworkSection struct {
	Items []*NetworkItem `"network" "{" @@* "}"`
}

type NetworkItem struct {
	Operator *OperatorDecl `  @@`
	Node     *NodeDecl     `| @@`
}

type OperatorDecl struct {
	Pos lexer.Position

	Name  string   `"operator" @Ident "{"`
	In    int      `"in" ":" @Integer ","`
	Out   int      `"out" ":" @Integer`
	Props []string `("," "props" ":" "[" (@Ident ("," @Ident)*)? "]")? "}"`
}

type NodeDecl struct {
	Pos lexer.Position

	ID       int    `"node" @Integer ":"`
	Kind     string `@("input" | "output" | "operator")`
	Operator string `@Ident? ";"`
}

type ComputationSection struct {
	Items []*ComputationItem `"computation" "{" @@* "}"`
}

type ComputationItem struct {
	Matrix      *MatrixDecl      `  @@`
	Submatrix   *SubmatrixDecl   `| @@`
	Indexes     *IndexesDecl     `| @@`
	Multi       *MultiDecl       `| @@`
	Ranges      *RangesDecl      `| @@`
	Precomputed *PrecomputedDecl `| @@`
	IO          *IODecl          `| @@`
	Command     *CommandStmt     `| @@`
}

type MatrixDecl struct {
	Pos lexer.Position

	Name    string `"matrix" @Ident ":"`
	NumRows int    `@Integer "x"`
	NumCols int    `@Integer ";"`
}

type SubmatrixDecl struct {
	Pos lexer.Position

	Name     string `"submatrix" @Ident "="`
	Matrix   string `@Ident "["`
	RowBegin int    `@Integer ":"`
	RowEnd   int    `@Integer ","`
	ColBegin int    `@Integer ":"`
	ColEnd   int    `@Integer "]" ";"`
}

type IndexesDecl struct {
	Pos lexer.Position

	Name   string `"indexes" @Ident "="`
	Values []int  `"[" (@Integer ("," @Integer)*)? "]" ";"`
}

type MultiDecl struct {
	Pos lexer.Position

	Name  string  `"indexes_multi" @Ident "="`
	Pairs []*Pair `"[" (@@ ("," @@)*)? "]" ";"`
}

// Pair is one (submatrix, row) entry; the sentinel entry is (-1, -1).
type Pair struct {
	Submatrix string `"(" @(Ident | Integer) ","`
	Row       int    `@Integer ")"`
}

type RangesDecl struct {
	Pos lexer.Position

	Name   string   `"indexes_ranges" @Ident "="`
	Ranges []*Range `"[" (@@ ("," @@)*)? "]" ";"`
}

type Range struct {
	Begin int `"(" @Integer ","`
	End   int `@Integer ")"`
}

// PrecomputedDecl declares how many precomputed-index tables exist.
// The tables are opaque; commands refer to them by 1-based id.
type PrecomputedDecl struct {
	Pos lexer.Position

	Count int `"precomputed" @Integer ";"`
}

// IODecl binds a boundary node to its value matrix and, optionally,
// its derivative matrix ("0" for none).
type IODecl struct {
	Pos lexer.Position

	Dir   string `@("input" | "output")`
	Node  int    `@Integer Arrow`
	Value string `"(" @(Ident | Integer) ","`
	Deriv string `@(Ident | Integer) ")" ";"`
}

// CommandStmt is one command; operands are resolved by name against
// the declarations according to the command kind's signature.
type CommandStmt struct {
	Pos lexer.Position

	Label string   `@Ident ":"`
	Kind  string   `@Ident`
	Args  []string `(@(Ident | Integer) ("," @(Ident | Integer))*)? ";"`
}
