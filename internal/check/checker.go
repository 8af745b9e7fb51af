// Package check verifies the structural and lifetime correctness of a
// computation before it is executed or optimized. It runs a fixed
// sequence of independent passes over the analysis outputs and stops at
// the first violation.
package check

import (
	"nnetcheck/internal/analysis"
	"nnetcheck/internal/computation"
	"nnetcheck/internal/errors"
)

// Options configures the checker.
type Options struct {
	// CheckRewrite enables the rewrite-safety pass. It is only valid
	// before storage-reuse optimizations have run: those deliberately
	// introduce in-place operations that the pass would reject.
	CheckRewrite bool
}

// Checker runs the verification passes over one computation. All state,
// including the warn-once bookkeeping, is scoped to the checker, so
// distinct computations can be checked concurrently with independent
// checkers.
type Checker struct {
	opts Options
	net  computation.Network
	comp *computation.Computation

	analyzer          *analysis.Analyzer
	warnings          []errors.Diagnostic
	warnedUnusedInput bool
}

// NewChecker creates a checker for one computation.
func NewChecker(opts Options, net computation.Network, comp *computation.Computation) *Checker {
	return &Checker{opts: opts, net: net, comp: comp}
}

// Check runs all passes in order and returns the first violation found,
// or nil on success. The passes: operand index and shape validity,
// phase ordering, matrix lifetime, variable definedness and, when
// enabled, rewrite safety.
func (c *Checker) Check() error {
	if err := c.checkIndexes(); err != nil {
		return err
	}
	if err := c.checkOrder(); err != nil {
		return err
	}
	analyzer, err := analysis.NewAnalyzer(c.net, c.comp)
	if err != nil {
		return err
	}
	c.analyzer = analyzer
	if err := c.checkMatrixAccesses(); err != nil {
		return err
	}
	if err := c.checkUndefined(); err != nil {
		return err
	}
	if c.opts.CheckRewrite {
		if err := c.checkRewrite(); err != nil {
			return err
		}
	}
	return nil
}

// Analyzer returns the analysis bundle built during Check, or nil if
// Check has not reached that stage.
func (c *Checker) Analyzer() *analysis.Analyzer {
	return c.analyzer
}

// Warnings returns the advisory diagnostics collected during Check.
func (c *Checker) Warnings() []errors.Diagnostic {
	return c.warnings
}

func (c *Checker) warnUnusedInput(m int) {
	if c.warnedUnusedInput {
		return
	}
	c.warnedUnusedInput = true
	c.warnings = append(c.warnings, errors.NewWarningf(errors.CodeUnusedInput,
		"matrix m%d is never accessed; allowing because it is an input "+
			"(un-needed input or derivative?), will warn only once", m).OnMatrix(m))
}
