package check

import (
	"nnetcheck/internal/analysis"
	"nnetcheck/internal/errors"
)

// checkUndefined verifies definedness: every variable of a non-input
// matrix must be written before any other access, so nothing ever reads
// undefined storage.
func (c *Checker) checkUndefined() error {
	for v, accesses := range c.analyzer.VariableAccesses {
		m := c.analyzer.Variables.MatrixForVariable(v)
		if c.analyzer.MatrixAccesses[m].IsInput {
			continue
		}
		if len(accesses) == 0 {
			return errors.New(errors.CodeDefinednessViolation,
				"variable is never used").OnVariable(v).OnMatrix(m)
		}
		if accesses[0].Kind != analysis.WriteAccess {
			return errors.New(errors.CodeDefinednessViolation,
				"variable is read before it is written to").OnVariable(v).
				OnMatrix(m).AtCommand(accesses[0].Command)
		}
	}
	return nil
}

// checkRewrite catches a pure read of a variable followed by any write
// to it, which would clobber data a later step still expects. Prior to
// optimization this never legitimately happens; storage-reuse
// optimizations deliberately introduce it, so the pass must be skipped
// after they run.
func (c *Checker) checkRewrite() error {
	for v, accesses := range c.analyzer.VariableAccesses {
		m := c.analyzer.Variables.MatrixForVariable(v)
		if len(accesses) == 0 {
			if !c.analyzer.MatrixAccesses[m].IsInput {
				return errors.New(errors.CodeRewriteSafetyViolation,
					"variable is never used").OnVariable(v).OnMatrix(m)
			}
			continue
		}
		firstPureRead := -1
		for i, a := range accesses {
			if a.Kind == analysis.ReadAccess {
				firstPureRead = i
				break
			}
		}
		if firstPureRead == -1 {
			continue
		}
		for _, a := range accesses[firstPureRead+1:] {
			if a.Kind != analysis.ReadAccess {
				return errors.New(errors.CodeRewriteSafetyViolation,
					"variable is modified after being read").OnVariable(v).
					OnMatrix(m).AtCommand(a.Command)
			}
		}
	}
	return nil
}
