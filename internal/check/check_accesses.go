package check

import (
	"nnetcheck/internal/analysis"
	"nnetcheck/internal/errors"
)

// checkMatrixAccesses verifies matrix lifetimes against the access
// logs: every non-input matrix is allocated exactly once, at or before
// its first access; every non-output matrix is deallocated after its
// last access; inputs are never allocated and outputs never
// deallocated. A matrix with no accesses is an error unless it is an
// input, which is downgraded to a one-time advisory.
func (c *Checker) checkMatrixAccesses() error {
	matrixAccesses := c.analyzer.MatrixAccesses
	for m := 1; m < len(matrixAccesses); m++ {
		accesses := matrixAccesses[m]
		if accesses.IsInput {
			if accesses.AllocateCommand != analysis.NoCommand {
				return errors.New(errors.CodeLifetimeViolation,
					"input matrix is initialized").OnMatrix(m).
					AtCommand(accesses.AllocateCommand)
			}
		} else {
			if accesses.AllocateCommand == analysis.NoCommand {
				return errors.New(errors.CodeLifetimeViolation,
					"matrix is not initialized").OnMatrix(m)
			}
			if len(accesses.Accesses) == 0 {
				return errors.New(errors.CodeLifetimeViolation,
					"matrix is never accessed").OnMatrix(m)
			}
			if accesses.Accesses[0].Command < accesses.AllocateCommand {
				return errors.New(errors.CodeLifetimeViolation,
					"matrix is accessed before it is initialized").OnMatrix(m).
					AtCommand(accesses.Accesses[0].Command)
			}
		}
		if accesses.IsOutput {
			if accesses.DeallocateCommand != analysis.NoCommand {
				return errors.New(errors.CodeLifetimeViolation,
					"output matrix is destroyed").OnMatrix(m).
					AtCommand(accesses.DeallocateCommand)
			}
		} else {
			if accesses.DeallocateCommand == analysis.NoCommand {
				return errors.New(errors.CodeLifetimeViolation,
					"matrix is not destroyed").OnMatrix(m)
			}
			if len(accesses.Accesses) == 0 {
				if accesses.IsInput {
					// An unused supplied input or derivative is
					// suspicious but legal.
					c.warnUnusedInput(m)
				} else {
					return errors.New(errors.CodeLifetimeViolation,
						"matrix is never accessed").OnMatrix(m)
				}
			} else if last := accesses.Accesses[len(accesses.Accesses)-1].Command; last >= accesses.DeallocateCommand {
				return errors.New(errors.CodeLifetimeViolation,
					"matrix is accessed after it is destroyed").OnMatrix(m).
					AtCommand(last)
			}
		}
	}
	return nil
}
