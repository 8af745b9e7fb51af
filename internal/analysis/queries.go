package analysis

// Read-only probes over the access logs, for optimization passes
// deciding whether moving an allocation or merging two buffers is safe.
// None of these participate in verification.

// MatrixAccessedBefore reports whether matrix m is accessed before
// command c outside the normal allocate-then-use pattern.
func MatrixAccessedBefore(matrixAccesses []MatrixAccesses, m, c int) bool {
	access := matrixAccesses[m]
	if len(access.Accesses) == 0 {
		return false
	}
	first := access.Accesses[0].Command
	if first == access.AllocateCommand {
		if len(access.Accesses) == 1 {
			return false
		}
		first = access.Accesses[1].Command
	}
	return first < c
}

// MatrixAccessedAfter reports whether matrix m has any logged access
// strictly after command c. Deallocation does not appear in the log.
func MatrixAccessedAfter(matrixAccesses []MatrixAccesses, m, c int) bool {
	access := matrixAccesses[m]
	if len(access.Accesses) == 0 {
		return false
	}
	return access.Accesses[len(access.Accesses)-1].Command > c
}

// MatrixWrittenAfter reports whether matrix m is written (or
// read-written) strictly after command c. It scans from the latest
// access backward and stops at the first access at or before c.
func MatrixWrittenAfter(matrixAccesses []MatrixAccesses, m, c int) bool {
	access := matrixAccesses[m]
	for i := len(access.Accesses) - 1; i >= 0; i-- {
		a := access.Accesses[i]
		if a.Command <= c {
			return false
		}
		if a.Kind != ReadAccess {
			return true
		}
	}
	return false
}

// FirstWriteToSubmatrixAfter returns the earliest command strictly
// after c that writes to any variable of submatrix s, or NoCommand if
// no such write exists.
func FirstWriteToSubmatrixAfter(an *Analyzer, s, c int) int {
	variables := an.Variables.AppendVariablesForSubmatrix(s, nil)
	ans := NoCommand
	for _, v := range variables {
		accesses := an.VariableAccesses[v]
		for i := len(accesses) - 1; i >= 0; i-- {
			a := accesses[i]
			if a.Command <= c {
				break
			}
			if a.Kind != ReadAccess {
				if ans == NoCommand || a.Command < ans {
					ans = a.Command
				}
			}
		}
	}
	return ans
}
