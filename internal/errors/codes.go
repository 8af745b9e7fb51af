package errors

// Diagnostic codes for the computation analysis.
// These codes identify the violated rule category across the toolchain.
//
// Code ranges:
// E0001-E0099: structural checks on commands and operands
// E0100-E0199: ordering and lifetime checks
// E0200-E0299: dataflow checks
// E0300-E0399: internal consistency
// E0400-E0499: parser errors
// W0001-W0099: warnings

const (
	// E0001: operand or table index outside valid bounds
	CodeIndexOutOfRange = "E0001"

	// E0002: submatrix shape disagrees with operator-declared
	// dimensionality or with a paired submatrix's shape
	CodeDimensionMismatch = "E0002"

	// E0003: disallowed self-reference, duplicate scatter destination,
	// invalid sentinel combination or invalid row range
	CodeStructuralViolation = "E0003"

	// E0100: zero or multiple phase markers, or a forward/backward
	// command on the wrong side of the marker
	CodeOrderingViolation = "E0100"

	// E0101: missing, duplicate or misplaced allocation/deallocation
	// relative to the access log
	CodeLifetimeViolation = "E0101"

	// E0200: a variable's first access is not a write
	CodeDefinednessViolation = "E0200"

	// E0201: a write follows a pure read on the same variable
	// (checked before storage-reuse optimization only)
	CodeRewriteSafetyViolation = "E0201"

	// E0300: unrecognized command kind
	CodeUnknownCommandKind = "E0300"

	// E0301: a derived structure disagrees with the computation
	// geometry, e.g. a submatrix boundary missing from the split points
	CodeInternalInconsistency = "E0301"

	// E0400: computation file syntax error
	CodeParseError = "E0400"

	// E0401: computation file references an undefined name
	CodeUndefinedName = "E0401"

	// W0001: input matrix supplied but never accessed
	CodeUnusedInput = "W0001"
)

// Category returns the rule category a code belongs to.
func Category(code string) string {
	switch code {
	case CodeIndexOutOfRange:
		return "index-out-of-range"
	case CodeDimensionMismatch:
		return "dimension-mismatch"
	case CodeStructuralViolation:
		return "structural-violation"
	case CodeOrderingViolation:
		return "ordering-violation"
	case CodeLifetimeViolation:
		return "lifetime-violation"
	case CodeDefinednessViolation:
		return "definedness-violation"
	case CodeRewriteSafetyViolation:
		return "rewrite-safety-violation"
	case CodeUnknownCommandKind:
		return "unknown-command-kind"
	case CodeInternalInconsistency:
		return "internal-inconsistency"
	case CodeParseError, CodeUndefinedName:
		return "parse"
	case CodeUnusedInput:
		return "warning"
	default:
		return "unknown"
	}
}

// IsWarning reports whether the code is advisory rather than fatal.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}
