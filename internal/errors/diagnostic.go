package errors

import (
	"fmt"
	"strings"
)

// Level is the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
)

// Unset marks a context id that does not apply to a diagnostic.
const Unset = -1

// Position locates a parse diagnostic in a computation file.
type Position struct {
	Line   int
	Column int
}

// Diagnostic is one analysis or parse failure. Analysis diagnostics
// carry the ids needed to locate the defect in the computation;
// parse diagnostics carry a source position instead.
type Diagnostic struct {
	Level   Level
	Code    string
	Message string

	// Context ids, Unset where not applicable.
	Command   int
	Matrix    int
	Submatrix int
	Variable  int

	// Position of parse diagnostics; zero otherwise.
	Position Position
}

// New creates an error-level diagnostic with all context ids unset.
func New(code, message string) Diagnostic {
	return Diagnostic{
		Level:     Error,
		Code:      code,
		Message:   message,
		Command:   Unset,
		Matrix:    Unset,
		Submatrix: Unset,
		Variable:  Unset,
	}
}

// Newf creates an error-level diagnostic with a formatted message.
func Newf(code, format string, args ...any) Diagnostic {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWarningf creates a warning-level diagnostic.
func NewWarningf(code, format string, args ...any) Diagnostic {
	d := Newf(code, format, args...)
	d.Level = Warning
	return d
}

// AtCommand returns a copy of the diagnostic bound to a command index.
func (d Diagnostic) AtCommand(c int) Diagnostic {
	d.Command = c
	return d
}

// OnMatrix returns a copy bound to a matrix index.
func (d Diagnostic) OnMatrix(m int) Diagnostic {
	d.Matrix = m
	return d
}

// OnSubmatrix returns a copy bound to a submatrix index.
func (d Diagnostic) OnSubmatrix(s int) Diagnostic {
	d.Submatrix = s
	return d
}

// OnVariable returns a copy bound to a variable index.
func (d Diagnostic) OnVariable(v int) Diagnostic {
	d.Variable = v
	return d
}

// AtPosition returns a copy bound to a source position.
func (d Diagnostic) AtPosition(line, column int) Diagnostic {
	d.Position = Position{Line: line, Column: column}
	return d
}

// Context renders the bound ids as a short suffix, e.g.
// "command c3, matrix m1". Empty when nothing is bound.
func (d Diagnostic) Context() string {
	var parts []string
	if d.Command != Unset {
		parts = append(parts, fmt.Sprintf("command c%d", d.Command))
	}
	if d.Matrix != Unset {
		parts = append(parts, fmt.Sprintf("matrix m%d", d.Matrix))
	}
	if d.Submatrix != Unset {
		parts = append(parts, fmt.Sprintf("submatrix s%d", d.Submatrix))
	}
	if d.Variable != Unset {
		parts = append(parts, fmt.Sprintf("variable v%d", d.Variable))
	}
	return strings.Join(parts, ", ")
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if ctx := d.Context(); ctx != "" {
		return fmt.Sprintf("[%s] %s (%s)", d.Code, d.Message, ctx)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}
