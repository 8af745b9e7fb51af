package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats diagnostics for terminal output. For parse
// diagnostics it shows the offending source line with a marker; for
// analysis diagnostics it shows the bound computation ids.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for a computation file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders one diagnostic with colored, Rust-like styling.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Level)
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	// Header: error[E0101]: message
	out.WriteString(fmt.Sprintf("%s[%s]: %s\n",
		levelColor(string(d.Level)), d.Code, d.Message))

	if d.Position.Line > 0 {
		// Location line and source excerpt for parse diagnostics.
		out.WriteString(fmt.Sprintf("  %s %s:%d:%d\n",
			dim("-->"), r.filename, d.Position.Line, d.Position.Column))
		if d.Position.Line <= len(r.lines) {
			lineContent := r.lines[d.Position.Line-1]
			out.WriteString(fmt.Sprintf("%s %s %s\n",
				bold(fmt.Sprintf("%3d", d.Position.Line)), dim("│"), lineContent))
			marker := strings.Repeat(" ", maxInt(0, d.Position.Column-1)) +
				levelColor("^")
			out.WriteString(fmt.Sprintf("    %s %s\n", dim("│"), marker))
		}
	} else if ctx := d.Context(); ctx != "" {
		out.WriteString(fmt.Sprintf("  %s %s: %s\n", dim("-->"), r.filename, ctx))
	}

	out.WriteString("\n")
	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
