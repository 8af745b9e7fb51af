package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"nnetcheck/internal/errors"
)

type lexerPosition = lexer.Position

// errorAt builds a parse diagnostic bound to a source position.
func errorAt(pos lexerPosition, code, format string, args ...any) error {
	return errors.Newf(code, format, args...).AtPosition(pos.Line, pos.Column)
}
