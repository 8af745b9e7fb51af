package grammar

import (
	"github.com/alecthomas/participle/v2"
)

var fileParser = participle.MustBuild[File](
	participle.Lexer(ComputationLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// ParseString parses computation-format source into its syntax tree.
// The error, if any, is a participle.Error carrying a source position.
func ParseString(filename, source string) (*File, error) {
	return fileParser.ParseString(filename, source)
}
