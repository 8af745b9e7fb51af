package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ComputationLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `-?[0-9]+`, nil},

		{"Arrow", `->`, nil},
		{"Punctuation", `[{}[\]():,;=]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
