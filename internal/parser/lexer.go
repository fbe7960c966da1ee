package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var hlcLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"BlockComment", `/\*([^*]|\*+[^*/])*\*+/`, nil},
		{"Comment", `//[^\n]*`, nil},

		{"CharLit", `'(\\.|[^'\\])'`, nil},

		// Keywords lex as Ident; the grammar matches them literally.
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Integer", `0[xX][0-9a-fA-F]+|[0-9]+`, nil},

		// Longest operators first.
		{"Operator", `(<<=|>>=|->|\+\+|--|<<|>>|::|\|\||&&|==|!=|<=|>=|\+=|-=|\*=|/=|%=|&=|\|=|\^=|[-+*/%&|^~!<>=?])`, nil},

		{"Punct", `[{}\[\]().,;:]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
