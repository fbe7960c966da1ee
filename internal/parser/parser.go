package parser

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"

	"hlscc/internal/ast"
	errs "hlscc/internal/errors"
)

var hlcParser = participle.MustBuild[gUnit](
	participle.Lexer(hlcLexer),
	participle.Elide("Whitespace", "Comment", "BlockComment"),
	participle.UseLookahead(64),
)

// ParseSource parses one translation unit. Pragmas are collected in a
// textual pass before the grammar runs and attached to the declarations
// that follow them.
func ParseSource(filename, source string) (*ast.Unit, error) {
	clean, pragmas := preprocess(source)

	g, err := hlcParser.ParseString(filename, clean)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			pos := ast.Position{Filename: filename, Line: pe.Position().Line, Column: pe.Position().Column}
			return nil, errs.Invalidf(pos, "syntax error: %s", pe.Message())
		}
		return nil, errs.Invalidf(ast.Position{Filename: filename}, "syntax error: %s", err)
	}

	lw := &lowerer{filename: filename, pragmas: newPragmaSet(pragmas)}
	unit := lw.unit(g)
	if lw.err != nil {
		return nil, errs.Invalidf(ast.Position{Filename: filename}, "%s", lw.err)
	}
	return unit, nil
}

func ParseFile(path string) (*ast.Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}
