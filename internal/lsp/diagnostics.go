package lsp

import (
	stderrors "errors"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	errs "hlscc/internal/errors"
	"hlscc/internal/parser"
	"hlscc/internal/translate"
)

// diagnose reparses and retranslates one document. A missing top
// function is not reported: most of an editing session happens before
// the top pragma exists.
func diagnose(path, source string) []protocol.Diagnostic {
	unit, err := parser.ParseSource(path, source)
	if err != nil {
		return []protocol.Diagnostic{toDiagnostic(err)}
	}
	if _, err := translate.Translate(unit, translate.Options{}); err != nil {
		if strings.Contains(err.Error(), "No top function found") {
			return nil
		}
		return []protocol.Diagnostic{toDiagnostic(err)}
	}
	return nil
}

// toDiagnostic maps a translation error onto an LSP diagnostic. LSP
// positions are zero-based.
func toDiagnostic(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := "hlscc"

	var te *errs.TranslationError
	if !stderrors.As(err, &te) {
		return protocol.Diagnostic{
			Severity: &severity,
			Source:   &source,
			Message:  err.Error(),
		}
	}

	line := uint32(0)
	if te.Position.Line > 0 {
		line = uint32(te.Position.Line - 1)
	}
	col := uint32(0)
	if te.Position.Column > 0 {
		col = uint32(te.Position.Column - 1)
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: &severity,
		Source:   &source,
		Message:  te.Category.String() + ": " + te.Message,
	}
}
