package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats translation errors with source context for the CLI.
type Reporter struct {
	filename string
	lines    []string
}

func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders an error Rust-style: a header, the offending line and a
// caret marker. Errors without a position get just the header.
func (r *Reporter) Format(err error) string {
	errColor := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	var te *TranslationError
	if !stderrors.As(err, &te) {
		return fmt.Sprintf("%s: %s\n", errColor("error"), err)
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("%s[%s]: %s\n", errColor("error"), te.Category, te.Message))

	line := te.Position.Line
	if line <= 0 || line > len(r.lines) {
		return out.String()
	}

	width := len(fmt.Sprintf("%d", line))
	indent := strings.Repeat(" ", width)

	out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, line, te.Position.Column))
	out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
	out.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, line)), dim("│"), r.lines[line-1]))

	caret := strings.Repeat(" ", max(0, te.Position.Column-1)) + errColor("^")
	out.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), caret))
	return out.String()
}
