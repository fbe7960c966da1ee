package errors

import (
	stderrors "errors"
	"fmt"

	"hlscc/internal/ast"
)

// Category classifies a translation failure. Tools branch on the
// category, never on message text.
type Category int

const (
	InvalidArgument Category = iota
	Unimplemented
	NotFound
	FailedPrecondition
)

func (c Category) String() string {
	switch c {
	case InvalidArgument:
		return "invalid argument"
	case Unimplemented:
		return "unimplemented"
	case NotFound:
		return "not found"
	case FailedPrecondition:
		return "failed precondition"
	default:
		return "unknown"
	}
}

// TranslationError is the single error type produced by the compiler.
// Every failure is fatal; there is no partial output.
type TranslationError struct {
	Category Category
	Message  string
	Position ast.Position
}

func (e *TranslationError) Error() string {
	if e.Position.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
	}
	return e.Message
}

func New(cat Category, pos ast.Position, format string, args ...any) *TranslationError {
	return &TranslationError{
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}

func Invalidf(pos ast.Position, format string, args ...any) *TranslationError {
	return New(InvalidArgument, pos, format, args...)
}

func Unimplementedf(pos ast.Position, format string, args ...any) *TranslationError {
	return New(Unimplemented, pos, format, args...)
}

func NotFoundf(pos ast.Position, format string, args ...any) *TranslationError {
	return New(NotFound, pos, format, args...)
}

func Preconditionf(pos ast.Position, format string, args ...any) *TranslationError {
	return New(FailedPrecondition, pos, format, args...)
}

// CategoryOf extracts the failure category, with ok=false for errors
// that did not come from the compiler.
func CategoryOf(err error) (Category, bool) {
	var te *TranslationError
	if stderrors.As(err, &te) {
		return te.Category, true
	}
	return 0, false
}
