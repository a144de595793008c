package driver

import (
	"errors"
	"fmt"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/interpreter"
	"plc/interpreter-go/pkg/parser"
	"plc/interpreter-go/pkg/typechecker"
)

// Describe renders err as `file:line:col: kind: message`. The position is
// dropped when the error carries none, and unknown errors fall back to
// `file: message`.
func Describe(err error, file string) string {
	if err == nil {
		return ""
	}
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		return locate(file, syntaxErr.Line, syntaxErr.Column) + "SyntaxError: " + syntaxErr.Message
	}
	var semErr *typechecker.SemanticError
	if errors.As(err, &semErr) {
		return spanPrefix(file, semErr.Span()) + string(semErr.Kind) + ": " + semErr.Message
	}
	var rtErr *interpreter.RuntimeError
	if errors.As(err, &rtErr) {
		return spanPrefix(file, rtErr.Span()) + string(rtErr.Kind) + ": " + rtErr.Message
	}
	if file == "" {
		return err.Error()
	}
	return file + ": " + err.Error()
}

func spanPrefix(file string, span ast.Span) string {
	if span.IsZero() {
		return locate(file, 0, 0)
	}
	return locate(file, span.Start.Line, span.Start.Column)
}

func locate(file string, line, column int) string {
	if file == "" {
		file = "<input>"
	}
	if line <= 0 {
		return file + ": "
	}
	return fmt.Sprintf("%s:%d:%d: ", file, line, column)
}
