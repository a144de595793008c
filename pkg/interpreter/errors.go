package interpreter

import (
	"fmt"

	"plc/interpreter-go/pkg/ast"
)

// ErrorKind classifies a RuntimeError.
type ErrorKind string

const (
	TypeError           ErrorKind = "TypeError"
	InvalidOperands     ErrorKind = "InvalidOperands"
	DivisionByZero      ErrorKind = "DivisionByZero"
	ConstAssignment     ErrorKind = "ConstAssignment"
	UndefinedVariable   ErrorKind = "UndefinedVariable"
	UndefinedFunction   ErrorKind = "UndefinedFunction"
	DuplicateDefinition ErrorKind = "DuplicateDefinition"
)

// RuntimeError aborts evaluation. Node is the innermost node that failed.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Node    ast.Node
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("interpreter: %s: %s", e.Kind, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Span locates the failing node, if known.
func (e *RuntimeError) Span() ast.Span {
	if e.Node == nil {
		return ast.ZeroSpan()
	}
	return e.Node.Span()
}

func runtimeErrorf(kind ErrorKind, node ast.Node, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Node: node}
}

func wrapRuntime(kind ErrorKind, node ast.Node, err error) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: err.Error(), Node: node, Err: err}
}

// attach fills in the node of errors raised below the AST level (operators,
// builtins) and converts foreign errors into the runtime taxonomy.
func attach(err error, node ast.Node, fallback ErrorKind) error {
	if err == nil {
		return nil
	}
	if rerr, ok := err.(*RuntimeError); ok {
		if rerr.Node == nil {
			rerr.Node = node
		}
		return rerr
	}
	return wrapRuntime(fallback, node, err)
}
