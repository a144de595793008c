package typechecker

import (
	"fmt"

	"plc/interpreter-go/pkg/ast"
)

// ErrorKind classifies a SemanticError.
type ErrorKind string

const (
	MissingEntryPoint       ErrorKind = "MissingEntryPoint"
	InvalidEntryPoint       ErrorKind = "InvalidEntryPoint"
	DuplicateDefinition     ErrorKind = "DuplicateDefinition"
	UndefinedVariable       ErrorKind = "UndefinedVariable"
	UndefinedFunction       ErrorKind = "UndefinedFunction"
	TypeMismatch            ErrorKind = "TypeMismatch"
	InvalidStatement        ErrorKind = "InvalidStatement"
	InvalidAssignmentTarget ErrorKind = "InvalidAssignmentTarget"
	ConstAssignment         ErrorKind = "ConstAssignment"
	MissingType             ErrorKind = "MissingType"
	LiteralOutOfRange       ErrorKind = "LiteralOutOfRange"
	InvalidOperator         ErrorKind = "InvalidOperator"
	UninitializedConstant   ErrorKind = "UninitializedConstant"
	UnknownType             ErrorKind = "UnknownType"
	InvalidExpression       ErrorKind = "InvalidExpression"
)

// SemanticError is the single error produced by a failed analysis.
type SemanticError struct {
	Kind    ErrorKind
	Message string
	Node    ast.Node
	Err     error
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("typechecker: %s: %s", e.Kind, e.Message)
}

func (e *SemanticError) Unwrap() error {
	return e.Err
}

// Span locates the offending node, if any.
func (e *SemanticError) Span() ast.Span {
	if e.Node == nil {
		return ast.ZeroSpan()
	}
	return e.Node.Span()
}

func semanticErrorf(kind ErrorKind, node ast.Node, format string, args ...any) *SemanticError {
	return &SemanticError{Kind: kind, Message: fmt.Sprintf(format, args...), Node: node}
}

// wrapSemantic converts an error from the runtime package into the analyzer
// taxonomy while keeping it reachable through errors.Is.
func wrapSemantic(kind ErrorKind, node ast.Node, err error) *SemanticError {
	return &SemanticError{Kind: kind, Message: err.Error(), Node: node, Err: err}
}
