package parser

import "fmt"

// TokenKind classifies a lexeme.
type TokenKind int

const (
	TokenIdentifier TokenKind = iota
	TokenInteger
	TokenDecimal
	TokenCharacter
	TokenString
	TokenOperator
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenInteger:
		return "integer"
	case TokenDecimal:
		return "decimal"
	case TokenCharacter:
		return "character"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexeme with its raw text and starting byte offset.
type Token struct {
	Kind    TokenKind
	Literal string
	Offset  int
}

// End is the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Literal)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d", t.Kind, t.Literal, t.Offset)
}

// SyntaxError is returned by Lex and ParseSource. Line and Column are 1-based.
type SyntaxError struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parser: %s (line %d, column %d)", e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("parser: %s (offset %d)", e.Message, e.Offset)
}
