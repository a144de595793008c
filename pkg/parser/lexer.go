package parser

import (
	"unicode/utf8"
)

// keywords after which an expression operand may start, so a following sign
// belongs to a number literal.
var operandKeywords = map[string]bool{
	"RETURN": true,
	"IF":     true,
	"WHILE":  true,
	"DO":     true,
	"ELSE":   true,
	"AND":    true,
	"OR":     true,
}

type lexer struct {
	source string
	index  int
	start  int
	tokens []Token
	lines  lineIndex
}

// Lex splits source into tokens, skipping whitespace.
func Lex(source string) ([]Token, error) {
	lx := &lexer{source: source, lines: newLineIndex(source)}
	return lx.lex()
}

func (lx *lexer) lex() ([]Token, error) {
	for lx.has(0) {
		if isWhitespace(lx.peekByte(0)) {
			lx.index++
			continue
		}
		lx.start = lx.index
		tok, err := lx.lexToken()
		if err != nil {
			return nil, err
		}
		lx.tokens = append(lx.tokens, tok)
	}
	return lx.tokens, nil
}

func (lx *lexer) lexToken() (Token, error) {
	c := lx.peekByte(0)
	switch {
	case isIdentifierStart(c):
		return lx.lexIdentifier(), nil
	case isDigit(c):
		return lx.lexNumber()
	case (c == '+' || c == '-') && lx.has(1) && isDigit(lx.peekByte(1)) && lx.operandMayStart():
		return lx.lexNumber()
	case c == '\'':
		return lx.lexCharacter()
	case c == '"':
		return lx.lexString()
	default:
		return lx.lexOperator(), nil
	}
}

func (lx *lexer) lexIdentifier() Token {
	lx.index++
	for lx.has(0) && isIdentifierPart(lx.peekByte(0)) {
		lx.index++
	}
	return lx.emit(TokenIdentifier)
}

// lexNumber reads an optional sign, then either a lone 0 or a digit run
// without leading zeros, then an optional fraction. A '.' not followed by a
// digit is left for member access.
func (lx *lexer) lexNumber() (Token, error) {
	if c := lx.peekByte(0); c == '+' || c == '-' {
		lx.index++
	}
	if lx.peekByte(0) == '0' {
		lx.index++
	} else {
		for lx.has(0) && isDigit(lx.peekByte(0)) {
			lx.index++
		}
	}
	if lx.has(1) && lx.peekByte(0) == '.' && isDigit(lx.peekByte(1)) {
		lx.index++
		for lx.has(0) && isDigit(lx.peekByte(0)) {
			lx.index++
		}
		return lx.emit(TokenDecimal), nil
	}
	return lx.emit(TokenInteger), nil
}

func (lx *lexer) lexCharacter() (Token, error) {
	lx.index++
	if !lx.has(0) || lx.peekByte(0) == '\'' || isLineBreak(lx.peekByte(0)) {
		return Token{}, lx.lines.syntaxError(lx.index, "invalid character literal")
	}
	if lx.peekByte(0) == '\\' {
		if err := lx.lexEscape(); err != nil {
			return Token{}, err
		}
	} else {
		lx.advanceRune()
	}
	if !lx.has(0) || lx.peekByte(0) != '\'' {
		return Token{}, lx.lines.syntaxError(lx.index, "unterminated character literal")
	}
	lx.index++
	return lx.emit(TokenCharacter), nil
}

func (lx *lexer) lexString() (Token, error) {
	lx.index++
	for {
		if !lx.has(0) || isLineBreak(lx.peekByte(0)) {
			return Token{}, lx.lines.syntaxError(lx.index, "unterminated string literal")
		}
		switch lx.peekByte(0) {
		case '"':
			lx.index++
			return lx.emit(TokenString), nil
		case '\\':
			if err := lx.lexEscape(); err != nil {
				return Token{}, err
			}
		default:
			lx.advanceRune()
		}
	}
}

func (lx *lexer) lexEscape() error {
	lx.index++
	if !lx.has(0) {
		return lx.lines.syntaxError(lx.index, "unterminated escape sequence")
	}
	if _, ok := escapes[lx.peekByte(0)]; !ok {
		return lx.lines.syntaxError(lx.index-1, "invalid escape sequence")
	}
	lx.index++
	return nil
}

func (lx *lexer) lexOperator() Token {
	c := lx.peekByte(0)
	lx.index++
	if lx.has(0) {
		next := lx.peekByte(0)
		switch {
		case (c == '<' || c == '>' || c == '!' || c == '=') && next == '=':
			lx.index++
		case c == '&' && next == '&', c == '|' && next == '|':
			lx.index++
		}
	}
	if c >= utf8.RuneSelf {
		lx.index = lx.start
		lx.advanceRune()
	}
	return lx.emit(TokenOperator)
}

// operandMayStart reports whether an expression operand, rather than a
// binary operator, is expected after the previous token.
func (lx *lexer) operandMayStart() bool {
	if len(lx.tokens) == 0 {
		return true
	}
	prev := lx.tokens[len(lx.tokens)-1]
	switch prev.Kind {
	case TokenOperator:
		return prev.Literal != ")"
	case TokenIdentifier:
		return operandKeywords[prev.Literal]
	default:
		return false
	}
}

func (lx *lexer) emit(kind TokenKind) Token {
	return Token{Kind: kind, Literal: lx.source[lx.start:lx.index], Offset: lx.start}
}

func (lx *lexer) has(offset int) bool {
	return lx.index+offset < len(lx.source)
}

func (lx *lexer) peekByte(offset int) byte {
	return lx.source[lx.index+offset]
}

func (lx *lexer) advanceRune() {
	_, size := utf8.DecodeRuneInString(lx.source[lx.index:])
	lx.index += size
}

var escapes = map[byte]rune{
	'b':  '\b',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\'': '\'',
	'"':  '"',
	'\\': '\\',
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\b' || c == '\n' || c == '\r' || c == '\t'
}

func isLineBreak(c byte) bool {
	return c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifierPart(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}
