package parser

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"plc/interpreter-go/pkg/ast"
)

var logicalOperators = map[string]string{
	"&&":  ast.OperatorAnd,
	"||":  ast.OperatorOr,
	"AND": ast.OperatorAnd,
	"OR":  ast.OperatorOr,
}

var (
	relationalOperators     = []string{"<", "<=", ">", ">=", "==", "!="}
	additiveOperators       = []string{"+", "-"}
	multiplicativeOperators = []string{"*", "/"}
)

var reservedWords = map[string]bool{
	"LET": true, "CONST": true, "DEF": true, "DO": true, "END": true,
	"IF": true, "ELSE": true, "FOR": true, "WHILE": true, "RETURN": true,
	"NIL": true, "TRUE": true, "FALSE": true, "AND": true, "OR": true,
}

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	tokens []Token
	index  int
	lines  lineIndex
	end    int
}

// ParseSource lexes and parses a complete program.
func ParseSource(source string) (*ast.Source, error) {
	p, err := New(source)
	if err != nil {
		return nil, err
	}
	return p.ParseSource()
}

// New lexes source and returns a parser positioned at its first token.
func New(source string) (*Parser, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: tokens, lines: newLineIndex(source), end: len(source)}, nil
}

// ParseSource parses `field* method*` and requires every token to be consumed.
func (p *Parser) ParseSource() (*ast.Source, error) {
	start := p.offset()
	fields := make([]*ast.Field, 0)
	methods := make([]*ast.Method, 0)
	for p.peek("LET") {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	for p.peek("DEF") {
		method, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if p.has(0) {
		return nil, p.errorf("unexpected token %q", p.current().Literal)
	}
	src := ast.NewSource(fields, methods)
	p.annotate(src, start)
	return src, nil
}

// ParseExpression parses a single expression and requires every token to be
// consumed.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.has(0) {
		return nil, p.errorf("unexpected token %q", p.current().Literal)
	}
	return expr, nil
}

func (p *Parser) parseField() (*ast.Field, error) {
	start := p.offset()
	p.match("LET")
	constant := p.match("CONST")
	name, err := p.expectIdentifier("field name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	typeName, err := p.expectIdentifier("field type")
	if err != nil {
		return nil, err
	}
	var value ast.Expression
	if p.match("=") {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	field := ast.NewField(name, typeName, constant, value)
	p.annotate(field, start)
	return field, nil
}

func (p *Parser) parseMethod() (*ast.Method, error) {
	start := p.offset()
	p.match("DEF")
	name, err := p.expectIdentifier("method name")
	if err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var params, paramTypes []string
	if !p.match(")") {
		for {
			param, err := p.expectIdentifier("parameter name")
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			paramType, err := p.expectIdentifier("parameter type")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			paramTypes = append(paramTypes, paramType)
			if p.match(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	returnType := ""
	if p.match(":") {
		if returnType, err = p.expectIdentifier("return type"); err != nil {
			return nil, err
		}
	}
	if err := p.expect("DO"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock("END")
	if err != nil {
		return nil, err
	}
	if err := p.expect("END"); err != nil {
		return nil, err
	}
	method := ast.NewMethod(name, params, paramTypes, returnType, body)
	p.annotate(method, start)
	return method, nil
}

// parseBlock parses statements until one of the terminators is next. The
// terminator itself is not consumed.
func (p *Parser) parseBlock(terminators ...string) ([]ast.Statement, error) {
	stmts := make([]ast.Statement, 0)
	for {
		if !p.has(0) {
			return nil, p.errorf("expected %s", strings.Join(terminators, " or "))
		}
		for _, term := range terminators {
			if p.peek(term) {
				return stmts, nil
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.peek("LET"):
		start := p.offset()
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		p.annotate(decl, start)
		return decl, nil
	case p.peek("IF"):
		return p.parseIf()
	case p.peek("FOR"):
		return p.parseFor()
	case p.peek("WHILE"):
		return p.parseWhile()
	case p.peek("RETURN"):
		return p.parseReturn()
	}
	start := p.offset()
	stmt, err := p.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	p.annotate(stmt, start)
	return stmt, nil
}

// parseDeclaration parses `LET id (: type)? (= expr)?` without the terminator.
func (p *Parser) parseDeclaration() (*ast.DeclarationStatement, error) {
	start := p.offset()
	p.match("LET")
	name, err := p.expectIdentifier("variable name")
	if err != nil {
		return nil, err
	}
	typeName := ""
	if p.match(":") {
		if typeName, err = p.expectIdentifier("variable type"); err != nil {
			return nil, err
		}
	}
	var value ast.Expression
	if p.match("=") {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	decl := ast.NewDeclarationStatement(name, typeName, value)
	p.annotate(decl, start)
	return decl, nil
}

// parseSimpleStatement parses `expr (= expr)?` without the terminator.
func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	start := p.offset()
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	var stmt ast.Statement
	if p.match("=") {
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt = ast.NewAssignmentStatement(left, right)
	} else {
		stmt = ast.NewExpressionStatement(left)
	}
	p.annotate(stmt, start)
	return stmt, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.offset()
	p.match("IF")
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect("DO"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock("ELSE", "END")
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Statement
	if p.match("ELSE") {
		if elseBody, err = p.parseBlock("END"); err != nil {
			return nil, err
		}
	}
	if err := p.expect("END"); err != nil {
		return nil, err
	}
	stmt := ast.NewIfStatement(condition, then, elseBody)
	p.annotate(stmt, start)
	return stmt, nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	start := p.offset()
	p.match("FOR")
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var (
		init      ast.Statement
		increment ast.Statement
		err       error
	)
	if p.peek("LET") {
		if init, err = p.parseDeclaration(); err != nil {
			return nil, err
		}
	} else if !p.peek(";") {
		if init, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	if !p.peek(")") {
		if increment, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	p.match("DO")
	body, err := p.parseBlock("END")
	if err != nil {
		return nil, err
	}
	if err := p.expect("END"); err != nil {
		return nil, err
	}
	stmt := ast.NewForStatement(init, condition, increment, body)
	p.annotate(stmt, start)
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.offset()
	p.match("WHILE")
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect("DO"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock("END")
	if err != nil {
		return nil, err
	}
	if err := p.expect("END"); err != nil {
		return nil, err
	}
	stmt := ast.NewWhileStatement(condition, body)
	p.annotate(stmt, start)
	return stmt, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.offset()
	p.match("RETURN")
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	stmt := ast.NewReturnStatement(value)
	p.annotate(stmt, start)
	return stmt, nil
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseLogical()
}

func (p *Parser) parseLogical() (ast.Expression, error) {
	start := p.offset()
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.has(0) {
		op, ok := logicalOperators[p.current().Literal]
		if !ok || p.current().Kind == TokenString {
			break
		}
		p.index++
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = p.binary(op, left, right, start)
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.parseBinaryLevel(relationalOperators, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinaryLevel(additiveOperators, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinaryLevel(multiplicativeOperators, p.parseSecondary)
}

// parseBinaryLevel parses a left-associative chain of operators at one
// precedence level.
func (p *Parser) parseBinaryLevel(operators []string, next func() (ast.Expression, error)) (ast.Expression, error) {
	start := p.offset()
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOperator(operators)
		if !ok {
			return left, nil
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = p.binary(op, left, right, start)
	}
}

func (p *Parser) binary(op string, left, right ast.Expression, start int) ast.Expression {
	expr := ast.NewBinaryExpression(op, left, right)
	p.annotate(expr, start)
	return expr
}

func (p *Parser) parseSecondary() (ast.Expression, error) {
	start := p.offset()
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peekOperator(".") {
		p.index++
		name, err := p.expectIdentifier("member name")
		if err != nil {
			return nil, err
		}
		if p.peekOperator("(") {
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			call := ast.NewFunctionCall(expr, name, args)
			p.annotate(call, start)
			expr = call
			continue
		}
		access := ast.NewAccessExpression(expr, name)
		p.annotate(access, start)
		expr = access
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	if !p.has(0) {
		return nil, p.errorf("expected expression")
	}
	start := p.offset()
	tok := p.current()
	var expr ast.Expression
	switch tok.Kind {
	case TokenIdentifier:
		switch tok.Literal {
		case "NIL":
			p.index++
			expr = ast.NewNilLiteral()
		case "TRUE", "FALSE":
			p.index++
			expr = ast.NewBooleanLiteral(tok.Literal == "TRUE")
		default:
			if reservedWords[tok.Literal] {
				return nil, p.errorf("unexpected keyword %q", tok.Literal)
			}
			p.index++
			if p.peekOperator("(") {
				args, err := p.parseArguments()
				if err != nil {
					return nil, err
				}
				expr = ast.NewFunctionCall(nil, tok.Literal, args)
			} else {
				expr = ast.NewAccessExpression(nil, tok.Literal)
			}
		}
	case TokenInteger:
		value, ok := new(big.Int).SetString(tok.Literal, 10)
		if !ok {
			return nil, p.errorf("invalid integer literal %q", tok.Literal)
		}
		p.index++
		expr = ast.NewIntegerLiteral(value)
	case TokenDecimal:
		value, err := decimal.NewFromString(tok.Literal)
		if err != nil {
			return nil, p.errorf("invalid decimal literal %q", tok.Literal)
		}
		p.index++
		expr = ast.NewDecimalLiteral(value)
	case TokenCharacter:
		text, err := p.decodeQuoted(tok)
		if err != nil {
			return nil, err
		}
		r, size := utf8.DecodeRuneInString(text)
		if size != len(text) {
			return nil, p.errorf("invalid character literal %s", tok.Literal)
		}
		p.index++
		expr = ast.NewCharLiteral(r)
	case TokenString:
		text, err := p.decodeQuoted(tok)
		if err != nil {
			return nil, err
		}
		p.index++
		expr = ast.NewStringLiteral(text)
	case TokenOperator:
		if tok.Literal != "(" {
			return nil, p.errorf("unexpected token %q", tok.Literal)
		}
		p.index++
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		expr = ast.NewGroupExpression(inner)
	default:
		return nil, p.errorf("unexpected token %q", tok.Literal)
	}
	p.annotate(expr, start)
	return expr, nil
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	args := make([]ast.Expression, 0)
	if p.match(")") {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.match(")") {
			return args, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// decodeQuoted strips the delimiters of a character or string token and
// resolves its escapes.
func (p *Parser) decodeQuoted(tok Token) (string, error) {
	raw := tok.Literal[1 : len(tok.Literal)-1]
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		if i >= len(raw) {
			return "", p.lines.syntaxError(tok.Offset, "unterminated escape sequence")
		}
		r, ok := escapes[raw[i]]
		if !ok {
			return "", p.lines.syntaxError(tok.Offset+i, "invalid escape sequence")
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func (p *Parser) annotate(node ast.Node, start int) {
	end := p.end
	if p.index > 0 && p.index <= len(p.tokens) {
		end = p.tokens[p.index-1].End()
	}
	ast.SetSpan(node, p.lines.span(start, end))
}

func (p *Parser) has(offset int) bool {
	return p.index+offset < len(p.tokens)
}

func (p *Parser) current() Token {
	return p.tokens[p.index]
}

// offset is the byte offset of the next token, or the end of input.
func (p *Parser) offset() int {
	if p.has(0) {
		return p.current().Offset
	}
	return p.end
}

// peek matches the literal text of the next identifier or operator token.
func (p *Parser) peek(literal string) bool {
	if !p.has(0) {
		return false
	}
	tok := p.current()
	return (tok.Kind == TokenIdentifier || tok.Kind == TokenOperator) && tok.Literal == literal
}

func (p *Parser) peekOperator(literal string) bool {
	return p.has(0) && p.current().Kind == TokenOperator && p.current().Literal == literal
}

func (p *Parser) match(literal string) bool {
	if p.peek(literal) {
		p.index++
		return true
	}
	return false
}

func (p *Parser) matchOperator(operators []string) (string, bool) {
	for _, op := range operators {
		if p.peekOperator(op) {
			p.index++
			return op, true
		}
	}
	return "", false
}

func (p *Parser) expect(literal string) error {
	if p.match(literal) {
		return nil
	}
	if p.has(0) {
		return p.errorf("expected %q but found %q", literal, p.current().Literal)
	}
	return p.errorf("expected %q but reached end of input", literal)
}

func (p *Parser) expectIdentifier(what string) (string, error) {
	if !p.has(0) || p.current().Kind != TokenIdentifier || reservedWords[p.current().Literal] {
		if p.has(0) {
			return "", p.errorf("expected %s but found %q", what, p.current().Literal)
		}
		return "", p.errorf("expected %s but reached end of input", what)
	}
	name := p.current().Literal
	p.index++
	return name, nil
}

func (p *Parser) errorf(format string, args ...any) *SyntaxError {
	return p.lines.syntaxError(p.offset(), fmt.Sprintf(format, args...))
}
