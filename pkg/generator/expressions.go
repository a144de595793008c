package generator

import (
	"fmt"
	"strings"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

var javaOperators = map[string]string{
	"AND": ast.OperatorAnd,
	"OR":  ast.OperatorOr,
}

func (e *emitter) expression(expr ast.Expression) (string, error) {
	switch x := expr.(type) {
	case *ast.NilLiteral:
		return "null", nil
	case *ast.BooleanLiteral:
		if x.Value {
			return "true", nil
		}
		return "false", nil
	case *ast.IntegerLiteral:
		return runtime.Stringify(runtime.IntegerValue{Val: x.Value}), nil
	case *ast.DecimalLiteral:
		return runtime.DecimalString(x.Value), nil
	case *ast.CharLiteral:
		return "'" + escapeJava(string(x.Value), '\'') + "'", nil
	case *ast.StringLiteral:
		return `"` + escapeJava(x.Value, '"') + `"`, nil
	case *ast.GroupExpression:
		inner, err := e.expression(x.Expression)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case *ast.BinaryExpression:
		left, err := e.expression(x.Left)
		if err != nil {
			return "", err
		}
		right, err := e.expression(x.Right)
		if err != nil {
			return "", err
		}
		op := x.Operator
		if alias, ok := javaOperators[op]; ok {
			op = alias
		}
		return left + " " + op + " " + right, nil
	case *ast.AccessExpression:
		if x.Variable == nil {
			return "", fmt.Errorf("%w: access '%s'", ErrUnanalyzed, x.Name)
		}
		prefix, err := e.receiver(x.Receiver)
		if err != nil {
			return "", err
		}
		return prefix + x.Variable.ExternalName, nil
	case *ast.FunctionCall:
		if x.Function == nil {
			return "", fmt.Errorf("%w: call '%s'", ErrUnanalyzed, x.Name)
		}
		prefix, err := e.receiver(x.Receiver)
		if err != nil {
			return "", err
		}
		args := make([]string, len(x.Arguments))
		for idx, arg := range x.Arguments {
			text, err := e.expression(arg)
			if err != nil {
				return "", err
			}
			args[idx] = text
		}
		return prefix + x.Function.ExternalName + "(" + strings.Join(args, ", ") + ")", nil
	case nil:
		return "", fmt.Errorf("generator: missing expression")
	default:
		return "", fmt.Errorf("generator: unsupported expression %T", expr)
	}
}

func (e *emitter) receiver(expr ast.Expression) (string, error) {
	if expr == nil {
		return "", nil
	}
	text, err := e.expression(expr)
	if err != nil {
		return "", err
	}
	return text + ".", nil
}

// escapeJava escapes text for a Java literal delimited by quote.
func escapeJava(text string, quote rune) string {
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case '\b':
			sb.WriteString(`\b`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		case quote:
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
