package ast

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Literal helpers.

func Nil() *NilLiteral {
	return NewNilLiteral()
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(big.NewInt(value))
}

func IntBig(value *big.Int) *IntegerLiteral {
	return NewIntegerLiteral(new(big.Int).Set(value))
}

// Dec parses a decimal literal; the text must be well formed.
func Dec(text string) *DecimalLiteral {
	return NewDecimalLiteral(decimal.RequireFromString(text))
}

func Chr(value rune) *CharLiteral {
	return NewCharLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

// Expression helpers.

func Group(expr Expression) *GroupExpression {
	return NewGroupExpression(expr)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func ID(name string) *AccessExpression {
	return NewAccessExpression(nil, name)
}

func Member(receiver Expression, name string) *AccessExpression {
	return NewAccessExpression(receiver, name)
}

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(nil, name, args)
}

func MethodCall(receiver Expression, name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(receiver, name, args)
}

// Statement helpers.

func Stmt(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Let(name, typeName string, value Expression) *DeclarationStatement {
	return NewDeclarationStatement(name, typeName, value)
}

func Assign(receiver, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(receiver, value)
}

func If(condition Expression, then []Statement, elseBody []Statement) *IfStatement {
	return NewIfStatement(condition, then, elseBody)
}

func For(init Statement, condition Expression, increment Statement, body ...Statement) *ForStatement {
	return NewForStatement(init, condition, increment, body)
}

func While(condition Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Block(stmts ...Statement) []Statement {
	return stmts
}

// Definition helpers.

func Src(fields []*Field, methods ...*Method) *Source {
	return NewSource(fields, methods)
}

func Fields(fields ...*Field) []*Field {
	return fields
}

func FieldDef(name, typeName string, value Expression) *Field {
	return NewField(name, typeName, false, value)
}

func Const(name, typeName string, value Expression) *Field {
	return NewField(name, typeName, true, value)
}

// Param pairs a parameter name with its type name for Fn.
type Param struct {
	Name     string
	TypeName string
}

func P(name, typeName string) Param {
	return Param{Name: name, TypeName: typeName}
}

func Fn(name string, params []Param, returnType string, body ...Statement) *Method {
	var names, types []string
	for _, p := range params {
		names = append(names, p.Name)
		types = append(types, p.TypeName)
	}
	return NewMethod(name, names, types, returnType, body)
}

// Main builds the conventional entry point returning Integer.
func Main(body ...Statement) *Method {
	return Fn("main", nil, "Integer", body...)
}
