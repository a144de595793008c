package ast

import (
	"math/big"

	"github.com/shopspring/decimal"

	"plc/interpreter-go/pkg/runtime"
)

type NodeType string

const (
	NodeSource               NodeType = "Source"
	NodeField                NodeType = "Field"
	NodeMethod               NodeType = "Method"
	NodeExpressionStatement  NodeType = "ExpressionStatement"
	NodeDeclarationStatement NodeType = "DeclarationStatement"
	NodeAssignmentStatement  NodeType = "AssignmentStatement"
	NodeIfStatement          NodeType = "IfStatement"
	NodeForStatement         NodeType = "ForStatement"
	NodeWhileStatement       NodeType = "WhileStatement"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeNilLiteral           NodeType = "NilLiteral"
	NodeBooleanLiteral       NodeType = "BooleanLiteral"
	NodeIntegerLiteral       NodeType = "IntegerLiteral"
	NodeDecimalLiteral       NodeType = "DecimalLiteral"
	NodeCharLiteral          NodeType = "CharLiteral"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeGroupExpression      NodeType = "GroupExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeAccessExpression     NodeType = "AccessExpression"
	NodeFunctionCall         NodeType = "FunctionCall"
)

// Position is a 1-based line/column plus the 0-based byte offset.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span covers the source text a node was parsed from.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type     NodeType `json:"type"`
	Location Span     `json:"span"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.Location }
func (n *nodeImpl) setSpan(span Span) { n.Location = span }
func (nodeImpl) isNode()              {}

// Marker interfaces. Both families are sealed: only this package can add
// variants, so a type switch over the constructors below is exhaustive.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Expression interface {
	Node
	expressionNode()
	// ResolvedType is the type recorded by the analyzer (TypeAny before analysis).
	ResolvedType() runtime.Type
	SetResolvedType(runtime.Type)
}

type expressionMarker struct {
	resolved runtime.Type
}

func (expressionMarker) expressionNode()                   {}
func (m expressionMarker) ResolvedType() runtime.Type      { return m.resolved }
func (m *expressionMarker) SetResolvedType(t runtime.Type) { m.resolved = t }

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

//-----------------------------------------------------------------------------
// Literals
//-----------------------------------------------------------------------------

type NilLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker
}

func NewNilLiteral() *NilLiteral {
	return &NilLiteral{nodeImpl: newNodeImpl(NodeNilLiteral)}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value *big.Int `json:"value"`
}

func NewIntegerLiteral(value *big.Int) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type DecimalLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value decimal.Decimal `json:"value"`
}

func NewDecimalLiteral(value decimal.Decimal) *DecimalLiteral {
	return &DecimalLiteral{nodeImpl: newNodeImpl(NodeDecimalLiteral), Value: value}
}

type CharLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value rune `json:"value"`
}

func NewCharLiteral(value rune) *CharLiteral {
	return &CharLiteral{nodeImpl: newNodeImpl(NodeCharLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

// Binary operators. AND and OR are accepted by the parser as aliases of the
// logical operators.
const (
	OperatorAnd          = "&&"
	OperatorOr           = "||"
	OperatorLess         = "<"
	OperatorLessEqual    = "<="
	OperatorGreater      = ">"
	OperatorGreaterEqual = ">="
	OperatorEqual        = "=="
	OperatorNotEqual     = "!="
	OperatorAdd          = "+"
	OperatorSubtract     = "-"
	OperatorMultiply     = "*"
	OperatorDivide       = "/"
)

type GroupExpression struct {
	nodeImpl
	expressionMarker

	Expression Expression `json:"expression"`
}

func NewGroupExpression(expr Expression) *GroupExpression {
	return &GroupExpression{nodeImpl: newNodeImpl(NodeGroupExpression), Expression: expr}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// AccessExpression reads a variable, or a field when Receiver is set.
type AccessExpression struct {
	nodeImpl
	expressionMarker

	Receiver Expression `json:"receiver,omitempty"`
	Name     string     `json:"name"`

	Variable *runtime.Variable `json:"-"`
}

func NewAccessExpression(receiver Expression, name string) *AccessExpression {
	return &AccessExpression{nodeImpl: newNodeImpl(NodeAccessExpression), Receiver: receiver, Name: name}
}

// FunctionCall invokes a function, or a method of Receiver when set.
type FunctionCall struct {
	nodeImpl
	expressionMarker

	Receiver  Expression   `json:"receiver,omitempty"`
	Name      string       `json:"name"`
	Arguments []Expression `json:"arguments"`

	Function *runtime.Function `json:"-"`
}

func NewFunctionCall(receiver Expression, name string, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Receiver: receiver, Name: name, Arguments: args}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

// DeclarationStatement introduces a local; TypeName and Value are optional.
type DeclarationStatement struct {
	nodeImpl
	statementMarker

	Name     string     `json:"name"`
	TypeName string     `json:"typeName,omitempty"`
	Value    Expression `json:"value,omitempty"`

	Variable *runtime.Variable `json:"-"`
}

func NewDeclarationStatement(name, typeName string, value Expression) *DeclarationStatement {
	return &DeclarationStatement{nodeImpl: newNodeImpl(NodeDeclarationStatement), Name: name, TypeName: typeName, Value: value}
}

type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Receiver Expression `json:"receiver"`
	Value    Expression `json:"value"`
}

func NewAssignmentStatement(receiver, value Expression) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Receiver: receiver, Value: value}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Else      []Statement `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then, elseBody []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: elseBody}
}

// ForStatement is a C-style loop; Initializer and Increment may be nil.
type ForStatement struct {
	nodeImpl
	statementMarker

	Initializer Statement   `json:"initializer,omitempty"`
	Condition   Expression  `json:"condition"`
	Increment   Statement   `json:"increment,omitempty"`
	Body        []Statement `json:"body"`
}

func NewForStatement(init Statement, condition Expression, increment Statement, body []Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Initializer: init, Condition: condition, Increment: increment, Body: body}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileStatement(condition Expression, body []Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}
