package ast

import "plc/interpreter-go/pkg/runtime"

// Definitions

// Source is a whole program: fields first, then methods.
type Source struct {
	nodeImpl

	Fields  []*Field  `json:"fields"`
	Methods []*Method `json:"methods"`
}

func NewSource(fields []*Field, methods []*Method) *Source {
	return &Source{nodeImpl: newNodeImpl(NodeSource), Fields: fields, Methods: methods}
}

// Field is a program-level variable, optionally constant.
type Field struct {
	nodeImpl

	Name     string     `json:"name"`
	TypeName string     `json:"typeName"`
	Constant bool       `json:"constant,omitempty"`
	Value    Expression `json:"value,omitempty"`

	Variable *runtime.Variable `json:"-"`
}

func NewField(name, typeName string, constant bool, value Expression) *Field {
	return &Field{nodeImpl: newNodeImpl(NodeField), Name: name, TypeName: typeName, Constant: constant, Value: value}
}

// Method is a program-level function. An empty ReturnTypeName means Nil.
type Method struct {
	nodeImpl

	Name               string      `json:"name"`
	Parameters         []string    `json:"parameters"`
	ParameterTypeNames []string    `json:"parameterTypeNames"`
	ReturnTypeName     string      `json:"returnTypeName,omitempty"`
	Statements         []Statement `json:"statements"`

	Function *runtime.Function `json:"-"`
}

func NewMethod(name string, params, paramTypes []string, returnTypeName string, statements []Statement) *Method {
	return &Method{
		nodeImpl:           newNodeImpl(NodeMethod),
		Name:               name,
		Parameters:         params,
		ParameterTypeNames: paramTypes,
		ReturnTypeName:     returnTypeName,
		Statements:         statements,
	}
}
