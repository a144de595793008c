package typechecker

import (
	"errors"
	"math/big"
	"testing"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

// program wraps statements in a valid main that returns 0.
func program(fields []*ast.Field, stmts ...ast.Statement) *ast.Source {
	body := append(stmts, ast.Ret(ast.Int(0)))
	return ast.Src(fields, ast.Main(body...))
}

func expectKind(t *testing.T, err error, kind ErrorKind) *SemanticError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected SemanticError, got %T: %v", err, err)
	}
	if semErr.Kind != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, semErr.Kind, semErr)
	}
	return semErr
}

func TestCheckReturnSum(t *testing.T) {
	sum := ast.Bin("+", ast.Int(1), ast.Int(2))
	src := ast.Src(nil, ast.Main(ast.Ret(sum)))
	if err := New().CheckSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.ResolvedType() != runtime.TypeInteger {
		t.Fatalf("expected Integer, got %s", sum.ResolvedType())
	}
	fn := src.Methods[0].Function
	if fn == nil || fn.Name != "main" || fn.Arity() != 0 || fn.ReturnType != runtime.TypeInteger {
		t.Fatalf("unexpected main binding %+v", fn)
	}
}

func TestCheckFieldAssignment(t *testing.T) {
	access := ast.ID("x")
	src := ast.Src(
		ast.Fields(ast.FieldDef("x", "Integer", ast.Int(5))),
		ast.Main(
			ast.Assign(ast.ID("x"), ast.Int(10)),
			ast.Ret(access),
		),
	)
	if err := New().CheckSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if access.Variable == nil || access.Variable != src.Fields[0].Variable {
		t.Fatalf("expected access to bind the field variable")
	}
}

func TestCheckEntryPoint(t *testing.T) {
	cases := []struct {
		name string
		src  *ast.Source
		kind ErrorKind
	}{
		{
			name: "missing",
			src:  ast.Src(nil, ast.Fn("helper", nil, "Integer", ast.Ret(ast.Int(0)))),
			kind: MissingEntryPoint,
		},
		{
			name: "parameters",
			src:  ast.Src(nil, ast.Fn("main", []ast.Param{ast.P("x", "Integer")}, "Integer", ast.Ret(ast.ID("x")))),
			kind: InvalidEntryPoint,
		},
		{
			name: "return type",
			src:  ast.Src(nil, ast.Fn("main", nil, "Decimal", ast.Ret(ast.Dec("1.0")))),
			kind: InvalidEntryPoint,
		},
		{
			name: "no return type",
			src:  ast.Src(nil, ast.Fn("main", nil, "", ast.Stmt(ast.Call("print", ast.Int(1))))),
			kind: InvalidEntryPoint,
		},
		{
			name: "overloaded",
			src: ast.Src(nil,
				ast.Main(ast.Ret(ast.Int(0))),
				ast.Fn("main", []ast.Param{ast.P("x", "Integer")}, "Integer", ast.Ret(ast.ID("x"))),
			),
			kind: InvalidEntryPoint,
		},
		{
			name: "duplicate",
			src:  ast.Src(nil, ast.Main(ast.Ret(ast.Int(0))), ast.Main(ast.Ret(ast.Int(1)))),
			kind: DuplicateDefinition,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectKind(t, New().CheckSource(tc.src), tc.kind)
		})
	}
}

func TestCheckFields(t *testing.T) {
	cases := []struct {
		name  string
		field *ast.Field
		kind  ErrorKind
	}{
		{name: "uninitialized constant", field: ast.Const("limit", "Integer", nil), kind: UninitializedConstant},
		{name: "mismatched initializer", field: ast.FieldDef("x", "Integer", ast.Str("five")), kind: TypeMismatch},
		{name: "unknown type", field: ast.FieldDef("x", "Float", ast.Int(1)), kind: UnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectKind(t, New().CheckSource(program(ast.Fields(tc.field))), tc.kind)
		})
	}

	ok := program(ast.Fields(
		ast.Const("name", "Comparable", ast.Str("plc")),
		ast.FieldDef("anything", "Any", ast.Bool(true)),
		ast.FieldDef("empty", "Integer", nil),
	))
	if err := New().CheckSource(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := ok.Fields[0].Variable; v == nil || !v.Constant || v.Type != runtime.TypeComparable {
		t.Fatalf("unexpected constant binding %+v", v)
	}
}

func TestCheckStatements(t *testing.T) {
	cases := []struct {
		name   string
		fields []*ast.Field
		stmts  []ast.Statement
		kind   ErrorKind
	}{
		{
			name:  "expression statement without call",
			stmts: ast.Block(ast.Let("x", "Integer", ast.Int(1)), ast.Stmt(ast.ID("x"))),
			kind:  InvalidStatement,
		},
		{
			name:  "declaration without type or value",
			stmts: ast.Block(ast.Let("x", "", nil)),
			kind:  MissingType,
		},
		{
			name:  "declaration mismatch",
			stmts: ast.Block(ast.Let("x", "String", ast.Int(1))),
			kind:  TypeMismatch,
		},
		{
			name:  "duplicate local",
			stmts: ast.Block(ast.Let("x", "Integer", ast.Int(1)), ast.Let("x", "Integer", ast.Int(2))),
			kind:  DuplicateDefinition,
		},
		{
			name:  "assignment to literal",
			stmts: ast.Block(ast.Assign(ast.Int(1), ast.Int(2))),
			kind:  InvalidAssignmentTarget,
		},
		{
			name:   "assignment to constant",
			fields: ast.Fields(ast.Const("limit", "Integer", ast.Int(3))),
			stmts:  ast.Block(ast.Assign(ast.ID("limit"), ast.Int(4))),
			kind:   ConstAssignment,
		},
		{
			name:  "assignment mismatch",
			stmts: ast.Block(ast.Let("x", "Integer", ast.Int(1)), ast.Assign(ast.ID("x"), ast.Dec("1.5"))),
			kind:  TypeMismatch,
		},
		{
			name:  "assignment to undefined",
			stmts: ast.Block(ast.Assign(ast.ID("ghost"), ast.Int(1))),
			kind:  UndefinedVariable,
		},
		{
			name:  "if condition not boolean",
			stmts: ast.Block(ast.If(ast.Int(1), ast.Block(ast.Stmt(ast.Call("print", ast.Int(1)))), nil)),
			kind:  TypeMismatch,
		},
		{
			name:  "if with empty body",
			stmts: ast.Block(ast.If(ast.Bool(true), nil, ast.Block(ast.Stmt(ast.Call("print", ast.Int(1)))))),
			kind:  InvalidStatement,
		},
		{
			name:  "while condition not boolean",
			stmts: ast.Block(ast.While(ast.Str("yes"))),
			kind:  TypeMismatch,
		},
		{
			name: "branch local not visible after if",
			stmts: ast.Block(
				ast.If(ast.Bool(true), ast.Block(ast.Let("inner", "Integer", ast.Int(1))), nil),
				ast.Stmt(ast.Call("print", ast.ID("inner"))),
			),
			kind: UndefinedVariable,
		},
		{
			name:  "return mismatch",
			stmts: ast.Block(ast.Ret(ast.Str("zero"))),
			kind:  TypeMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectKind(t, New().CheckSource(program(tc.fields, tc.stmts...)), tc.kind)
		})
	}
}

func TestCheckShadowingInNestedScope(t *testing.T) {
	inner := ast.Let("x", "String", ast.Str("inner"))
	after := ast.ID("x")
	src := program(nil,
		ast.Let("x", "Integer", ast.Int(1)),
		ast.While(ast.Bool(false), inner),
		ast.Stmt(ast.Call("print", after)),
	)
	if err := New().CheckSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.ResolvedType() != runtime.TypeInteger {
		t.Fatalf("expected outer x after the loop, got %s", after.ResolvedType())
	}
	if inner.Variable.Type != runtime.TypeString {
		t.Fatalf("expected inner x to be String, got %s", inner.Variable.Type)
	}
}

func TestCheckForStatement(t *testing.T) {
	printI := ast.Stmt(ast.Call("print", ast.ID("i")))
	cases := []struct {
		name string
		loop *ast.ForStatement
		kind ErrorKind
	}{
		{
			name: "loop variable without declared type",
			loop: ast.For(ast.Let("i", "", ast.Int(0)), ast.Bin("<", ast.ID("i"), ast.Int(3)), nil, printI),
			kind: TypeMismatch,
		},
		{
			name: "loop variable declared Integer",
			loop: ast.For(ast.Let("i", "Integer", ast.Int(0)), ast.Bin("<", ast.ID("i"), ast.Int(3)), nil, printI),
			kind: TypeMismatch,
		},
		{
			name: "condition not boolean",
			loop: ast.For(nil, ast.Int(1), nil, printI),
			kind: TypeMismatch,
		},
		{
			name: "increment type differs from loop variable",
			loop: ast.For(
				ast.Let("i", "Comparable", ast.Int(0)),
				ast.Bin("==", ast.ID("i"), ast.ID("i")),
				ast.Stmt(ast.Call("print", ast.ID("i"))),
				printI,
			),
			kind: TypeMismatch,
		},
		{
			name: "empty body",
			loop: ast.For(nil, ast.Bool(false), nil),
			kind: InvalidStatement,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectKind(t, New().CheckSource(program(nil, tc.loop)), tc.kind)
		})
	}

	valid := program(nil,
		ast.For(
			ast.Let("i", "Comparable", ast.Str("a")),
			ast.Bin("!=", ast.ID("i"), ast.ID("i")),
			ast.Assign(ast.ID("i"), ast.Str("b")),
			ast.Stmt(ast.Call("print", ast.ID("i"))),
		),
		ast.Let("i", "Integer", ast.Int(0)),
	)
	if err := New().CheckSource(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckLiteralRange(t *testing.T) {
	edge := func(text string) *ast.IntegerLiteral {
		v, _ := new(big.Int).SetString(text, 10)
		return ast.IntBig(v)
	}
	cases := []struct {
		name string
		lit  ast.Expression
		ok   bool
		typ  runtime.Type
	}{
		{name: "max int", lit: edge("2147483647"), ok: true, typ: runtime.TypeInteger},
		{name: "min int", lit: edge("-2147483648"), ok: true, typ: runtime.TypeInteger},
		{name: "above max", lit: edge("2147483648"), ok: false},
		{name: "below min", lit: edge("-2147483649"), ok: false},
		{name: "huge", lit: edge("100000000000000000000000"), ok: false},
		{name: "decimal", lit: ast.Dec("123.456"), ok: true, typ: runtime.TypeDecimal},
		{name: "decimal overflow", lit: ast.Dec("1e400"), ok: false},
		{name: "character", lit: ast.Chr('x'), ok: true, typ: runtime.TypeCharacter},
		{name: "string", lit: ast.Str("x"), ok: true, typ: runtime.TypeString},
		{name: "boolean", lit: ast.Bool(false), ok: true, typ: runtime.TypeBoolean},
		{name: "nil", lit: ast.Nil(), ok: true, typ: runtime.TypeNil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := program(ast.Fields(ast.FieldDef("value", "Any", tc.lit)))
			err := New().CheckSource(src)
			if !tc.ok {
				expectKind(t, err, LiteralOutOfRange)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.lit.ResolvedType() != tc.typ {
				t.Fatalf("expected %s, got %s", tc.typ, tc.lit.ResolvedType())
			}
		})
	}
}

func TestCheckBinaryExpressions(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expression
		want runtime.Type
		kind ErrorKind
	}{
		{name: "logical", expr: ast.Bin("&&", ast.Bool(true), ast.Bool(false)), want: runtime.TypeBoolean},
		{name: "logical keyword", expr: ast.Bin("OR", ast.Bool(true), ast.Bool(false)), want: runtime.TypeBoolean},
		{name: "logical non boolean", expr: ast.Bin("||", ast.Bool(true), ast.Int(1)), kind: TypeMismatch},
		{name: "relational", expr: ast.Bin("<", ast.Chr('a'), ast.Chr('b')), want: runtime.TypeBoolean},
		{name: "equality strings", expr: ast.Bin("==", ast.Str("a"), ast.Str("b")), want: runtime.TypeBoolean},
		{name: "relational mixed", expr: ast.Bin("<", ast.Int(1), ast.Dec("1.0")), kind: TypeMismatch},
		{name: "relational boolean", expr: ast.Bin("==", ast.Bool(true), ast.Bool(true)), kind: TypeMismatch},
		{name: "concat", expr: ast.Bin("+", ast.Int(1), ast.Str("a")), want: runtime.TypeString},
		{name: "concat nil", expr: ast.Bin("+", ast.Str("a"), ast.Nil()), want: runtime.TypeString},
		{name: "decimal add", expr: ast.Bin("+", ast.Dec("1.5"), ast.Dec("2.5")), want: runtime.TypeDecimal},
		{name: "mixed add", expr: ast.Bin("+", ast.Int(1), ast.Dec("2.5")), kind: TypeMismatch},
		{name: "non numeric subtract", expr: ast.Bin("-", ast.Chr('a'), ast.Chr('b')), kind: TypeMismatch},
		{name: "integer divide", expr: ast.Bin("/", ast.Int(6), ast.Int(3)), want: runtime.TypeInteger},
		{name: "unknown operator", expr: ast.Bin("%", ast.Int(6), ast.Int(3)), kind: InvalidOperator},
		{name: "group", expr: ast.Group(ast.Bin("*", ast.Int(2), ast.Int(3))), want: runtime.TypeInteger},
		{name: "group of literal", expr: ast.Group(ast.Int(2)), kind: InvalidExpression},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := program(ast.Fields(ast.FieldDef("value", "Any", tc.expr)))
			err := New().CheckSource(src)
			if tc.kind != "" {
				expectKind(t, err, tc.kind)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.expr.ResolvedType() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, tc.expr.ResolvedType())
			}
		})
	}
}

func TestCheckCalls(t *testing.T) {
	square := ast.Fn("square", []ast.Param{ast.P("n", "Integer")}, "Integer",
		ast.Ret(ast.Bin("*", ast.ID("n"), ast.ID("n"))),
	)
	cases := []struct {
		name  string
		stmts []ast.Statement
		kind  ErrorKind
	}{
		{name: "undefined function", stmts: ast.Block(ast.Stmt(ast.Call("missing"))), kind: UndefinedFunction},
		{name: "wrong arity", stmts: ast.Block(ast.Stmt(ast.Call("square", ast.Int(1), ast.Int(2)))), kind: UndefinedFunction},
		{name: "argument mismatch", stmts: ast.Block(ast.Stmt(ast.Call("square", ast.Str("1")))), kind: TypeMismatch},
		{name: "unknown method", stmts: ast.Block(ast.Stmt(ast.MethodCall(ast.Int(1), "length"))), kind: UndefinedFunction},
		{name: "method argument mismatch", stmts: ast.Block(ast.Stmt(ast.MethodCall(ast.Str("abc"), "charAt", ast.Str("0")))), kind: TypeMismatch},
		{name: "field on builtin type", stmts: ast.Block(ast.Stmt(ast.Call("print", ast.Member(ast.Str("abc"), "size")))), kind: UndefinedVariable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := program(nil, tc.stmts...)
			src.Methods = append(src.Methods, square)
			expectKind(t, New().CheckSource(src), tc.kind)
		})
	}

	charAt := ast.MethodCall(ast.Str("abc"), "charAt", ast.Int(1))
	forward := ast.Call("square", ast.Int(3))
	src := ast.Src(nil,
		ast.Main(
			ast.Stmt(ast.Call("print", charAt)),
			ast.Ret(forward),
		),
		square,
	)
	if err := New().CheckSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charAt.ResolvedType() != runtime.TypeCharacter || charAt.Function == nil || charAt.Function.Arity() != 2 {
		t.Fatalf("unexpected charAt binding %+v (%s)", charAt.Function, charAt.ResolvedType())
	}
	if forward.Function != square.Function {
		t.Fatalf("expected forward call to bind square")
	}
}

func TestCheckRecursion(t *testing.T) {
	fact := ast.Fn("fact", []ast.Param{ast.P("n", "Integer")}, "Integer",
		ast.If(ast.Bin("<=", ast.ID("n"), ast.Int(1)), ast.Block(ast.Ret(ast.Int(1))), nil),
		ast.Ret(ast.Bin("*", ast.ID("n"), ast.Call("fact", ast.Bin("-", ast.ID("n"), ast.Int(1))))),
	)
	src := ast.Src(nil, fact, ast.Main(ast.Ret(ast.Call("fact", ast.Int(5)))))
	if err := New().CheckSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckIsRepeatable(t *testing.T) {
	access := ast.ID("total")
	call := ast.Call("print", access)
	src := ast.Src(
		ast.Fields(ast.FieldDef("total", "Decimal", ast.Dec("1.5"))),
		ast.Main(ast.Stmt(call), ast.Ret(ast.Int(0))),
	)
	checker := New()
	if err := checker.CheckSource(src); err != nil {
		t.Fatalf("first check: %v", err)
	}
	firstVar := *access.Variable
	firstFn := *call.Function
	if err := checker.CheckSource(src); err != nil {
		t.Fatalf("second check: %v", err)
	}
	if access.Variable.Name != firstVar.Name || access.Variable.Type != firstVar.Type || access.Variable.Constant != firstVar.Constant {
		t.Fatalf("variable binding changed: %+v vs %+v", firstVar, *access.Variable)
	}
	if call.Function.Name != firstFn.Name || call.Function.ExternalName != firstFn.ExternalName ||
		call.Function.Arity() != firstFn.Arity() || call.Function.ReturnType != firstFn.ReturnType {
		t.Fatalf("function binding changed")
	}
	if access.ResolvedType() != runtime.TypeDecimal || call.ResolvedType() != runtime.TypeNil {
		t.Fatalf("unexpected resolved types %s, %s", access.ResolvedType(), call.ResolvedType())
	}
}

func TestSemanticErrorCarriesNode(t *testing.T) {
	bad := ast.Bin("+", ast.Bool(true), ast.Int(1))
	ast.SetSpan(bad, ast.Span{Start: ast.Position{Offset: 4, Line: 2, Column: 3}})
	err := New().CheckSource(program(nil, ast.Let("x", "", bad)))
	semErr := expectKind(t, err, TypeMismatch)
	if semErr.Node != bad || semErr.Span().Start.Line != 2 {
		t.Fatalf("expected error on the binary node, got %+v", semErr.Span())
	}

	err = New().CheckSource(program(nil, ast.Let("x", "Integer", ast.Str("s"))))
	if !errors.Is(err, runtime.ErrTypeMismatch) {
		t.Fatalf("expected wrapped ErrTypeMismatch, got %v", err)
	}
}
