package interpreter

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
	"plc/interpreter-go/pkg/typechecker"
)

// evaluate runs src and fails the test if any scope outlives the run.
func evaluate(t *testing.T, src *ast.Source, analyze bool) (runtime.Value, string, error) {
	t.Helper()
	if analyze {
		if err := typechecker.New().CheckSource(src); err != nil {
			t.Fatalf("analysis failed: %v", err)
		}
	}
	var out bytes.Buffer
	interp := New(Options{Output: &out})
	value, err := interp.EvaluateSource(src)
	// Scope ids are reused LIFO, so a fresh scope gets id 0 only if every
	// scope of the run was released.
	if len(interp.frames) != 0 {
		t.Fatalf("frames leaked: depth %d", len(interp.frames))
	}
	if id := interp.env.Extend(runtime.NoScope); id != 0 {
		t.Fatalf("scopes leaked: next scope id %d", id)
	}
	return value, out.String(), err
}

func expectRuntimeKind(t *testing.T, err error, kind ErrorKind) *RuntimeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
	if rerr.Kind != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, rerr.Kind, rerr)
	}
	return rerr
}

func printStmt(expr ast.Expression) ast.Statement {
	return ast.Stmt(ast.Call("print", expr))
}

func TestEvaluateReturnSum(t *testing.T) {
	src := ast.Src(nil, ast.Main(ast.Ret(ast.Bin("+", ast.Int(1), ast.Int(2)))))
	value, _, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runtime.Stringify(value) != "3" {
		t.Fatalf("expected 3, got %s", runtime.Stringify(value))
	}
}

func TestEvaluateFieldAssignment(t *testing.T) {
	src := ast.Src(
		ast.Fields(ast.FieldDef("x", "Integer", ast.Int(5))),
		ast.Main(
			ast.Assign(ast.ID("x"), ast.Int(10)),
			ast.Ret(ast.ID("x")),
		),
	)
	value, _, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runtime.Stringify(value) != "10" {
		t.Fatalf("expected 10, got %s", runtime.Stringify(value))
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	div := ast.Bin("/", ast.Int(1), ast.Int(0))
	src := ast.Src(nil, ast.Main(ast.Ret(div)))
	_, _, err := evaluate(t, src, true)
	rerr := expectRuntimeKind(t, err, DivisionByZero)
	if rerr.Node != div {
		t.Fatalf("expected error on the division node, got %T", rerr.Node)
	}
}

func TestEvaluateForLoopPrints(t *testing.T) {
	src := ast.Src(nil, ast.Main(
		ast.For(
			ast.Let("i", "", ast.Int(0)),
			ast.Bin("<", ast.ID("i"), ast.Int(3)),
			ast.Assign(ast.ID("i"), ast.Bin("+", ast.ID("i"), ast.Int(1))),
			printStmt(ast.ID("i")),
		),
		ast.Ret(ast.Int(0)),
	))
	_, out, err := evaluate(t, src, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0\n1\n2\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateForLoopVariableIsScoped(t *testing.T) {
	src := ast.Src(nil, ast.Main(
		ast.For(ast.Let("i", "", ast.Int(0)), ast.Bool(false), nil, printStmt(ast.ID("i"))),
		ast.Let("i", "", ast.Str("after")),
		printStmt(ast.ID("i")),
		ast.Ret(ast.Int(0)),
	))
	_, out, err := evaluate(t, src, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "after\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateShortCircuit(t *testing.T) {
	boom := ast.Fn("boom", nil, "Boolean",
		printStmt(ast.Str("evaluated")),
		ast.Ret(ast.Bool(true)),
	)
	src := ast.Src(nil,
		boom,
		ast.Main(
			ast.If(ast.Bin("&&", ast.Bool(false), ast.Call("boom")), ast.Block(printStmt(ast.Str("and"))), nil),
			ast.If(ast.Bin("||", ast.Bool(true), ast.Call("boom")), ast.Block(printStmt(ast.Str("or"))), nil),
			ast.If(ast.Bin("&&", ast.Bool(true), ast.Call("boom")), ast.Block(printStmt(ast.Str("both"))), nil),
			ast.Ret(ast.Int(0)),
		),
	)
	_, out, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "or\nevaluated\nboth\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateLogicalOperandTypes(t *testing.T) {
	skipped := ast.Src(nil, ast.Main(
		printStmt(ast.Bin("&&", ast.Bool(false), ast.Int(1))),
		ast.Ret(ast.Int(0)),
	))
	_, out, err := evaluate(t, skipped, false)
	if err != nil || out != "false\n" {
		t.Fatalf("expected short-circuited false, got %q (%v)", out, err)
	}

	bad := ast.Src(nil, ast.Main(ast.Ret(ast.Bin("||", ast.Bool(false), ast.Int(1)))))
	_, _, err = evaluate(t, bad, false)
	expectRuntimeKind(t, err, TypeError)
}

func TestEvaluateReturnRestoresScopes(t *testing.T) {
	f := ast.Fn("f", nil, "Integer",
		ast.Let("x", "Integer", ast.Int(1)),
		ast.While(ast.Bool(true),
			ast.If(ast.Bool(true), ast.Block(ast.Ret(ast.ID("x"))), nil),
		),
		ast.Ret(ast.Int(0)),
	)
	src := ast.Src(nil,
		f,
		ast.Main(
			ast.Let("x", "Integer", ast.Int(5)),
			ast.Let("r", "Integer", ast.Call("f")),
			printStmt(ast.ID("x")),
			printStmt(ast.ID("r")),
			ast.Ret(ast.Int(0)),
		),
	)
	_, out, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "5\n1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateErrorRestoresScopes(t *testing.T) {
	f := ast.Fn("f", []ast.Param{ast.P("n", "Integer")}, "Integer",
		ast.While(ast.Bool(true),
			ast.Let("q", "Integer", ast.Bin("/", ast.Int(10), ast.ID("n"))),
			ast.Assign(ast.ID("n"), ast.Bin("-", ast.ID("n"), ast.Int(1))),
		),
		ast.Ret(ast.Int(0)),
	)
	src := ast.Src(nil, f, ast.Main(ast.Ret(ast.Call("f", ast.Int(2)))))
	_, _, err := evaluate(t, src, true)
	expectRuntimeKind(t, err, DivisionByZero)
}

func countingLoop(limit int64, body ...ast.Statement) ast.Statement {
	return ast.For(
		ast.Let("i", "", ast.Int(0)),
		ast.Bin("<", ast.ID("i"), ast.Int(limit)),
		ast.Assign(ast.ID("i"), ast.Bin("+", ast.ID("i"), ast.Int(1))),
		body...,
	)
}

func TestEvaluateReturnFromForRestoresScopes(t *testing.T) {
	f := ast.Fn("f", nil, "Integer",
		countingLoop(10,
			ast.If(ast.Bin("==", ast.ID("i"), ast.Int(2)), ast.Block(ast.Ret(ast.ID("i"))), nil),
		),
		ast.Ret(ast.Int(-1)),
	)
	src := ast.Src(nil,
		f,
		ast.Main(
			ast.Let("i", "Integer", ast.Int(7)),
			printStmt(ast.Call("f")),
			printStmt(ast.ID("i")),
			ast.Ret(ast.Int(0)),
		),
	)
	_, out, err := evaluate(t, src, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2\n7\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateErrorInForRestoresScopes(t *testing.T) {
	src := ast.Src(nil, ast.Main(
		countingLoop(5,
			printStmt(ast.Bin("/", ast.Int(10), ast.Group(ast.Bin("-", ast.Int(2), ast.ID("i"))))),
		),
		ast.Ret(ast.Int(0)),
	))
	_, out, err := evaluate(t, src, false)
	expectRuntimeKind(t, err, DivisionByZero)
	if out != "5\n10\n" {
		t.Fatalf("expected two iterations before the failure, got %q", out)
	}
}

func TestEvaluateIterationScopesAreFresh(t *testing.T) {
	src := ast.Src(nil, ast.Main(
		ast.Let("n", "Integer", ast.Int(0)),
		ast.While(ast.Bin("<", ast.ID("n"), ast.Int(3)),
			ast.Let("step", "Integer", ast.ID("n")),
			ast.Assign(ast.ID("n"), ast.Bin("+", ast.ID("step"), ast.Int(1))),
		),
		ast.Ret(ast.ID("n")),
	))
	value, _, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runtime.Stringify(value) != "3" {
		t.Fatalf("expected 3, got %s", runtime.Stringify(value))
	}
}

func TestEvaluateRecursion(t *testing.T) {
	fact := ast.Fn("fact", []ast.Param{ast.P("n", "Integer")}, "Integer",
		ast.If(ast.Bin("<=", ast.ID("n"), ast.Int(1)), ast.Block(ast.Ret(ast.Int(1))), nil),
		ast.Ret(ast.Bin("*", ast.ID("n"), ast.Call("fact", ast.Bin("-", ast.ID("n"), ast.Int(1))))),
	)
	src := ast.Src(nil, ast.Main(ast.Ret(ast.Call("fact", ast.Int(20)))), fact)
	value, _, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runtime.Stringify(value) != "2432902008176640000" {
		t.Fatalf("unexpected factorial %s", runtime.Stringify(value))
	}
}

func TestEvaluateMethodsSeeDefiningScopeOnly(t *testing.T) {
	g := ast.Fn("g", nil, "", printStmt(ast.ID("y")))
	src := ast.Src(nil, g, ast.Main(
		ast.Let("y", "", ast.Int(1)),
		ast.Stmt(ast.Call("g")),
		ast.Ret(ast.Int(0)),
	))
	_, _, err := evaluate(t, src, false)
	expectRuntimeKind(t, err, UndefinedVariable)
}

func TestEvaluateReceiverBeforeArguments(t *testing.T) {
	left := ast.Fn("left", nil, "String", printStmt(ast.Str("receiver")), ast.Ret(ast.Str("ab")))
	right := ast.Fn("right", nil, "String", printStmt(ast.Str("argument")), ast.Ret(ast.Str("cd")))
	src := ast.Src(nil, left, right, ast.Main(
		printStmt(ast.MethodCall(ast.Call("left"), "concat", ast.Call("right"))),
		printStmt(ast.MethodCall(ast.Str("abc"), "length")),
		ast.Ret(ast.Int(0)),
	))
	_, out, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "receiver\nargument\nabcd\n3\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateFallingOffReturnsNil(t *testing.T) {
	noop := ast.Fn("noop", nil, "", printStmt(ast.Str("ran")))
	src := ast.Src(nil, noop, ast.Main(
		printStmt(ast.Call("noop")),
		ast.Ret(ast.Int(0)),
	))
	_, out, err := evaluate(t, src, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ran\nnull\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEvaluateRuntimeFailuresOnUnanalyzedTrees(t *testing.T) {
	cases := []struct {
		name string
		src  *ast.Source
		kind ErrorKind
	}{
		{
			name: "missing main",
			src:  ast.Src(nil, ast.Fn("helper", nil, "Integer", ast.Ret(ast.Int(0)))),
			kind: UndefinedFunction,
		},
		{
			name: "constant assignment",
			src: ast.Src(
				ast.Fields(ast.Const("limit", "Integer", ast.Int(1))),
				ast.Main(ast.Assign(ast.ID("limit"), ast.Int(2)), ast.Ret(ast.Int(0))),
			),
			kind: ConstAssignment,
		},
		{
			name: "undefined function",
			src:  ast.Src(nil, ast.Main(ast.Stmt(ast.Call("missing")), ast.Ret(ast.Int(0)))),
			kind: UndefinedFunction,
		},
		{
			name: "duplicate local",
			src:  ast.Src(nil, ast.Main(ast.Let("a", "", ast.Int(1)), ast.Let("a", "", ast.Int(2)), ast.Ret(ast.Int(0)))),
			kind: DuplicateDefinition,
		},
		{
			name: "mixed arithmetic",
			src:  ast.Src(nil, ast.Main(ast.Ret(ast.Bin("+", ast.Int(1), ast.Dec("1.0"))))),
			kind: InvalidOperands,
		},
		{
			name: "mixed comparison",
			src:  ast.Src(nil, ast.Main(ast.Ret(ast.Bin("<", ast.Int(1), ast.Str("1"))))),
			kind: TypeError,
		},
		{
			name: "non boolean condition",
			src:  ast.Src(nil, ast.Main(ast.While(ast.Int(1), printStmt(ast.Int(1))), ast.Ret(ast.Int(0)))),
			kind: TypeError,
		},
		{
			name: "builtin failure",
			src:  ast.Src(nil, ast.Main(printStmt(ast.MethodCall(ast.Str("ab"), "charAt", ast.Int(5))), ast.Ret(ast.Int(0)))),
			kind: InvalidOperands,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := evaluate(t, tc.src, false)
			expectRuntimeKind(t, err, tc.kind)
		})
	}
}

func TestEvaluateTrace(t *testing.T) {
	var trace bytes.Buffer
	interp := New(Options{Output: &bytes.Buffer{}, Trace: log.New(&trace, "", 0)})
	src := ast.Src(nil, ast.Main(ast.Ret(ast.Int(7))))
	if _, err := interp.EvaluateSource(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(trace.String(), "call main/0") || !strings.Contains(trace.String(), "main returned 7") {
		t.Fatalf("unexpected trace %q", trace.String())
	}
}

func TestEvaluateIsRepeatable(t *testing.T) {
	src := ast.Src(
		ast.Fields(ast.FieldDef("count", "Integer", ast.Int(0))),
		ast.Main(
			ast.Assign(ast.ID("count"), ast.Bin("+", ast.ID("count"), ast.Int(1))),
			ast.Ret(ast.ID("count")),
		),
	)
	interp := New(Options{Output: &bytes.Buffer{}})
	for run := 0; run < 2; run++ {
		value, err := interp.EvaluateSource(src)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if runtime.Stringify(value) != "1" {
			t.Fatalf("run %d: fields should be reinitialized, got %s", run, runtime.Stringify(value))
		}
	}
}
