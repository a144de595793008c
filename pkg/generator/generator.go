package generator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

// ErrUnanalyzed reports a node that is missing the type or binding the
// analyzer attaches. The generator makes no decisions of its own.
var ErrUnanalyzed = errors.New("generator: node has not been analyzed")

// Generate writes src as a Java class named Main. src must have passed the
// analyzer.
func Generate(w io.Writer, src *ast.Source) error {
	e := newEmitter()
	if err := e.source(src); err != nil {
		return err
	}
	_, err := io.WriteString(w, e.String())
	return err
}

// Render returns the Java text for one analyzed node at indentation zero.
func Render(node ast.Node) (string, error) {
	e := newEmitter()
	var err error
	switch n := node.(type) {
	case *ast.Source:
		err = e.source(n)
	case *ast.Field:
		err = e.field(n)
	case *ast.Method:
		err = e.method(n)
	case ast.Statement:
		err = e.statement(n)
	case ast.Expression:
		var text string
		if text, err = e.expression(n); err == nil {
			e.write(text)
		}
	default:
		err = fmt.Errorf("generator: unsupported node %T", node)
	}
	if err != nil {
		return "", err
	}
	return e.String(), nil
}

type emitter struct {
	sb    *strings.Builder
	level int
}

func newEmitter() *emitter {
	return &emitter{sb: &strings.Builder{}}
}

func (e *emitter) String() string {
	return e.sb.String()
}

func (e *emitter) write(parts ...string) {
	for _, part := range parts {
		e.sb.WriteString(part)
	}
}

// newline starts a line at the current indentation.
func (e *emitter) newline() {
	e.sb.WriteString("\n")
	e.sb.WriteString(strings.Repeat("    ", e.level))
}

func (e *emitter) blankLine() {
	e.sb.WriteString("\n")
}

func (e *emitter) source(src *ast.Source) error {
	e.write("public class Main {")
	e.level++
	if len(src.Fields) > 0 {
		e.blankLine()
		for _, field := range src.Fields {
			e.newline()
			if err := e.field(field); err != nil {
				return err
			}
		}
	}
	if err := e.methods(src.Methods, false); err != nil {
		return err
	}

	e.blankLine()
	e.newline()
	e.write("public static void main(String[] args) {")
	e.level++
	e.newline()
	e.write("System.exit(new Main().main());")
	e.level--
	e.newline()
	e.write("}")

	if err := e.methods(src.Methods, true); err != nil {
		return err
	}
	e.level--
	e.blankLine()
	e.newline()
	e.write("}")
	return nil
}

// methods emits either the entry point or every other method, each preceded
// by a blank line.
func (e *emitter) methods(methods []*ast.Method, entry bool) error {
	for _, method := range methods {
		if (method.Name == "main") != entry {
			continue
		}
		e.blankLine()
		e.newline()
		if err := e.method(method); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) field(field *ast.Field) error {
	if field.Variable == nil {
		return fmt.Errorf("%w: field '%s'", ErrUnanalyzed, field.Name)
	}
	if field.Constant {
		e.write("final ")
	}
	e.write(field.Variable.Type.JvmName(), " ", field.Variable.ExternalName)
	if field.Value != nil {
		value, err := e.expression(field.Value)
		if err != nil {
			return err
		}
		e.write(" = ", value)
	}
	e.write(";")
	return nil
}

func (e *emitter) method(method *ast.Method) error {
	fn := method.Function
	if fn == nil {
		return fmt.Errorf("%w: method '%s'", ErrUnanalyzed, method.Name)
	}
	ret := "void"
	if fn.ReturnType != runtime.TypeNil {
		ret = fn.ReturnType.JvmName()
	}
	params := make([]string, len(method.Parameters))
	for idx, name := range method.Parameters {
		params[idx] = fn.ParameterTypes[idx].JvmName() + " " + name
	}
	e.write(ret, " ", fn.ExternalName, "(", strings.Join(params, ", "), ") {")
	return e.block(method.Statements)
}

// block emits stmts one level deeper and closes the brace opened by the
// caller. An empty block stays on one line.
func (e *emitter) block(stmts []ast.Statement) error {
	if len(stmts) == 0 {
		e.write("}")
		return nil
	}
	e.level++
	for _, stmt := range stmts {
		e.newline()
		if err := e.statement(stmt); err != nil {
			return err
		}
	}
	e.level--
	e.newline()
	e.write("}")
	return nil
}
