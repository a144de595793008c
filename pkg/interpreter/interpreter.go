package interpreter

import (
	"fmt"
	"io"
	"log"
	"os"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

// EntryPoint is the method invoked by EvaluateSource.
const EntryPoint = "main"

// Options configures an Interpreter.
type Options struct {
	// Output receives print output. Defaults to os.Stdout.
	Output io.Writer
	// Trace, when set, logs calls and program boundaries.
	Trace *log.Logger
}

// Interpreter walks an analyzed Source tree. The active scope is always the
// top of the frame stack.
type Interpreter struct {
	env    *runtime.Environment
	frames []runtime.ScopeID
	out    io.Writer
	trace  *log.Logger
}

// completion is the outcome of executing a statement.
type completion struct {
	returning bool
	value     runtime.Value
}

var normal = completion{}

// New returns an interpreter writing to opts.Output.
func New(opts Options) *Interpreter {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Interpreter{env: runtime.NewEnvironment(), out: out, trace: opts.Trace}
}

// EvaluateSource initializes fields, registers methods and returns the value
// of main(). Every scope it creates is released before it returns.
func (i *Interpreter) EvaluateSource(src *ast.Source) (runtime.Value, error) {
	if src == nil {
		return nil, fmt.Errorf("interpreter: source is nil")
	}
	i.env = runtime.NewEnvironment()
	i.frames = i.frames[:0]
	global := i.push(runtime.NoScope)
	defer i.pop(global)

	if _, err := runtime.DefinePrint(i.env, global, i.out); err != nil {
		return nil, wrapRuntime(DuplicateDefinition, src, err)
	}
	for _, field := range src.Fields {
		if err := i.defineField(global, field); err != nil {
			return nil, err
		}
	}
	for _, method := range src.Methods {
		if err := i.defineMethod(global, method); err != nil {
			return nil, err
		}
	}

	main, err := i.env.LookupFunction(global, EntryPoint, 0)
	if err != nil {
		return nil, wrapRuntime(UndefinedFunction, src, err)
	}
	i.tracef("run %s/0", EntryPoint)
	result, err := main.Invoke(nil)
	if err != nil {
		return nil, attach(err, src, TypeError)
	}
	i.tracef("%s returned %s", EntryPoint, runtime.Stringify(result))
	return result, nil
}

func (i *Interpreter) defineField(scope runtime.ScopeID, field *ast.Field) error {
	value := runtime.Nil
	if field.Value != nil {
		v, err := i.evaluateExpression(field.Value)
		if err != nil {
			return err
		}
		value = v
	}
	typ, err := declaredType(field.Variable, field.TypeName, value)
	if err != nil {
		return wrapRuntime(TypeError, field, err)
	}
	if _, err := i.env.DefineVariable(scope, field.Name, field.Name, typ, field.Constant, value); err != nil {
		return wrapRuntime(DuplicateDefinition, field, err)
	}
	return nil
}

func (i *Interpreter) defineMethod(scope runtime.ScopeID, method *ast.Method) error {
	params := make([]runtime.Type, len(method.Parameters))
	for idx := range method.Parameters {
		params[idx] = runtime.TypeAny
		if method.Function != nil && idx < len(method.Function.ParameterTypes) {
			params[idx] = method.Function.ParameterTypes[idx]
		}
	}
	ret := runtime.TypeNil
	if method.Function != nil {
		ret = method.Function.ReturnType
	}
	if _, err := i.env.DefineFunction(scope, method.Name, method.Name, params, ret, i.closure(scope, method, params)); err != nil {
		return wrapRuntime(DuplicateDefinition, method, err)
	}
	return nil
}

// closure binds method to the scope it was defined in. Each invocation gets
// a fresh activation scope chained to that scope, not to the caller's.
func (i *Interpreter) closure(defining runtime.ScopeID, method *ast.Method, params []runtime.Type) runtime.Invocable {
	return func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != len(method.Parameters) {
			return nil, runtimeErrorf(UndefinedFunction, method, "'%s' expects %d arguments, got %d", method.Name, len(method.Parameters), len(args))
		}
		i.tracef("call %s/%d", method.Name, len(args))
		activation := i.push(defining)
		defer i.pop(activation)
		for idx, name := range method.Parameters {
			if _, err := i.env.DefineVariable(activation, name, name, params[idx], false, args[idx]); err != nil {
				return nil, wrapRuntime(DuplicateDefinition, method, err)
			}
		}
		done, err := i.executeStatements(method.Statements)
		if err != nil {
			return nil, err
		}
		if done.returning {
			return done.value, nil
		}
		return runtime.Nil, nil
	}
}

// declaredType prefers the analyzed binding, then the written type name,
// then the value itself.
func declaredType(bound *runtime.Variable, typeName string, value runtime.Value) (runtime.Type, error) {
	switch {
	case bound != nil:
		return bound.Type, nil
	case typeName != "":
		return runtime.LookupType(typeName)
	default:
		return runtime.TypeOf(value), nil
	}
}

func (i *Interpreter) push(parent runtime.ScopeID) runtime.ScopeID {
	id := i.env.Extend(parent)
	i.frames = append(i.frames, id)
	return id
}

// pop releases id along with any frame above it.
func (i *Interpreter) pop(id runtime.ScopeID) {
	for len(i.frames) > 0 && i.frames[len(i.frames)-1] >= id {
		i.frames = i.frames[:len(i.frames)-1]
	}
	i.env.Release(id)
}

func (i *Interpreter) current() runtime.ScopeID {
	if len(i.frames) == 0 {
		return runtime.NoScope
	}
	return i.frames[len(i.frames)-1]
}

func (i *Interpreter) tracef(format string, args ...any) {
	if i.trace != nil {
		i.trace.Printf(format, args...)
	}
}
