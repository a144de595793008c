package typechecker

import (
	"fmt"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

// Checker validates a Source tree and annotates it with resolved types and
// bindings. Analysis stops at the first error.
type Checker struct {
	env             *runtime.Environment
	global          runtime.ScopeID
	returnTypeStack []runtime.Type
}

// New returns a checker instance.
func New() *Checker {
	return &Checker{global: runtime.NoScope}
}

// CheckSource analyzes src. Each call starts from a fresh environment, so an
// already annotated tree can be checked again.
func (c *Checker) CheckSource(src *ast.Source) error {
	if src == nil {
		return fmt.Errorf("typechecker: source is nil")
	}
	c.env = runtime.NewEnvironment()
	c.global = c.env.Extend(runtime.NoScope)
	c.returnTypeStack = nil
	if _, err := runtime.DefinePrint(c.env, c.global, nil); err != nil {
		return fmt.Errorf("typechecker: %w", err)
	}

	for _, field := range src.Fields {
		if err := c.checkField(c.global, field); err != nil {
			return err
		}
	}
	for _, method := range src.Methods {
		if err := c.declareMethod(c.global, method); err != nil {
			return err
		}
	}
	for _, method := range src.Methods {
		if err := c.checkMethodBody(c.global, method); err != nil {
			return err
		}
	}
	return c.validateEntryPoint(src)
}

func (c *Checker) checkField(scope runtime.ScopeID, field *ast.Field) error {
	typ, err := c.resolveType(field, field.TypeName)
	if err != nil {
		return err
	}
	if field.Value != nil {
		valueType, err := c.checkExpression(scope, field.Value)
		if err != nil {
			return err
		}
		if err := c.requireAssignable(field.Value, typ, valueType); err != nil {
			return err
		}
	} else if field.Constant {
		return semanticErrorf(UninitializedConstant, field, "constant field '%s' must be initialized", field.Name)
	}
	variable, err := c.env.DefineVariable(scope, field.Name, field.Name, typ, field.Constant, runtime.Nil)
	if err != nil {
		return wrapSemantic(DuplicateDefinition, field, err)
	}
	field.Variable = variable
	return nil
}

// declareMethod registers the signature ahead of any body so that methods may
// call themselves and each other regardless of order.
func (c *Checker) declareMethod(scope runtime.ScopeID, method *ast.Method) error {
	if len(method.Parameters) != len(method.ParameterTypeNames) {
		return semanticErrorf(MissingType, method, "method '%s' has %d parameters but %d parameter types",
			method.Name, len(method.Parameters), len(method.ParameterTypeNames))
	}
	params := make([]runtime.Type, 0, len(method.ParameterTypeNames))
	for _, name := range method.ParameterTypeNames {
		typ, err := c.resolveType(method, name)
		if err != nil {
			return err
		}
		params = append(params, typ)
	}
	ret := runtime.TypeNil
	if method.ReturnTypeName != "" {
		typ, err := c.resolveType(method, method.ReturnTypeName)
		if err != nil {
			return err
		}
		ret = typ
	}
	fn, err := c.env.DefineFunction(scope, method.Name, method.Name, params, ret, nil)
	if err != nil {
		return wrapSemantic(DuplicateDefinition, method, err)
	}
	method.Function = fn
	return nil
}

func (c *Checker) checkMethodBody(scope runtime.ScopeID, method *ast.Method) error {
	fn := method.Function
	body := c.env.Extend(scope)
	defer c.env.Release(body)
	c.pushReturnType(fn.ReturnType)
	defer c.popReturnType()

	for i, name := range method.Parameters {
		if _, err := c.env.DefineVariable(body, name, name, fn.ParameterTypes[i], false, runtime.Nil); err != nil {
			return wrapSemantic(DuplicateDefinition, method, err)
		}
	}
	return c.checkStatements(body, method.Statements)
}

func (c *Checker) validateEntryPoint(src *ast.Source) error {
	var mains []*ast.Method
	for _, method := range src.Methods {
		if method.Name == "main" {
			mains = append(mains, method)
		}
	}
	switch {
	case len(mains) == 0:
		return semanticErrorf(MissingEntryPoint, src, "no method named 'main'")
	case len(mains) > 1:
		return semanticErrorf(InvalidEntryPoint, mains[1], "'main' is defined %d times", len(mains))
	}
	main := mains[0]
	if len(main.Parameters) != 0 {
		return semanticErrorf(InvalidEntryPoint, main, "'main' must not take parameters")
	}
	if main.Function == nil || main.Function.ReturnType != runtime.TypeInteger {
		return semanticErrorf(InvalidEntryPoint, main, "'main' must return Integer")
	}
	return nil
}

func (c *Checker) resolveType(node ast.Node, name string) (runtime.Type, error) {
	typ, err := runtime.LookupType(name)
	if err != nil {
		return runtime.TypeAny, wrapSemantic(UnknownType, node, err)
	}
	return typ, nil
}

func (c *Checker) requireAssignable(node ast.Node, target, source runtime.Type) error {
	if err := runtime.RequireAssignable(target, source); err != nil {
		return wrapSemantic(TypeMismatch, node, err)
	}
	return nil
}
