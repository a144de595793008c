package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateDefinition = errors.New("duplicate definition")
	ErrUndefinedVariable   = errors.New("undefined variable")
	ErrUndefinedFunction   = errors.New("undefined function")
)

// ScopeID indexes a scope inside an Environment arena.
type ScopeID int32

// NoScope is the parent of a root scope.
const NoScope ScopeID = -1

// Variable is a named, typed value cell owned by the scope that defines it.
type Variable struct {
	Name         string
	ExternalName string
	Type         Type
	Constant     bool

	value Value
}

// Value returns the current contents of the cell.
func (v *Variable) Value() Value {
	if v.value == nil {
		return Nil
	}
	return v.value
}

// SetValue replaces the contents of the cell. Constness is enforced by callers
// so that each pass can report it in its own error taxonomy.
func (v *Variable) SetValue(val Value) {
	v.value = val
}

// Invocable is the body of a Function.
type Invocable func(args []Value) (Value, error)

// Function is a callable keyed by name and arity.
type Function struct {
	Name           string
	ExternalName   string
	ParameterTypes []Type
	ReturnType     Type

	body Invocable
}

// NewFunction builds a function outside of any scope (member tables, tests).
func NewFunction(name, external string, params []Type, ret Type, body Invocable) *Function {
	return &Function{Name: name, ExternalName: external, ParameterTypes: params, ReturnType: ret, body: body}
}

// Arity is the number of declared parameters.
func (f *Function) Arity() int {
	return len(f.ParameterTypes)
}

// Invoke runs the body. Functions registered only for analysis return Nil.
func (f *Function) Invoke(args []Value) (Value, error) {
	if f.body == nil {
		return Nil, nil
	}
	return f.body(args)
}

type functionKey struct {
	name  string
	arity int
}

type scope struct {
	parent    ScopeID
	variables map[string]*Variable
	functions map[functionKey]*Function
}

// Environment is an arena of lexical scopes. Parents are referenced by index
// and scopes are released in LIFO order, which both passes guarantee.
type Environment struct {
	scopes []scope
}

// NewEnvironment creates an empty arena.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Extend creates a child scope of parent (NoScope for a root) and returns its id.
func (e *Environment) Extend(parent ScopeID) ScopeID {
	e.scopes = append(e.scopes, scope{
		parent:    parent,
		variables: make(map[string]*Variable),
		functions: make(map[functionKey]*Function),
	})
	return ScopeID(len(e.scopes) - 1)
}

// Release discards id and every scope allocated after it.
func (e *Environment) Release(id ScopeID) {
	if id < 0 || int(id) >= len(e.scopes) {
		return
	}
	for i := int(id); i < len(e.scopes); i++ {
		e.scopes[i] = scope{}
	}
	e.scopes = e.scopes[:id]
}

func (e *Environment) valid(id ScopeID) bool {
	return id >= 0 && int(id) < len(e.scopes)
}

// DefineVariable inserts a binding into the scope id. Names already defined in
// that same scope are rejected; shadowing an outer scope is allowed.
func (e *Environment) DefineVariable(id ScopeID, name, external string, typ Type, constant bool, value Value) (*Variable, error) {
	if !e.valid(id) {
		return nil, fmt.Errorf("runtime: invalid scope %d", id)
	}
	s := &e.scopes[id]
	if _, ok := s.variables[name]; ok {
		return nil, fmt.Errorf("%w: variable '%s'", ErrDuplicateDefinition, name)
	}
	if value == nil {
		value = Nil
	}
	v := &Variable{Name: name, ExternalName: external, Type: typ, Constant: constant, value: value}
	s.variables[name] = v
	return v, nil
}

// LookupVariable searches outward from id through the scope chain.
func (e *Environment) LookupVariable(id ScopeID, name string) (*Variable, error) {
	for cur := id; e.valid(cur); cur = e.scopes[cur].parent {
		if v, ok := e.scopes[cur].variables[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w '%s'", ErrUndefinedVariable, name)
}

// DefineFunction registers a function under (name, len(params)) in scope id.
func (e *Environment) DefineFunction(id ScopeID, name, external string, params []Type, ret Type, body Invocable) (*Function, error) {
	if !e.valid(id) {
		return nil, fmt.Errorf("runtime: invalid scope %d", id)
	}
	s := &e.scopes[id]
	key := functionKey{name: name, arity: len(params)}
	if _, ok := s.functions[key]; ok {
		return nil, fmt.Errorf("%w: function '%s/%d'", ErrDuplicateDefinition, name, key.arity)
	}
	fn := NewFunction(name, external, params, ret, body)
	s.functions[key] = fn
	return fn, nil
}

// LookupFunction searches outward from id for (name, arity).
func (e *Environment) LookupFunction(id ScopeID, name string, arity int) (*Function, error) {
	key := functionKey{name: name, arity: arity}
	for cur := id; e.valid(cur); cur = e.scopes[cur].parent {
		if fn, ok := e.scopes[cur].functions[key]; ok {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w '%s/%d'", ErrUndefinedFunction, name, arity)
}
