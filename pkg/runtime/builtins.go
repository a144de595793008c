package runtime

import (
	"fmt"
	"io"
)

const (
	PrintName         = "print"
	PrintExternalName = "System.out.println"
)

// DefinePrint registers print(Any): Nil in scope. With a nil writer the
// function only carries its signature, which is all analysis needs.
func DefinePrint(env *Environment, scope ScopeID, out io.Writer) (*Function, error) {
	var body Invocable
	if out != nil {
		body = func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("print expects 1 argument, got %d", len(args))
			}
			if _, err := io.WriteString(out, Stringify(args[0])+"\n"); err != nil {
				return nil, err
			}
			return Nil, nil
		}
	}
	return env.DefineFunction(scope, PrintName, PrintExternalName, []Type{TypeAny}, TypeNil, body)
}
