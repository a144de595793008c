package typechecker

import (
	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

// pushReturnType records the current method's declared return type.
func (c *Checker) pushReturnType(typ runtime.Type) {
	c.returnTypeStack = append(c.returnTypeStack, typ)
}

// popReturnType restores the previous expected return type.
func (c *Checker) popReturnType() {
	if len(c.returnTypeStack) == 0 {
		return
	}
	c.returnTypeStack = c.returnTypeStack[:len(c.returnTypeStack)-1]
}

// currentReturnType returns the innermost expected return type, if any.
func (c *Checker) currentReturnType() (runtime.Type, bool) {
	if len(c.returnTypeStack) == 0 {
		return runtime.TypeAny, false
	}
	return c.returnTypeStack[len(c.returnTypeStack)-1], true
}

// checkBlock analyzes stmts in a child scope of parent that is released on
// every exit path.
func (c *Checker) checkBlock(parent runtime.ScopeID, stmts []ast.Statement) error {
	scope := c.env.Extend(parent)
	defer c.env.Release(scope)
	return c.checkStatements(scope, stmts)
}

func (c *Checker) checkStatements(scope runtime.ScopeID, stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := c.checkStatement(scope, stmt); err != nil {
			return err
		}
	}
	return nil
}
