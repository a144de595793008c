package typechecker

import (
	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

func (c *Checker) checkStatement(scope runtime.ScopeID, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return c.checkExpressionStatement(scope, s)
	case *ast.DeclarationStatement:
		return c.checkDeclaration(scope, s)
	case *ast.AssignmentStatement:
		return c.checkAssignment(scope, s)
	case *ast.IfStatement:
		return c.checkIf(scope, s)
	case *ast.ForStatement:
		return c.checkFor(scope, s)
	case *ast.WhileStatement:
		return c.checkWhile(scope, s)
	case *ast.ReturnStatement:
		return c.checkReturn(scope, s)
	case nil:
		return semanticErrorf(InvalidStatement, nil, "missing statement")
	default:
		return semanticErrorf(InvalidStatement, stmt, "unsupported statement %T", stmt)
	}
}

func (c *Checker) checkExpressionStatement(scope runtime.ScopeID, stmt *ast.ExpressionStatement) error {
	if _, ok := stmt.Expression.(*ast.FunctionCall); !ok {
		return semanticErrorf(InvalidStatement, stmt, "expression statement must be a function call")
	}
	_, err := c.checkExpression(scope, stmt.Expression)
	return err
}

func (c *Checker) checkDeclaration(scope runtime.ScopeID, stmt *ast.DeclarationStatement) error {
	var valueType runtime.Type
	if stmt.Value != nil {
		t, err := c.checkExpression(scope, stmt.Value)
		if err != nil {
			return err
		}
		valueType = t
	}

	var typ runtime.Type
	switch {
	case stmt.TypeName != "":
		t, err := c.resolveType(stmt, stmt.TypeName)
		if err != nil {
			return err
		}
		typ = t
		if stmt.Value != nil {
			if err := c.requireAssignable(stmt.Value, typ, valueType); err != nil {
				return err
			}
		}
	case stmt.Value != nil:
		typ = valueType
	default:
		return semanticErrorf(MissingType, stmt, "variable '%s' needs a type or an initial value", stmt.Name)
	}

	variable, err := c.env.DefineVariable(scope, stmt.Name, stmt.Name, typ, false, runtime.Nil)
	if err != nil {
		return wrapSemantic(DuplicateDefinition, stmt, err)
	}
	stmt.Variable = variable
	return nil
}

func (c *Checker) checkAssignment(scope runtime.ScopeID, stmt *ast.AssignmentStatement) error {
	access, ok := stmt.Receiver.(*ast.AccessExpression)
	if !ok {
		return semanticErrorf(InvalidAssignmentTarget, stmt, "assignment target must be a variable or field")
	}
	if _, err := c.checkExpression(scope, access); err != nil {
		return err
	}
	if access.Variable.Constant {
		return semanticErrorf(ConstAssignment, stmt, "cannot assign to constant '%s'", access.Name)
	}
	valueType, err := c.checkExpression(scope, stmt.Value)
	if err != nil {
		return err
	}
	return c.requireAssignable(stmt.Value, access.Variable.Type, valueType)
}

func (c *Checker) checkIf(scope runtime.ScopeID, stmt *ast.IfStatement) error {
	if err := c.requireCondition(scope, stmt.Condition); err != nil {
		return err
	}
	if len(stmt.Then) == 0 {
		return semanticErrorf(InvalidStatement, stmt, "if statement needs at least one statement in its body")
	}
	if err := c.checkBlock(scope, stmt.Then); err != nil {
		return err
	}
	return c.checkBlock(scope, stmt.Else)
}

// checkFor analyzes the header in its own scope so the loop variable is
// visible to the condition, increment and body but not after the loop.
func (c *Checker) checkFor(scope runtime.ScopeID, stmt *ast.ForStatement) error {
	header := c.env.Extend(scope)
	defer c.env.Release(header)

	decl, declared := stmt.Initializer.(*ast.DeclarationStatement)
	if stmt.Initializer != nil {
		if err := c.checkStatement(header, stmt.Initializer); err != nil {
			return err
		}
		if declared {
			if decl.TypeName == "" || decl.Variable.Type != runtime.TypeComparable {
				return semanticErrorf(TypeMismatch, decl, "loop variable '%s' must be declared Comparable", decl.Name)
			}
		}
	}
	if err := c.requireCondition(header, stmt.Condition); err != nil {
		return err
	}
	if stmt.Increment != nil {
		if err := c.checkStatement(header, stmt.Increment); err != nil {
			return err
		}
		if exprStmt, ok := stmt.Increment.(*ast.ExpressionStatement); ok && declared {
			if got := exprStmt.Expression.ResolvedType(); got != decl.Variable.Type {
				return semanticErrorf(TypeMismatch, exprStmt, "increment has type %s but loop variable '%s' is %s",
					got, decl.Name, decl.Variable.Type)
			}
		}
	}
	if len(stmt.Body) == 0 {
		return semanticErrorf(InvalidStatement, stmt, "for statement needs at least one statement in its body")
	}
	return c.checkBlock(header, stmt.Body)
}

func (c *Checker) checkWhile(scope runtime.ScopeID, stmt *ast.WhileStatement) error {
	if err := c.requireCondition(scope, stmt.Condition); err != nil {
		return err
	}
	return c.checkBlock(scope, stmt.Body)
}

func (c *Checker) checkReturn(scope runtime.ScopeID, stmt *ast.ReturnStatement) error {
	expected, ok := c.currentReturnType()
	if !ok {
		return semanticErrorf(InvalidStatement, stmt, "return outside of a method")
	}
	valueType := runtime.TypeNil
	if stmt.Value != nil {
		t, err := c.checkExpression(scope, stmt.Value)
		if err != nil {
			return err
		}
		valueType = t
	}
	return c.requireAssignable(stmt, expected, valueType)
}

func (c *Checker) requireCondition(scope runtime.ScopeID, cond ast.Expression) error {
	if cond == nil {
		return semanticErrorf(InvalidExpression, nil, "missing condition")
	}
	typ, err := c.checkExpression(scope, cond)
	if err != nil {
		return err
	}
	if typ != runtime.TypeBoolean {
		return semanticErrorf(TypeMismatch, cond, "condition must be Boolean, got %s", typ)
	}
	return nil
}
