package interpreter

import (
	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

func (i *Interpreter) executeStatement(node ast.Statement) (completion, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		if _, err := i.evaluateExpression(n.Expression); err != nil {
			return normal, err
		}
		return normal, nil
	case *ast.DeclarationStatement:
		return normal, i.executeDeclaration(n)
	case *ast.AssignmentStatement:
		return normal, i.executeAssignment(n)
	case *ast.IfStatement:
		return i.executeIf(n)
	case *ast.ForStatement:
		return i.executeFor(n)
	case *ast.WhileStatement:
		return i.executeWhile(n)
	case *ast.ReturnStatement:
		return i.executeReturn(n)
	case nil:
		return normal, runtimeErrorf(TypeError, nil, "missing statement")
	default:
		return normal, runtimeErrorf(TypeError, node, "unsupported statement type: %s", node.NodeType())
	}
}

// executeStatements runs stmts in the current scope and stops at the first
// returning completion.
func (i *Interpreter) executeStatements(stmts []ast.Statement) (completion, error) {
	for _, stmt := range stmts {
		done, err := i.executeStatement(stmt)
		if err != nil || done.returning {
			return done, err
		}
	}
	return normal, nil
}

func (i *Interpreter) executeBlock(stmts []ast.Statement) (completion, error) {
	scope := i.push(i.current())
	defer i.pop(scope)
	return i.executeStatements(stmts)
}

func (i *Interpreter) executeDeclaration(stmt *ast.DeclarationStatement) error {
	value := runtime.Nil
	if stmt.Value != nil {
		v, err := i.evaluateExpression(stmt.Value)
		if err != nil {
			return err
		}
		value = v
	}
	typ, err := declaredType(stmt.Variable, stmt.TypeName, value)
	if err != nil {
		return wrapRuntime(TypeError, stmt, err)
	}
	if _, err := i.env.DefineVariable(i.current(), stmt.Name, stmt.Name, typ, false, value); err != nil {
		return wrapRuntime(DuplicateDefinition, stmt, err)
	}
	return nil
}

func (i *Interpreter) executeAssignment(stmt *ast.AssignmentStatement) error {
	access, ok := stmt.Receiver.(*ast.AccessExpression)
	if !ok {
		return runtimeErrorf(TypeError, stmt, "cannot assign to %s", stmt.Receiver.NodeType())
	}
	variable, err := i.resolveAccess(access)
	if err != nil {
		return err
	}
	if variable.Constant {
		return runtimeErrorf(ConstAssignment, stmt, "cannot assign to constant '%s'", access.Name)
	}
	value, err := i.evaluateExpression(stmt.Value)
	if err != nil {
		return err
	}
	variable.SetValue(value)
	return nil
}

func (i *Interpreter) executeIf(stmt *ast.IfStatement) (completion, error) {
	cond, err := i.evaluateCondition(stmt.Condition)
	if err != nil {
		return normal, err
	}
	if cond {
		return i.executeBlock(stmt.Then)
	}
	return i.executeBlock(stmt.Else)
}

// executeFor keeps the loop variable in a header scope; each iteration body
// gets its own child of it.
func (i *Interpreter) executeFor(stmt *ast.ForStatement) (completion, error) {
	header := i.push(i.current())
	defer i.pop(header)

	if stmt.Initializer != nil {
		if _, err := i.executeStatement(stmt.Initializer); err != nil {
			return normal, err
		}
	}
	for {
		cond, err := i.evaluateCondition(stmt.Condition)
		if err != nil {
			return normal, err
		}
		if !cond {
			return normal, nil
		}
		done, err := i.executeBlock(stmt.Body)
		if err != nil || done.returning {
			return done, err
		}
		if stmt.Increment != nil {
			if _, err := i.executeStatement(stmt.Increment); err != nil {
				return normal, err
			}
		}
	}
}

func (i *Interpreter) executeWhile(stmt *ast.WhileStatement) (completion, error) {
	for {
		cond, err := i.evaluateCondition(stmt.Condition)
		if err != nil {
			return normal, err
		}
		if !cond {
			return normal, nil
		}
		done, err := i.executeBlock(stmt.Body)
		if err != nil || done.returning {
			return done, err
		}
	}
}

func (i *Interpreter) executeReturn(stmt *ast.ReturnStatement) (completion, error) {
	value := runtime.Nil
	if stmt.Value != nil {
		v, err := i.evaluateExpression(stmt.Value)
		if err != nil {
			return normal, err
		}
		value = v
	}
	return completion{returning: true, value: value}, nil
}

func (i *Interpreter) evaluateCondition(expr ast.Expression) (bool, error) {
	value, err := i.evaluateExpression(expr)
	if err != nil {
		return false, err
	}
	b, ok := value.(runtime.BoolValue)
	if !ok {
		return false, runtimeErrorf(TypeError, expr, "condition must be Boolean, got %s", value.Kind())
	}
	return b.Val, nil
}
