package generator

import (
	"fmt"

	"plc/interpreter-go/pkg/ast"
)

func (e *emitter) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement, *ast.DeclarationStatement, *ast.AssignmentStatement:
		text, err := e.clause(s)
		if err != nil {
			return err
		}
		e.write(text, ";")
		return nil
	case *ast.IfStatement:
		cond, err := e.expression(s.Condition)
		if err != nil {
			return err
		}
		e.write("if (", cond, ") {")
		if err := e.block(s.Then); err != nil {
			return err
		}
		if len(s.Else) > 0 {
			e.write(" else {")
			return e.block(s.Else)
		}
		return nil
	case *ast.ForStatement:
		return e.forStatement(s)
	case *ast.WhileStatement:
		cond, err := e.expression(s.Condition)
		if err != nil {
			return err
		}
		e.write("while (", cond, ") {")
		return e.block(s.Body)
	case *ast.ReturnStatement:
		if s.Value == nil {
			e.write("return;")
			return nil
		}
		value, err := e.expression(s.Value)
		if err != nil {
			return err
		}
		e.write("return ", value, ";")
		return nil
	default:
		return fmt.Errorf("generator: unsupported statement %T", stmt)
	}
}

// forStatement pads the header inside the parentheses:
// `for ( init; cond; update ) {` and `for ( ; cond; ) {`.
func (e *emitter) forStatement(s *ast.ForStatement) error {
	init := ""
	if s.Initializer != nil {
		text, err := e.clause(s.Initializer)
		if err != nil {
			return err
		}
		init = text
	}
	cond, err := e.expression(s.Condition)
	if err != nil {
		return err
	}
	e.write("for ( ", init, "; ", cond, ";")
	if s.Increment != nil {
		update, err := e.clause(s.Increment)
		if err != nil {
			return err
		}
		e.write(" ", update)
	}
	e.write(" ) {")
	return e.block(s.Body)
}

// clause renders a simple statement without its terminator.
func (e *emitter) clause(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return e.expression(s.Expression)
	case *ast.DeclarationStatement:
		if s.Variable == nil {
			return "", fmt.Errorf("%w: declaration '%s'", ErrUnanalyzed, s.Name)
		}
		text := s.Variable.Type.JvmName() + " " + s.Variable.ExternalName
		if s.Value != nil {
			value, err := e.expression(s.Value)
			if err != nil {
				return "", err
			}
			text += " = " + value
		}
		return text, nil
	case *ast.AssignmentStatement:
		receiver, err := e.expression(s.Receiver)
		if err != nil {
			return "", err
		}
		value, err := e.expression(s.Value)
		if err != nil {
			return "", err
		}
		return receiver + " = " + value, nil
	default:
		return "", fmt.Errorf("generator: %T cannot appear in a for header", stmt)
	}
}
