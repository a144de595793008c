package interpreter

import (
	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NilLiteral:
		return runtime.Nil, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.IntegerLiteral:
		return runtime.IntegerValue{Val: runtime.CloneBigInt(n.Value)}, nil
	case *ast.DecimalLiteral:
		return runtime.DecimalValue{Val: n.Value}, nil
	case *ast.CharLiteral:
		return runtime.CharValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.GroupExpression:
		return i.evaluateExpression(n.Expression)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n)
	case *ast.AccessExpression:
		variable, err := i.resolveAccess(n)
		if err != nil {
			return nil, err
		}
		return variable.Value(), nil
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n)
	case nil:
		return nil, runtimeErrorf(TypeError, nil, "missing expression")
	default:
		return nil, runtimeErrorf(TypeError, node, "unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression) (runtime.Value, error) {
	switch expr.Operator {
	case ast.OperatorAnd, "AND":
		return i.evaluateLogical(expr, false)
	case ast.OperatorOr, "OR":
		return i.evaluateLogical(expr, true)
	}
	left, err := i.evaluateExpression(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right)
	if err != nil {
		return nil, err
	}
	result, err := applyBinaryOperator(expr.Operator, left, right)
	if err != nil {
		return nil, attach(err, expr, InvalidOperands)
	}
	return result, nil
}

// evaluateLogical skips the right operand when the left one equals
// shortCircuit (false for &&, true for ||).
func (i *Interpreter) evaluateLogical(expr *ast.BinaryExpression, shortCircuit bool) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(runtime.BoolValue)
	if !ok {
		return nil, runtimeErrorf(TypeError, expr, "logical operands must be Boolean, got %s", left.Kind())
	}
	if lb.Val == shortCircuit {
		return lb, nil
	}
	right, err := i.evaluateExpression(expr.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(runtime.BoolValue)
	if !ok {
		return nil, runtimeErrorf(TypeError, expr, "logical operands must be Boolean, got %s", right.Kind())
	}
	return rb, nil
}

// resolveAccess finds the variable cell an access expression names, either a
// field of its receiver's type or a binding in the current scope chain.
func (i *Interpreter) resolveAccess(expr *ast.AccessExpression) (*runtime.Variable, error) {
	if expr.Receiver != nil {
		receiver, err := i.evaluateExpression(expr.Receiver)
		if err != nil {
			return nil, err
		}
		variable, err := runtime.TypeOf(receiver).Field(expr.Name)
		if err != nil {
			return nil, wrapRuntime(UndefinedVariable, expr, err)
		}
		return variable, nil
	}
	variable, err := i.env.LookupVariable(i.current(), expr.Name)
	if err != nil {
		return nil, wrapRuntime(UndefinedVariable, expr, err)
	}
	return variable, nil
}

// evaluateFunctionCall evaluates the receiver, then the arguments left to
// right, and only then dispatches.
func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall) (runtime.Value, error) {
	var receiver runtime.Value
	if call.Receiver != nil {
		v, err := i.evaluateExpression(call.Receiver)
		if err != nil {
			return nil, err
		}
		receiver = v
	}
	args := make([]runtime.Value, 0, len(call.Arguments)+1)
	if receiver != nil {
		args = append(args, receiver)
	}
	for _, arg := range call.Arguments {
		v, err := i.evaluateExpression(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	var (
		fn  *runtime.Function
		err error
	)
	if receiver != nil {
		fn, err = runtime.TypeOf(receiver).Method(call.Name, len(call.Arguments))
	} else {
		fn, err = i.env.LookupFunction(i.current(), call.Name, len(call.Arguments))
	}
	if err != nil {
		return nil, wrapRuntime(UndefinedFunction, call, err)
	}
	result, err := fn.Invoke(args)
	if err != nil {
		return nil, attach(err, call, InvalidOperands)
	}
	if result == nil {
		return runtime.Nil, nil
	}
	return result, nil
}
