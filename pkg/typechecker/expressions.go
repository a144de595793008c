package typechecker

import (
	"math"
	"math/big"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

var (
	minInteger = big.NewInt(math.MinInt32)
	maxInteger = big.NewInt(math.MaxInt32)
)

// checkExpression resolves the type of expr, records it on the node and
// returns it.
func (c *Checker) checkExpression(scope runtime.ScopeID, expr ast.Expression) (runtime.Type, error) {
	if expr == nil {
		return runtime.TypeAny, semanticErrorf(InvalidExpression, nil, "missing expression")
	}
	typ, err := c.resolveExpression(scope, expr)
	if err != nil {
		return runtime.TypeAny, err
	}
	expr.SetResolvedType(typ)
	return typ, nil
}

func (c *Checker) resolveExpression(scope runtime.ScopeID, expr ast.Expression) (runtime.Type, error) {
	switch e := expr.(type) {
	case *ast.NilLiteral:
		return runtime.TypeNil, nil
	case *ast.BooleanLiteral:
		return runtime.TypeBoolean, nil
	case *ast.CharLiteral:
		return runtime.TypeCharacter, nil
	case *ast.StringLiteral:
		return runtime.TypeString, nil
	case *ast.IntegerLiteral:
		if e.Value == nil || e.Value.Cmp(minInteger) < 0 || e.Value.Cmp(maxInteger) > 0 {
			return runtime.TypeAny, semanticErrorf(LiteralOutOfRange, e, "integer literal %s does not fit in 32 bits", e.Value)
		}
		return runtime.TypeInteger, nil
	case *ast.DecimalLiteral:
		f, _ := e.Value.Float64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return runtime.TypeAny, semanticErrorf(LiteralOutOfRange, e, "decimal literal %s does not fit in 64 bits", runtime.DecimalString(e.Value))
		}
		return runtime.TypeDecimal, nil
	case *ast.GroupExpression:
		if _, ok := e.Expression.(*ast.BinaryExpression); !ok {
			return runtime.TypeAny, semanticErrorf(InvalidExpression, e, "parentheses must contain a binary expression")
		}
		return c.checkExpression(scope, e.Expression)
	case *ast.BinaryExpression:
		return c.checkBinary(scope, e)
	case *ast.AccessExpression:
		return c.checkAccess(scope, e)
	case *ast.FunctionCall:
		return c.checkCall(scope, e)
	default:
		return runtime.TypeAny, semanticErrorf(InvalidExpression, expr, "unsupported expression %T", expr)
	}
}

func (c *Checker) checkBinary(scope runtime.ScopeID, expr *ast.BinaryExpression) (runtime.Type, error) {
	left, err := c.checkExpression(scope, expr.Left)
	if err != nil {
		return runtime.TypeAny, err
	}
	right, err := c.checkExpression(scope, expr.Right)
	if err != nil {
		return runtime.TypeAny, err
	}

	switch expr.Operator {
	case ast.OperatorAnd, ast.OperatorOr, "AND", "OR":
		if left != runtime.TypeBoolean || right != runtime.TypeBoolean {
			return runtime.TypeAny, semanticErrorf(TypeMismatch, expr, "'%s' needs Boolean operands, got %s and %s", expr.Operator, left, right)
		}
		return runtime.TypeBoolean, nil
	case ast.OperatorLess, ast.OperatorLessEqual, ast.OperatorGreater, ast.OperatorGreaterEqual,
		ast.OperatorEqual, ast.OperatorNotEqual:
		if !isOrdered(left) || !isOrdered(right) {
			return runtime.TypeAny, semanticErrorf(TypeMismatch, expr, "'%s' needs Comparable operands, got %s and %s", expr.Operator, left, right)
		}
		if left != right {
			return runtime.TypeAny, semanticErrorf(TypeMismatch, expr, "'%s' needs operands of the same type, got %s and %s", expr.Operator, left, right)
		}
		return runtime.TypeBoolean, nil
	case ast.OperatorAdd:
		if left == runtime.TypeString || right == runtime.TypeString {
			return runtime.TypeString, nil
		}
		return arithmeticResult(expr, left, right)
	case ast.OperatorSubtract, ast.OperatorMultiply, ast.OperatorDivide:
		return arithmeticResult(expr, left, right)
	default:
		return runtime.TypeAny, semanticErrorf(InvalidOperator, expr, "unknown operator '%s'", expr.Operator)
	}
}

// isOrdered reports whether t may appear on either side of a relational
// operator. Unlike assignability this includes Comparable itself.
func isOrdered(t runtime.Type) bool {
	return t == runtime.TypeComparable || runtime.IsComparable(t)
}

func arithmeticResult(expr *ast.BinaryExpression, left, right runtime.Type) (runtime.Type, error) {
	if !runtime.IsNumeric(left) {
		return runtime.TypeAny, semanticErrorf(TypeMismatch, expr, "'%s' needs an Integer or Decimal left operand, got %s", expr.Operator, left)
	}
	if right != left {
		return runtime.TypeAny, semanticErrorf(TypeMismatch, expr, "'%s' needs a right operand of type %s, got %s", expr.Operator, left, right)
	}
	return left, nil
}

func (c *Checker) checkAccess(scope runtime.ScopeID, expr *ast.AccessExpression) (runtime.Type, error) {
	var (
		variable *runtime.Variable
		err      error
	)
	if expr.Receiver != nil {
		receiverType, rerr := c.checkExpression(scope, expr.Receiver)
		if rerr != nil {
			return runtime.TypeAny, rerr
		}
		variable, err = receiverType.Field(expr.Name)
	} else {
		variable, err = c.env.LookupVariable(scope, expr.Name)
	}
	if err != nil {
		return runtime.TypeAny, wrapSemantic(UndefinedVariable, expr, err)
	}
	expr.Variable = variable
	return variable.Type, nil
}

func (c *Checker) checkCall(scope runtime.ScopeID, expr *ast.FunctionCall) (runtime.Type, error) {
	var (
		fn     *runtime.Function
		err    error
		offset int
	)
	if expr.Receiver != nil {
		receiverType, rerr := c.checkExpression(scope, expr.Receiver)
		if rerr != nil {
			return runtime.TypeAny, rerr
		}
		fn, err = receiverType.Method(expr.Name, len(expr.Arguments))
		offset = 1
	} else {
		fn, err = c.env.LookupFunction(scope, expr.Name, len(expr.Arguments))
	}
	if err != nil {
		return runtime.TypeAny, wrapSemantic(UndefinedFunction, expr, err)
	}
	for i, arg := range expr.Arguments {
		argType, err := c.checkExpression(scope, arg)
		if err != nil {
			return runtime.TypeAny, err
		}
		if err := c.requireAssignable(arg, fn.ParameterTypes[i+offset], argType); err != nil {
			return runtime.TypeAny, err
		}
	}
	expr.Function = fn
	return fn.ReturnType, nil
}
