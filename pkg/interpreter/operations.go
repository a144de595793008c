package interpreter

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"plc/interpreter-go/pkg/ast"
	"plc/interpreter-go/pkg/runtime"
)

// applyBinaryOperator evaluates every non-logical operator on two already
// evaluated operands. Errors carry no node; the caller attaches it.
func applyBinaryOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.OperatorEqual:
		return runtime.BoolValue{Val: valuesEqual(left, right)}, nil
	case ast.OperatorNotEqual:
		return runtime.BoolValue{Val: !valuesEqual(left, right)}, nil
	case ast.OperatorLess, ast.OperatorLessEqual, ast.OperatorGreater, ast.OperatorGreaterEqual:
		cmp, err := compareValues(op, left, right)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: comparisonOp(op, cmp)}, nil
	case ast.OperatorAdd:
		_, ls := left.(runtime.StringValue)
		_, rs := right.(runtime.StringValue)
		if ls || rs {
			return runtime.StringValue{Val: runtime.Stringify(left) + runtime.Stringify(right)}, nil
		}
		return arithmetic(op, left, right)
	case ast.OperatorSubtract, ast.OperatorMultiply, ast.OperatorDivide:
		return arithmetic(op, left, right)
	default:
		return nil, runtimeErrorf(InvalidOperands, nil, "unknown operator '%s'", op)
	}
}

func comparisonOp(op string, cmp int) bool {
	switch op {
	case ast.OperatorLess:
		return cmp < 0
	case ast.OperatorLessEqual:
		return cmp <= 0
	case ast.OperatorGreater:
		return cmp > 0
	case ast.OperatorGreaterEqual:
		return cmp >= 0
	default:
		return false
	}
}

// compareValues orders two values of the same kind.
func compareValues(op string, left, right runtime.Value) (int, error) {
	if left.Kind() != right.Kind() {
		return 0, runtimeErrorf(TypeError, nil, "'%s' cannot compare %s with %s", op, left.Kind(), right.Kind())
	}
	switch l := left.(type) {
	case runtime.BoolValue:
		r := right.(runtime.BoolValue)
		switch {
		case l.Val == r.Val:
			return 0, nil
		case !l.Val:
			return -1, nil
		default:
			return 1, nil
		}
	case runtime.IntegerValue:
		return l.Val.Cmp(right.(runtime.IntegerValue).Val), nil
	case runtime.DecimalValue:
		return l.Val.Cmp(right.(runtime.DecimalValue).Val), nil
	case runtime.CharValue:
		r := right.(runtime.CharValue)
		switch {
		case l.Val < r.Val:
			return -1, nil
		case l.Val > r.Val:
			return 1, nil
		default:
			return 0, nil
		}
	case runtime.StringValue:
		return strings.Compare(l.Val, right.(runtime.StringValue).Val), nil
	default:
		return 0, runtimeErrorf(TypeError, nil, "'%s' cannot order %s values", op, left.Kind())
	}
}

// valuesEqual is value equality. Values of different kinds are never equal.
func valuesEqual(left, right runtime.Value) bool {
	if left.Kind() != right.Kind() {
		return false
	}
	switch l := left.(type) {
	case runtime.NilValue:
		return true
	case runtime.BoolValue:
		return l.Val == right.(runtime.BoolValue).Val
	case runtime.IntegerValue:
		return l.Val.Cmp(right.(runtime.IntegerValue).Val) == 0
	case runtime.DecimalValue:
		return l.Val.Cmp(right.(runtime.DecimalValue).Val) == 0
	case runtime.CharValue:
		return l.Val == right.(runtime.CharValue).Val
	case runtime.StringValue:
		return l.Val == right.(runtime.StringValue).Val
	default:
		return false
	}
}

func arithmetic(op string, left, right runtime.Value) (runtime.Value, error) {
	switch l := left.(type) {
	case runtime.IntegerValue:
		r, ok := right.(runtime.IntegerValue)
		if !ok {
			break
		}
		return integerArithmetic(op, l.Val, r.Val)
	case runtime.DecimalValue:
		r, ok := right.(runtime.DecimalValue)
		if !ok {
			break
		}
		return decimalArithmetic(op, l.Val, r.Val)
	}
	return nil, runtimeErrorf(InvalidOperands, nil, "'%s' is not defined for %s and %s", op, left.Kind(), right.Kind())
}

func integerArithmetic(op string, left, right *big.Int) (runtime.Value, error) {
	result := new(big.Int)
	switch op {
	case ast.OperatorAdd:
		result.Add(left, right)
	case ast.OperatorSubtract:
		result.Sub(left, right)
	case ast.OperatorMultiply:
		result.Mul(left, right)
	case ast.OperatorDivide:
		if right.Sign() == 0 {
			return nil, runtimeErrorf(DivisionByZero, nil, "division by zero")
		}
		result.Quo(left, right)
	}
	return runtime.IntegerValue{Val: result}, nil
}

func decimalArithmetic(op string, left, right decimal.Decimal) (runtime.Value, error) {
	switch op {
	case ast.OperatorAdd:
		return runtime.DecimalValue{Val: left.Add(right)}, nil
	case ast.OperatorSubtract:
		return runtime.DecimalValue{Val: left.Sub(right)}, nil
	case ast.OperatorMultiply:
		return runtime.DecimalValue{Val: left.Mul(right)}, nil
	default:
		if right.IsZero() {
			return nil, runtimeErrorf(DivisionByZero, nil, "division by zero")
		}
		return runtime.DecimalValue{Val: divideHalfEven(left, right)}, nil
	}
}

// divideHalfEven returns left/right rounded half to even at the scale of
// left, so 7.0 / 2.0 is 3.5 and 0.5 / 2.0 is 0.2.
func divideHalfEven(left, right decimal.Decimal) decimal.Decimal {
	exp := left.Exponent()
	num := left.Coefficient()
	den := right.Coefficient()
	// left / right * 10^-exp = num / (den * 10^rexp)
	if rexp := right.Exponent(); rexp >= 0 {
		den.Mul(den, pow10(rexp))
	} else {
		num.Mul(num, pow10(-rexp))
	}

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		twice := new(big.Int).Lsh(new(big.Int).Abs(rem), 1)
		cmp := twice.Cmp(new(big.Int).Abs(den))
		if cmp > 0 || (cmp == 0 && quo.Bit(0) == 1) {
			if num.Sign()*den.Sign() < 0 {
				quo.Sub(quo, big.NewInt(1))
			} else {
				quo.Add(quo, big.NewInt(1))
			}
		}
	}
	return decimal.NewFromBigInt(quo, exp)
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
