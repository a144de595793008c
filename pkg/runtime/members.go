package runtime

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// memberTable holds the fields and methods reachable through a receiver of a
// given type. Method parameter lists include the receiver at index 0, while
// lookups are keyed by the number of explicit arguments.
type memberTable struct {
	fields  map[string]*Variable
	methods map[functionKey]*Function
}

var members = map[Type]*memberTable{}

func init() {
	for _, t := range AllTypes {
		members[t] = &memberTable{
			fields:  make(map[string]*Variable),
			methods: make(map[functionKey]*Function),
		}
	}

	defineMethod(TypeInteger, "abs", "abs", nil, TypeInteger, func(args []Value) (Value, error) {
		n, err := integerArg(args, 0)
		if err != nil {
			return nil, err
		}
		return IntegerValue{Val: new(big.Int).Abs(n)}, nil
	})
	defineMethod(TypeInteger, "toDecimal", "doubleValue", nil, TypeDecimal, func(args []Value) (Value, error) {
		n, err := integerArg(args, 0)
		if err != nil {
			return nil, err
		}
		return DecimalValue{Val: decimal.NewFromBigInt(n, 0)}, nil
	})
	defineMethod(TypeDecimal, "abs", "abs", nil, TypeDecimal, func(args []Value) (Value, error) {
		d, err := decimalArg(args, 0)
		if err != nil {
			return nil, err
		}
		return DecimalValue{Val: d.Abs()}, nil
	})
	defineMethod(TypeDecimal, "round", "round", nil, TypeInteger, func(args []Value) (Value, error) {
		d, err := decimalArg(args, 0)
		if err != nil {
			return nil, err
		}
		return IntegerValue{Val: d.RoundBank(0).BigInt()}, nil
	})
	defineMethod(TypeString, "length", "length", nil, TypeInteger, func(args []Value) (Value, error) {
		s, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return Int(int64(len([]rune(s)))), nil
	})
	defineMethod(TypeString, "charAt", "charAt", []Type{TypeInteger}, TypeCharacter, func(args []Value) (Value, error) {
		s, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		idx, err := integerArg(args, 1)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		if !idx.IsInt64() || idx.Int64() < 0 || idx.Int64() >= int64(len(runes)) {
			return nil, fmt.Errorf("index %s out of range for length %d", idx.String(), len(runes))
		}
		return CharValue{Val: runes[idx.Int64()]}, nil
	})
	defineMethod(TypeString, "concat", "concat", []Type{TypeString}, TypeString, func(args []Value) (Value, error) {
		s, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		other, err := stringArg(args, 1)
		if err != nil {
			return nil, err
		}
		return StringValue{Val: s + other}, nil
	})
	defineMethod(TypeString, "contains", "contains", []Type{TypeString}, TypeBoolean, func(args []Value) (Value, error) {
		s, err := stringArg(args, 0)
		if err != nil {
			return nil, err
		}
		other, err := stringArg(args, 1)
		if err != nil {
			return nil, err
		}
		return BoolValue{Val: strings.Contains(s, other)}, nil
	})
	defineMethod(TypeCharacter, "toString", "toString", nil, TypeString, func(args []Value) (Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("missing receiver")
		}
		c, ok := args[0].(CharValue)
		if !ok {
			return nil, fmt.Errorf("receiver must be char, got %s", args[0].Kind())
		}
		return StringValue{Val: string(c.Val)}, nil
	})
}

func defineMethod(receiver Type, name, external string, params []Type, ret Type, body Invocable) {
	full := append([]Type{receiver}, params...)
	members[receiver].methods[functionKey{name: name, arity: len(params)}] = NewFunction(name, external, full, ret, body)
}

// Field resolves a field on the receiver type t.
func (t Type) Field(name string) (*Variable, error) {
	table, ok := members[t]
	if ok {
		if v, ok := table.fields[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w '%s' on %s", ErrUndefinedVariable, name, t.Name())
}

// Method resolves a method on the receiver type t by name and argument count
// (the receiver is not counted).
func (t Type) Method(name string, arity int) (*Function, error) {
	table, ok := members[t]
	if ok {
		if fn, ok := table.methods[functionKey{name: name, arity: arity}]; ok {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w '%s/%d' on %s", ErrUndefinedFunction, name, arity, t.Name())
}

func integerArg(args []Value, idx int) (*big.Int, error) {
	if idx >= len(args) {
		return nil, fmt.Errorf("missing argument %d", idx)
	}
	v, ok := args[idx].(IntegerValue)
	if !ok {
		return nil, fmt.Errorf("argument %d must be integer, got %s", idx, args[idx].Kind())
	}
	return v.Val, nil
}

func decimalArg(args []Value, idx int) (decimal.Decimal, error) {
	if idx >= len(args) {
		return decimal.Decimal{}, fmt.Errorf("missing argument %d", idx)
	}
	v, ok := args[idx].(DecimalValue)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("argument %d must be decimal, got %s", idx, args[idx].Kind())
	}
	return v.Val, nil
}

func stringArg(args []Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("missing argument %d", idx)
	}
	v, ok := args[idx].(StringValue)
	if !ok {
		return "", fmt.Errorf("argument %d must be string, got %s", idx, args[idx].Kind())
	}
	return v.Val, nil
}
