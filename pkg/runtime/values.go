package runtime

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindDecimal
	KindChar
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// IntegerValue is an arbitrary-precision integer. Val is never mutated in place.
type IntegerValue struct {
	Val *big.Int
}

func (v IntegerValue) Kind() Kind { return KindInteger }

// DecimalValue is an arbitrary-precision decimal that keeps its scale
// (1.50 stays 1.50).
type DecimalValue struct {
	Val decimal.Decimal
}

func (v DecimalValue) Kind() Kind { return KindDecimal }

type CharValue struct {
	Val rune
}

func (v CharValue) Kind() Kind { return KindChar }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Nil is the shared nil value.
var Nil Value = NilValue{}

// Int builds an IntegerValue from a machine integer.
func Int(v int64) IntegerValue {
	return IntegerValue{Val: big.NewInt(v)}
}

// Dec builds a DecimalValue from its literal text. It panics on malformed
// input and is meant for tests and constant tables.
func Dec(text string) DecimalValue {
	return DecimalValue{Val: decimal.RequireFromString(text)}
}

// CloneBigInt returns a copy so callers never share mutable big.Int state.
func CloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// TypeOf reports the nominal type of a runtime value.
func TypeOf(v Value) Type {
	switch v.(type) {
	case NilValue:
		return TypeNil
	case BoolValue:
		return TypeBoolean
	case IntegerValue:
		return TypeInteger
	case DecimalValue:
		return TypeDecimal
	case CharValue:
		return TypeCharacter
	case StringValue:
		return TypeString
	default:
		return TypeAny
	}
}
