package runtime

import (
	"errors"
	"fmt"
)

// Type is one of the closed set of nominal PLC types.
type Type uint8

const (
	TypeAny Type = iota
	TypeNil
	TypeComparable
	TypeBoolean
	TypeInteger
	TypeDecimal
	TypeCharacter
	TypeString
)

var (
	// ErrTypeMismatch reports a failed assignability check.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownType reports a type name outside the closed set.
	ErrUnknownType = errors.New("unknown type")
)

type typeInfo struct {
	name    string
	jvmName string
}

var typeInfos = [...]typeInfo{
	TypeAny:        {name: "Any", jvmName: "Object"},
	TypeNil:        {name: "Nil", jvmName: "Void"},
	TypeComparable: {name: "Comparable", jvmName: "Comparable"},
	TypeBoolean:    {name: "Boolean", jvmName: "boolean"},
	TypeInteger:    {name: "Integer", jvmName: "int"},
	TypeDecimal:    {name: "Decimal", jvmName: "double"},
	TypeCharacter:  {name: "Character", jvmName: "char"},
	TypeString:     {name: "String", jvmName: "String"},
}

// AllTypes lists every type in declaration order.
var AllTypes = []Type{TypeAny, TypeNil, TypeComparable, TypeBoolean, TypeInteger, TypeDecimal, TypeCharacter, TypeString}

// Name is the surface-language spelling of the type.
func (t Type) Name() string {
	if int(t) < len(typeInfos) {
		return typeInfos[t].name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// JvmName is the spelling used by the Java generator.
func (t Type) JvmName() string {
	if int(t) < len(typeInfos) {
		return typeInfos[t].jvmName
	}
	return "Object"
}

func (t Type) String() string { return t.Name() }

// LookupType resolves a surface type name.
func LookupType(name string) (Type, error) {
	for _, t := range AllTypes {
		if typeInfos[t].name == name {
			return t, nil
		}
	}
	return TypeAny, fmt.Errorf("%w '%s'", ErrUnknownType, name)
}

// IsComparable reports whether values of t may occupy a Comparable slot.
func IsComparable(t Type) bool {
	switch t {
	case TypeInteger, TypeDecimal, TypeCharacter, TypeString:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t supports arithmetic.
func IsNumeric(t Type) bool {
	return t == TypeInteger || t == TypeDecimal
}

// RequireAssignable checks that a value of type source may occupy a slot of
// type target. Comparable is the only supertype and it is one level deep.
func RequireAssignable(target, source Type) error {
	if target == source || target == TypeAny {
		return nil
	}
	if target == TypeComparable && IsComparable(source) {
		return nil
	}
	return fmt.Errorf("%w: %s is not assignable to %s", ErrTypeMismatch, source.Name(), target.Name())
}
