package runtime

import "github.com/shopspring/decimal"

// Stringify renders the textual form used by print and string concatenation.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, NilValue:
		return "null"
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case IntegerValue:
		if val.Val == nil {
			return "0"
		}
		return val.Val.String()
	case DecimalValue:
		return DecimalString(val.Val)
	case CharValue:
		return string(val.Val)
	case StringValue:
		return val.Val
	default:
		return "<" + v.Kind().String() + ">"
	}
}

// DecimalString renders d without dropping trailing zeros of its scale.
func DecimalString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
