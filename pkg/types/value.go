// pkg/types/value.go
// Package types defines the scalar value taxonomy for configuration
// leaves. A Value is a tagged union with exactly five arms: null, bool,
// 64-bit signed integer, 64-bit float, and UTF-8 string. Inference over
// the union is exhaustive; anything else is rejected rather than coerced.
package types

import (
	"strconv"

	"configx/pkg/cfgerr"
)

// ValueType identifies the arm of a Value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
)

// Tag returns the persisted type label for a ValueType. The null arm has
// no label.
func (t ValueType) Tag() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STR"
	default:
		return ""
	}
}

func (t ValueType) String() string {
	if t == TypeNull {
		return "NULL"
	}
	return t.Tag()
}

// Value represents a single configuration scalar.
type Value struct {
	typ      ValueType
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
}

func NewNull() Value {
	return Value{typ: TypeNull}
}

func NewBool(b bool) Value {
	return Value{typ: TypeBool, boolVal: b}
}

func NewInt(i int64) Value {
	return Value{typ: TypeInt, intVal: i}
}

func NewFloat(f float64) Value {
	return Value{typ: TypeFloat, floatVal: f}
}

func NewString(s string) Value {
	return Value{typ: TypeString, strVal: s}
}

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }
func (v Value) Bool() bool      { return v.boolVal }
func (v Value) Int() int64      { return v.intVal }
func (v Value) Float() float64  { return v.floatVal }
func (v Value) Str() string     { return v.strVal }

// FromAny infers a Value from a dynamically typed scalar. All Go integer
// widths normalize to int64 and float32 to float64. A nil input maps to
// the null arm, and a Value is returned unchanged. Any other kind fails
// with cfgerr.ErrInvalidFormat.
func FromAny(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return NewNull(), nil
	case Value:
		return x, nil
	case bool:
		return NewBool(x), nil
	case int:
		return NewInt(int64(x)), nil
	case int8:
		return NewInt(int64(x)), nil
	case int16:
		return NewInt(int64(x)), nil
	case int32:
		return NewInt(int64(x)), nil
	case int64:
		return NewInt(x), nil
	case uint:
		if uint64(x) > 1<<63-1 {
			return Value{}, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
				"integer value %d overflows int64", x)
		}
		return NewInt(int64(x)), nil
	case uint8:
		return NewInt(int64(x)), nil
	case uint16:
		return NewInt(int64(x)), nil
	case uint32:
		return NewInt(int64(x)), nil
	case uint64:
		if x > 1<<63-1 {
			return Value{}, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
				"integer value %d overflows int64", x)
		}
		return NewInt(int64(x)), nil
	case float32:
		return NewFloat(float64(x)), nil
	case float64:
		return NewFloat(x), nil
	case string:
		return NewString(x), nil
	default:
		return Value{}, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"unsupported value type %T", raw)
	}
}

// Primitive returns the dynamically typed view of the value: nil, bool,
// int64, float64, or string.
func (v Value) Primitive() interface{} {
	switch v.typ {
	case TypeBool:
		return v.boolVal
	case TypeInt:
		return v.intVal
	case TypeFloat:
		return v.floatVal
	case TypeString:
		return v.strVal
	default:
		return nil
	}
}

// Equal reports whether two values have the same arm and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.boolVal)
	case TypeInt:
		return strconv.FormatInt(v.intVal, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case TypeString:
		return v.strVal
	default:
		return "null"
	}
}
