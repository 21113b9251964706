// pkg/types/json.go
// JSON codec for Value, used by the write-ahead log. Rendering is owned
// here rather than left to encoding/json so that the int/float
// distinction survives a round trip: floats always carry a decimal point
// or an exponent, and a number without either decodes as an integer.
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"configx/pkg/cfgerr"
)

// MarshalJSON renders the value as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeNull:
		return []byte("null"), nil
	case TypeBool:
		return strconv.AppendBool(nil, v.boolVal), nil
	case TypeInt:
		return strconv.AppendInt(nil, v.intVal, 10), nil
	case TypeFloat:
		b := strconv.AppendFloat(nil, v.floatVal, 'g', -1, 64)
		if !bytes.ContainsAny(b, ".eE") {
			b = append(b, '.', '0')
		}
		return b, nil
	case TypeString:
		return json.Marshal(v.strVal)
	default:
		return nil, cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"unsupported value type %d", v.typ)
	}
}

// UnmarshalJSON decodes a JSON scalar into a Value. Non-scalar JSON
// (objects, arrays) fails with cfgerr.ErrInvalidFormat.
func (v *Value) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat, "empty JSON value")
	}

	switch {
	case text == "null":
		*v = NewNull()
		return nil
	case text == "true":
		*v = NewBool(true)
		return nil
	case text == "false":
		*v = NewBool(false)
		return nil
	case text[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
				"malformed JSON string: %v", err)
		}
		*v = NewString(s)
		return nil
	case text[0] == '{' || text[0] == '[':
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"expected JSON scalar, got %c", text[0])
	}

	if !strings.ContainsAny(text, ".eE") {
		i, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			*v = NewInt(i)
			return nil
		}
		// Fall through for integers beyond int64 range.
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return cfgerr.Reasonf(cfgerr.ErrInvalidFormat,
			"malformed JSON number %q", text)
	}
	*v = NewFloat(f)
	return nil
}
