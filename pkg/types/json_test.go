// pkg/types/json_test.go
package types

import (
	"encoding/json"
	"errors"
	"testing"

	"configx/pkg/cfgerr"
)

func TestMarshalKeepsFloatMarker(t *testing.T) {
	// An integral float must not serialize to a bare integer, or replay
	// would silently retype it.
	b, err := json.Marshal(NewFloat(14))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "14.0" {
		t.Errorf("expected 14.0, got %s", b)
	}

	b, err = json.Marshal(NewFloat(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "0.5" {
		t.Errorf("expected 0.5, got %s", b)
	}
}

func TestMarshalScalars(t *testing.T) {
	cases := []struct {
		val  Value
		want string
	}{
		{NewNull(), "null"},
		{NewBool(true), "true"},
		{NewInt(-7), "-7"},
		{NewString("da\"rk"), `"da\"rk"`},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.val)
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.val, err)
		}
		if string(b) != tc.want {
			t.Errorf("expected %s, got %s", tc.want, b)
		}
	}
}

func TestUnmarshalNumberTyping(t *testing.T) {
	var v Value

	if err := v.UnmarshalJSON([]byte("14")); err != nil {
		t.Fatal(err)
	}
	if v.Type() != TypeInt || v.Int() != 14 {
		t.Errorf("expected INT 14, got %v %v", v.Type(), v.Primitive())
	}

	if err := v.UnmarshalJSON([]byte("14.0")); err != nil {
		t.Fatal(err)
	}
	if v.Type() != TypeFloat || v.Float() != 14 {
		t.Errorf("expected FLOAT 14, got %v %v", v.Type(), v.Primitive())
	}

	if err := v.UnmarshalJSON([]byte("1e3")); err != nil {
		t.Fatal(err)
	}
	if v.Type() != TypeFloat || v.Float() != 1000 {
		t.Errorf("expected FLOAT 1000, got %v %v", v.Type(), v.Primitive())
	}

	// Integers beyond int64 degrade to float rather than fail.
	if err := v.UnmarshalJSON([]byte("9223372036854775808")); err != nil {
		t.Fatal(err)
	}
	if v.Type() != TypeFloat {
		t.Errorf("expected FLOAT for out-of-range integer, got %v", v.Type())
	}
}

func TestUnmarshalScalars(t *testing.T) {
	var v Value

	if err := v.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatal(err)
	}
	if !v.IsNull() {
		t.Error("expected null value")
	}

	if err := v.UnmarshalJSON([]byte("false")); err != nil {
		t.Fatal(err)
	}
	if v.Type() != TypeBool || v.Bool() {
		t.Error("expected false")
	}

	if err := v.UnmarshalJSON([]byte(`"hi"`)); err != nil {
		t.Fatal(err)
	}
	if v.Str() != "hi" {
		t.Errorf("expected hi, got %q", v.Str())
	}
}

func TestUnmarshalRejectsNonScalar(t *testing.T) {
	var v Value
	for _, text := range []string{`{"a":1}`, `[1,2]`, `nope`, ``} {
		if err := v.UnmarshalJSON([]byte(text)); !errors.Is(err, cfgerr.ErrInvalidFormat) {
			t.Errorf("UnmarshalJSON(%q): expected ErrInvalidFormat, got %v", text, err)
		}
	}
}
