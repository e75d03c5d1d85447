package settings

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"int", KindInt},
		{"<class 'int'>", KindInt},
		{"float", KindFloat},
		{"<class 'float'>", KindFloat},
		{"bool", KindBool},
		{"<class 'bool'>", KindBool},
		{"string", KindString},
		{"<class 'str'>", KindString},
		{"<class 'NoneType'>", KindString},
		{"", KindString},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Fatalf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKind_StringRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindString, KindInt, KindFloat, KindBool} {
		if got := ParseKind(k.String()); got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   any
		want Kind
	}{
		{95, KindInt},
		{int64(1), KindInt},
		{uint8(1), KindInt},
		{0.5, KindFloat},
		{float32(0.5), KindFloat},
		{true, KindBool},
		{"dark", KindString},
		{nil, KindString},
		{json.Number("7"), KindInt},
		{json.Number("7.5"), KindFloat},
		{[]int{1}, KindString},
	}
	for _, tt := range tests {
		if got := KindOf(tt.in); got != tt.want {
			t.Fatalf("KindOf(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKind_Coerce(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		in      any
		want    any
		wantErr bool
	}{
		{name: "int from int", kind: KindInt, in: 7, want: 7},
		{name: "int from int64", kind: KindInt, in: int64(7), want: 7},
		{name: "int from float truncates", kind: KindInt, in: 7.9, want: 7},
		{name: "int from negative float truncates toward zero", kind: KindInt, in: -7.9, want: -7},
		{name: "int from string", kind: KindInt, in: " 42 ", want: 42},
		{name: "int from decimal string", kind: KindInt, in: "42.0", want: 42},
		{name: "int from bool", kind: KindInt, in: true, want: 1},
		{name: "int from nil", kind: KindInt, in: nil, want: 0},
		{name: "int from text fails", kind: KindInt, in: "abc", wantErr: true},
		{name: "int from NaN fails", kind: KindInt, in: math.NaN(), wantErr: true},
		{name: "int from huge float fails", kind: KindInt, in: 1e300, wantErr: true},
		{name: "float from int", kind: KindFloat, in: 3, want: 3.0},
		{name: "float from string", kind: KindFloat, in: "0.25", want: 0.25},
		{name: "float from text fails", kind: KindFloat, in: "x", wantErr: true},
		{name: "float from NaN string fails", kind: KindFloat, in: "NaN", wantErr: true},
		{name: "bool from bool", kind: KindBool, in: false, want: false},
		{name: "bool from on", kind: KindBool, in: "On", want: true},
		{name: "bool from no", kind: KindBool, in: "no", want: false},
		{name: "bool from number", kind: KindBool, in: 2, want: true},
		{name: "bool from text fails", kind: KindBool, in: "maybe", wantErr: true},
		{name: "string from int", kind: KindString, in: 12, want: "12"},
		{name: "string from float", kind: KindString, in: 1.5, want: "1.5"},
		{name: "string from bool", kind: KindString, in: true, want: "true"},
		{name: "string from nil", kind: KindString, in: nil, want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.kind.Coerce(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Coerce(%#v) error = %v, want ErrValidation", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coerce(%#v): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Coerce(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"light", "light"},
		{12, "12"},
		{int64(-3), "-3"},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{1.5, "1.5"},
		{2.0, "2"},
		{true, "true"},
		{KindFloat, "float"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Fatalf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
