package as3

import (
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{-1, true},
		{uint8(0), false},
		{0.0, false},
		{0.1, true},
		{"", false},
		{"0", true},
		{json.Number("0"), false},
		{json.Number("0.0"), false},
		{json.Number("7"), true},
		{decimal.Zero, false},
		{decimal.NewFromInt(2), true},
		{[]any{}, false},
		{[]any{nil}, true},
		{map[string]any{}, false},
		{map[string]any{"k": 1}, true},
		{struct{}{}, true},
	}
	for _, tc := range cases {
		if got := truthy(tc.in); got != tc.want {
			t.Fatalf("truthy(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	ok := []struct {
		in   any
		want int64
	}{
		{true, 1},
		{false, 0},
		{42, 42},
		{uint16(9), 9},
		{json.Number("12"), 12},
		{json.Number("12.9"), 12},
		{decimal.RequireFromString("3.7"), 3},
		{" 8 ", 8},
		{-2.9, -2},
	}
	for _, tc := range ok {
		got, verr := coerceInt(tc.in)
		if verr != nil || got != tc.want {
			t.Fatalf("coerceInt(%#v) = %v, %v; want %v", tc.in, got, verr, tc.want)
		}
	}
	bad := []any{"8.5", "eight", math.NaN(), math.Inf(1), []any{1}, nil}
	for _, in := range bad {
		if _, verr := coerceInt(in); verr == nil {
			t.Fatalf("coerceInt(%#v) should fail", in)
		} else if verr.code != CodeCoercion {
			t.Fatalf("coerceInt(%#v) code = %q", in, verr.code)
		}
	}
}

func TestCoerceDecimal(t *testing.T) {
	got, verr := coerceDecimal(" 1.50 ")
	if verr != nil || !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("got %v, %v", got, verr)
	}
	got, verr = coerceDecimal(json.Number("-0.25"))
	if verr != nil || !got.Equal(decimal.RequireFromString("-0.25")) {
		t.Fatalf("got %v, %v", got, verr)
	}
	got, verr = coerceDecimal(true)
	if verr != nil || !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("got %v, %v", got, verr)
	}
	if _, verr = coerceDecimal("one and a half"); verr == nil {
		t.Fatalf("expected failure")
	}
}

func TestCoerceFloat(t *testing.T) {
	got, verr := coerceFloat("2.5")
	if verr != nil || got != 2.5 {
		t.Fatalf("got %v, %v", got, verr)
	}
	got, verr = coerceFloat(json.Number("3"))
	if verr != nil || got != 3.0 {
		t.Fatalf("got %v, %v", got, verr)
	}
	got, verr = coerceFloat(7)
	if verr != nil || got != 7.0 {
		t.Fatalf("got %v, %v", got, verr)
	}
	if _, verr = coerceFloat(map[string]any{}); verr == nil {
		t.Fatalf("expected failure")
	}
}

func TestCoerceString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"abc", "abc"},
		{[]byte("xy"), "xy"},
		{true, "true"},
		{json.Number("1.25"), "1.25"},
		{decimal.RequireFromString("2.50"), "2.50"},
		{1.5, "1.5"},
		{int64(-4), "-4"},
		{uint(4), "4"},
	}
	for _, tc := range cases {
		got, verr := coerceString(tc.in)
		if verr != nil || got != tc.want {
			t.Fatalf("coerceString(%#v) = %q, %v; want %q", tc.in, got, verr, tc.want)
		}
	}
}
