package graph

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnmarshalDecimal_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"USD 15.99", "15.99"},
		{"MMK -20,000", "-20000"},
		{"- $ 20", "-20"},
		{"  Ks 1,234.50  ", "1234.5"},
		{"1299.00 usd", "1299"},
	}
	for _, tc := range cases {
		d, err := UnmarshalDecimal(tc.in)
		if err != nil {
			t.Fatalf("UnmarshalDecimal(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("UnmarshalDecimal(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestUnmarshalDecimal_Numbers(t *testing.T) {
	cases := []struct {
		in       any
		expected string
	}{
		{json.Number("0.1"), "0.1"},
		{int64(228), "228"},
		{12, "12"},
		{2.5, "2.5"},
	}
	for _, tc := range cases {
		d, err := UnmarshalDecimal(tc.in)
		if err != nil {
			t.Fatalf("UnmarshalDecimal(%v) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("UnmarshalDecimal(%v) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestUnmarshalDecimal_Rejects(t *testing.T) {
	for _, in := range []any{"", "USD", "12abc34", true} {
		if _, err := UnmarshalDecimal(in); err == nil {
			t.Fatalf("UnmarshalDecimal(%v) expected error", in)
		}
	}
}

func TestMarshalDecimal_WritesBareNumber(t *testing.T) {
	var buf bytes.Buffer
	MarshalDecimal(decimal.RequireFromString("228.50")).MarshalGQL(&buf)
	if buf.String() != "228.5" {
		t.Fatalf("expected 228.5, got %s", buf.String())
	}
}
