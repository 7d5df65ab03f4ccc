package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{".50", 50, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"0", 0, false},
		{"0.00", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestParseDecimalToCentsAllowZero(t *testing.T) {
	got, err := ParseDecimalToCentsAllowZero("0")
	if err != nil || got != 0 {
		t.Fatalf("zero should parse: got %d, %v", got, err)
	}
	if _, err := ParseDecimalToCentsAllowZero("-1"); err == nil {
		t.Fatalf("negative should not parse")
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{-1205, "-12.05"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: -4250}
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "-42.50" {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back Money
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != m {
		t.Fatalf("round trip mismatch: %v != %v", back, m)
	}
	var quoted Money
	if err := quoted.UnmarshalJSON([]byte(`"12.34"`)); err != nil || quoted.Cents != 1234 {
		t.Fatalf("quoted decimal: got %v, %v", quoted, err)
	}
}
