package core

import "testing"

func TestParseYen(t *testing.T) {
	cases := []struct {
		in  string
		out Yen
		ok  bool
	}{
		{"1", 1, true},
		{"580", 580, true},
		{" 1200 ", 1200, true},
		{"¥1,200", 1200, true},
		{"￥85000", 85000, true},
		{"1,234,567", 1234567, true},
		{"12,345", 12345, true},
		{"1,2,3", 0, false},
		{"12,34", 0, false},
		{"1,23", 0, false},
		{"1234,567", 0, false},
		{",123", 0, false},
		{"123,", 0, false},
		{"1,,234", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"+5", 0, false},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"１２", 0, false}, // full-width digits
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseYen(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestYenString(t *testing.T) {
	cases := map[Yen]string{
		0:         "¥0",
		580:       "¥580",
		1200:      "¥1,200",
		80000:     "¥80,000",
		1234567:   "¥1,234,567",
		-45000:    "-¥45,000",
		-100:      "-¥100",
		100000000: "¥100,000,000",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("Yen(%d).String() = %q, want %q", in, got, want)
		}
	}
}
