package intake

import (
	"regexp"
	"testing"
)

var (
	reFull    = regexp.MustCompile(`^\d{6}-\d$`)
	phoneFull = regexp.MustCompile(`^\(\d{2}\) \d{5}-\d{4}$`)
)

func TestMaskRE(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"1", "1"},
		{"123456", "123456"},
		{"1234567", "123456-7"},
		{"123456-7", "123456-7"},
		{"12345678999", "123456-7"},
		{"ab12c3456 7", "123456-7"},
	}
	for _, c := range cases {
		if got := MaskRE(c.in); got != c.want {
			t.Errorf("MaskRE(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"1", "(1"},
		{"11", "(11"},
		{"119", "(11) 9"},
		{"1191234", "(11) 91234"},
		{"11912345", "(11) 91234-5"},
		{"11912345678", "(11) 91234-5678"},
		{"(11) 91234-5678", "(11) 91234-5678"},
		{"1191234567899", "(11) 91234-5678"},
	}
	for _, c := range cases {
		if got := MaskPhone(c.in); got != c.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMasksAreIdempotent(t *testing.T) {
	inputs := []string{"", "9", "98", "987", "9876543", "98765432", "987654321",
		"98765432109", "98765432109876", "(98) 76543-2109", "x9y8z7"}
	for _, in := range inputs {
		re := MaskRE(in)
		if MaskRE(re) != re {
			t.Errorf("MaskRE not idempotent on %q: %q -> %q", in, re, MaskRE(re))
		}
		ph := MaskPhone(in)
		if MaskPhone(ph) != ph {
			t.Errorf("MaskPhone not idempotent on %q: %q -> %q", in, ph, MaskPhone(ph))
		}
	}
}

func TestFullInputsMatchShape(t *testing.T) {
	for i := 0; i < 1000; i++ {
		digits := pseudoDigits(i, 11)
		if re := MaskRE(digits[:7]); !reFull.MatchString(re) {
			t.Fatalf("MaskRE(%q) = %q does not match NNNNNN-N", digits[:7], re)
		}
		if ph := MaskPhone(digits); !phoneFull.MatchString(ph) {
			t.Fatalf("MaskPhone(%q) = %q does not match (DD) NNNNN-NNNN", digits, ph)
		}
	}
}

func pseudoDigits(seed, n int) string {
	b := make([]byte, n)
	x := uint32(seed*2654435761 + 1)
	for i := range b {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b[i] = byte('0' + x%10)
	}
	return string(b)
}
