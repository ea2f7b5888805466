package intake

import "strings"

const (
	reDigits    = 7
	phoneDigits = 11

	// Minimum masked lengths accepted on submit: a complete RE and a
	// phone carrying area code plus at least eight local digits.
	minREMasked    = 8
	minPhoneMasked = 14
)

// Digits returns s with every non-digit removed.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskRE formats a registration number as NNNNNN-N. Partial input is kept
// partial; the hyphen appears once the seventh digit is typed.
func MaskRE(s string) string {
	d := Digits(s)
	if len(d) > reDigits {
		d = d[:reDigits]
	}
	if len(d) > 6 {
		return d[:6] + "-" + d[6:]
	}
	return d
}

// MaskPhone formats a phone number progressively as (DD) NNNNN-NNNN.
func MaskPhone(s string) string {
	d := Digits(s)
	if len(d) > phoneDigits {
		d = d[:phoneDigits]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}
