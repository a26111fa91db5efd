// Package cpf validates and formats Brazilian CPF tax identifiers.
package cpf

import (
	"regexp"
	"strings"
)

var reNonDigit = regexp.MustCompile(`\D`)

// Digits strips every non-digit character from s.
func Digits(s string) string {
	return reNonDigit.ReplaceAllString(strings.TrimSpace(s), "")
}

// Format renders the first 11 digits of s as ###.###.###-##, keeping partial
// input partially formatted for progressive form display.
func Format(s string) string {
	d := Digits(s)
	if len(d) > 11 {
		d = d[:11]
	}

	var b strings.Builder
	for i, r := range d {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Valid reports whether s carries a structurally valid CPF: 11 digits, not
// all equal, and both check digits matching.
func Valid(s string) bool {
	d := Digits(s)
	if len(d) != 11 {
		return false
	}
	if allEqual(d) {
		return false
	}
	return checkDigit(d, 9) && checkDigit(d, 10)
}

func allEqual(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// checkDigit verifies the verifier digit at position pos (9 or 10) computed
// over the preceding digits with weights pos+1 down to 2.
func checkDigit(d string, pos int) bool {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(d[i]-'0') * (pos + 1 - i)
	}
	rem := sum % 11
	want := 0
	if rem >= 2 {
		want = 11 - rem
	}
	return int(d[pos]-'0') == want
}
