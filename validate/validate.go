// Package validate classifies identifying and contact data entered for
// employees and users. Every function is total: malformed input is reported
// as false (or passed through unformatted), never as an error.
package validate

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Digits strips every non-digit character from raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NationalID reports whether raw carries an 11-digit national ID with two
// valid mod-11 check digits. Punctuation is ignored.
func NationalID(raw string) bool {
	id := Digits(raw)
	if len(id) != 11 {
		return false
	}
	if strings.Count(id, id[:1]) == 11 {
		return false
	}

	d := make([]int, 11)
	for i := range id {
		d[i] = int(id[i] - '0')
	}
	return checkDigit(d[:9], 10) == d[9] && checkDigit(d[:10], 11) == d[10]
}

// checkDigit applies weights from topWeight down to 2 over digits and maps
// the remainder rule: 11 - (sum mod 11), or 0 when that exceeds 9.
func checkDigit(digits []int, topWeight int) int {
	sum := 0
	for i, v := range digits {
		sum += v * (topWeight - i)
	}
	dv := 11 - sum%11
	if dv > 9 {
		return 0
	}
	return dv
}

// Email checks address shape only. No DNS or mailbox verification.
func Email(raw string) bool {
	return emailPattern.MatchString(raw)
}

// Phone accepts 10 or 11 digits once punctuation is removed.
func Phone(raw string) bool {
	n := len(Digits(raw))
	return n == 10 || n == 11
}

// FormatNationalID renders XXX.XXX.XXX-XX. Input with any other digit count
// is returned as its digits only.
func FormatNationalID(raw string) string {
	id := Digits(raw)
	if len(id) != 11 {
		return id
	}
	return id[:3] + "." + id[3:6] + "." + id[6:9] + "-" + id[9:]
}

// FormatPhone renders (XX) XXXXX-XXXX for mobile numbers and
// (XX) XXXX-XXXX for landlines.
func FormatPhone(raw string) string {
	p := Digits(raw)
	switch len(p) {
	case 11:
		return "(" + p[:2] + ") " + p[2:7] + "-" + p[7:]
	case 10:
		return "(" + p[:2] + ") " + p[2:6] + "-" + p[6:]
	default:
		return p
	}
}
