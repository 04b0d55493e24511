package guard

import (
	"regexp"
	"unicode/utf16"
)

// MaxEmailLength is the longest address accepted, counted in UTF-16 code units.
const MaxEmailLength = 254

// local@domain.tld where no part contains whitespace or '@'.
// \s in RE2 is ASCII only, so vertical tab, Unicode separators and BOM are
// listed explicitly to match the browser definition of whitespace.
var emailRE = regexp.MustCompile(`^[^\s\x0B\p{Z}\x{FEFF}@]+@[^\s\x0B\p{Z}\x{FEFF}@]+\.[^\s\x0B\p{Z}\x{FEFF}@]+$`)

// IsValidEmail reports whether s looks like an email address and fits in
// MaxEmailLength. It is a format check only, no DNS or mailbox lookup.
func IsValidEmail(s string) bool {
	if s == "" || utf16Len(s) > MaxEmailLength {
		return false
	}
	return emailRE.MatchString(s)
}

// IsValidEmailValue is IsValidEmail for values of unknown type.
func IsValidEmailValue(v any) bool {
	s, ok := ParseText(v)
	if !ok {
		return false
	}
	return IsValidEmail(s)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
