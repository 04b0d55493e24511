package guard

import "html"

// SanitizeText escapes the characters that are significant in HTML markup so
// the result renders as literal text. &, <, > are always escaped, and quotes
// are escaped too so the value is also safe inside a quoted attribute.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}
	return html.EscapeString(s)
}

// SanitizeValue is SanitizeText for values of unknown type.
// Anything that is not text yields "".
func SanitizeValue(v any) string {
	s, ok := ParseText(v)
	if !ok {
		return ""
	}
	return SanitizeText(s)
}
