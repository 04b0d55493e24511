package guard

import (
	"net/url"
	"strings"
)

// IsSafeURL reports whether raw is an absolute http or https URL with a host.
func IsSafeURL(raw string) bool {
	return IsSafeURLFrom(nil, raw)
}

// IsSafeURLFrom is IsSafeURL with relative references resolved against base.
// A nil base only accepts absolute URLs.
func IsSafeURLFrom(base *url.URL, raw string) bool {
	u, ok := parseURL(base, raw)
	if !ok {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// IsSafeURLValue is IsSafeURLFrom for values of unknown type.
// Non-text values are never safe.
func IsSafeURLValue(base *url.URL, v any) bool {
	s, ok := ParseText(v)
	if !ok {
		return false
	}
	return IsSafeURLFrom(base, s)
}

func parseURL(base *url.URL, raw string) (*url.URL, bool) {
	// browsers strip leading/trailing C0 controls and spaces before parsing
	raw = strings.TrimFunc(raw, func(r rune) bool { return r <= 0x20 })
	if base == nil && raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Host == "" && (u.Scheme == "http" || u.Scheme == "https") {
		// browsers read "http:example.com" and "http:/example.com" as
		// http://example.com/, where net/url sees an opaque value or a path
		rest := strings.TrimLeft(raw[len(u.Scheme)+1:], `/\`)
		if u, err = url.Parse(u.Scheme + "://" + rest); err != nil {
			return nil, false
		}
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme == "" {
		return nil, false
	}
	return u, true
}
