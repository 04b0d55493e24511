package guard

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseText returns v as a string when it is text, and ok=false otherwise.
// Only string, *string and []byte count as text.
func ParseText(v any) (s string, ok bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

// ParseCoordinate converts a loosely typed coordinate into a float64.
// Numbers pass through, numeric strings are parsed, and anything else
// (nil, bool, NaN, unparseable text, structs) becomes 0.
// Infinities are kept so callers can clamp them to the configured bound.
func ParseCoordinate(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil && !isRangeErr(err) {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// ParseFloat overflows to ±Inf with ErrRange, which is still a number
func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
