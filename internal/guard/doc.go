// Package guard holds the input hygiene helpers used wherever the site touches
// user-supplied or operator-supplied values.
//
// Most helpers are pure: [SanitizeText], [IsSafeURL], [IsValidEmail] and
// [ClampCoordinates] have no state and never fail. Invalid input is normalized
// to a safe default (empty string, zero, false) instead of being reported as an
// error. Values of unknown type are normalized once at the boundary with
// [ParseText] and [ParseCoordinate] so the rest of the package only ever sees
// typed data.
//
// Two helpers own private state: [Debouncer] keeps a single pending timer and
// [SlidingWindow] keeps a ledger of recent call times. Neither shares state
// across instances.
//
// None of this is a security boundary. It keeps obviously broken values out of
// rendered markup and logs; it does not replace output encoding in the
// renderer or upstream filtering.
package guard
