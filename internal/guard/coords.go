package guard

import "math"

// DefaultMaxCoordinate bounds both axes when no other limit is configured.
const DefaultMaxCoordinate = 10000

// ClampCoordinates clamps x into [0,maxX] and y into [0,maxY].
// NaN becomes 0. A negative bound is treated as 0 and a NaN or infinite bound
// as DefaultMaxCoordinate, so results are always finite.
func ClampCoordinates(x, y, maxX, maxY float64) (float64, float64) {
	return clampAxis(x, maxX), clampAxis(y, maxY)
}

// ClampCoordinateValues normalizes loosely typed input with ParseCoordinate
// and then clamps it.
func ClampCoordinateValues(x, y any, maxX, maxY float64) (float64, float64) {
	return ClampCoordinates(ParseCoordinate(x), ParseCoordinate(y), maxX, maxY)
}

func clampAxis(v, max float64) float64 {
	switch {
	case math.IsNaN(max) || math.IsInf(max, 0):
		max = DefaultMaxCoordinate
	case max < 0:
		max = 0
	}
	if math.IsNaN(v) {
		v = 0
	}
	return math.Min(math.Max(v, 0), max)
}
