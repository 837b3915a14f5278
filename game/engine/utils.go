package engine

import "math"

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundPrice rounds half to even.
func roundPrice(v float64) int {
	return int(math.RoundToEven(v))
}
