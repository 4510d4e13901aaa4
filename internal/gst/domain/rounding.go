package domain

import "math"

// RoundHalf rounds half away from zero at the given number of decimals.
// Negative values subtract 0.5 before truncation so returns keep their sign.
func RoundHalf(n float64, decimals int) float64 {
	multiplier := math.Pow10(decimals)
	if n < 0 {
		return math.Trunc(n*multiplier-0.5) / multiplier
	}
	return math.Trunc(n*multiplier+0.5) / multiplier
}

// RoundHalfUp rounds to a whole currency unit using the truncated fractional part.
func RoundHalfUp(n float64) float64 {
	whole := math.Trunc(n)
	fraction := n - whole
	if n >= 0 {
		if fraction >= 0.5 {
			return whole + 1
		}
		return whole
	}
	if fraction <= -0.5 {
		return whole - 1
	}
	return whole
}

// RoundHeader applies the floor-based header rounding and returns the rounded
// value together with the adjustment (rounded - n).
func RoundHeader(n float64) (rounded, adjustment float64) {
	floor := math.Floor(n)
	rounded = floor
	if n-floor >= 0.5 {
		rounded = floor + 1
	}
	return rounded, rounded - n
}
