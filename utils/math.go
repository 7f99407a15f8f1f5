package utils

import "math"

// Round2 rounds a monetary amount to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
