package utils

import (
	"math"
)

// Clamp limits a value between lo and hi
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// RoundInt rounds half away from zero and converts to int
func RoundInt(value float64) int {
	return int(math.Round(value))
}

// Percent converts a [0,1] score to an integer percentage clamped to [0,100]
func Percent(score float64) int {
	return RoundInt(Clamp(score, 0, 1) * 100)
}

// Lerp performs linear interpolation between two values
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Mean returns the arithmetic mean, 0 for no values
func Mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
