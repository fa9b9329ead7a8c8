// Package stars renders average ratings as asterisk strings.
package stars

import (
	"math"
	"strings"
)

// NoRatings is returned by Average when there is nothing to average.
const NoRatings = "no ratings yet"

// Symbol is the character repeated once per star.
const Symbol = "*"

// RoundHalfUp rounds to the nearest integer with ties going up (2.5 -> 3).
func RoundHalfUp(mean float64) int {
	floor := math.Floor(mean)
	if mean-floor < 0.5 {
		return int(floor)
	}
	return int(math.Ceil(mean))
}

// Mean returns sum/count as a real number. The second result is false for an
// empty slice.
func Mean(ratings []int) (float64, bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings)), true
}

// Average renders the rounded mean of ratings as a star string, or NoRatings
// when ratings is empty. The star count is not clamped to the 1..5 range;
// a negative count renders as an empty string.
func Average(ratings []int) string {
	mean, ok := Mean(ratings)
	if !ok {
		return NoRatings
	}
	return Render(RoundHalfUp(mean))
}

// Render repeats Symbol n times.
func Render(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(Symbol, n)
}
