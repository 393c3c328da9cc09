package analytics

import (
	"math"
	"strings"
	"unicode"
)

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func ratio(num, den int) float64 {
	return safeDivide(float64(num), float64(den))
}

// percent returns num/den as a percentage rounded to one decimal, or 0 when den is 0.
func percent(num, den int) float64 {
	return round1(ratio(num, den) * 100)
}

func trimPunctuation(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
