package prediction

import (
	"math"
	"strconv"
)

// Grades
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeF = "F"

	// GradeAll disables grade filtering on history queries.
	GradeAll = "ALL"
)

var (
	AllGrades = []string{GradeA, GradeB, GradeC, GradeD, GradeF}

	// lower bounds (inclusive), highest first
	gradeBands = []struct {
		min   float64
		grade string
	}{
		{85, GradeA},
		{75, GradeB},
		{65, GradeC},
		{55, GradeD},
	}
)

// Scorer maps a feature vector to a raw score, typically on a 0-100 scale.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Score(features []float64) (float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(features []float64) (float64, error)

func (f ScorerFunc) Score(features []float64) (float64, error) {
	return f(features)
}

// RoundScore rounds a raw score to 2 decimal places.
func RoundScore(raw float64) float64 {
	return round(raw, 2)
}

// GradeFor bands a rounded score.
func GradeFor(score float64) string {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.grade
		}
	}
	return GradeF
}

// ConfidenceFor is min(1, score/100) rounded to 2 decimal places.
func ConfidenceFor(score float64) float64 {
	return round(math.Min(1, score/100), 2)
}

// round rounds the exact binary value of x to places decimals, ties to even:
// 54.995 is stored below the half and gives 54.99.
func round(x float64, places int) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return f
}
