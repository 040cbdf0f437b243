// Package scoring holds the one canonical stars formula. Every path that
// reads or writes a rating (give, revoke, stats, rankings) goes through
// Stars so the stored and displayed values can never drift.
package scoring

import "math"

// Bayesian prior: weight of ten pseudo-observations at a 70% positive
// ratio, so a fresh account starts near-good and a single negative event
// cannot crater the score.
const (
	priorStrength = 10.0
	priorProb     = 0.7
)

// Stars maps positive/negative endorsement counts onto a [1,5] rating,
// rounded to two decimals. Monotonic: non-decreasing in pos, non-increasing
// in neg.
func Stars(pos, neg int) float64 {
	if pos < 0 {
		pos = 0
	}
	if neg < 0 {
		neg = 0
	}

	n := float64(pos + neg)
	pBayes := (priorStrength*priorProb + float64(pos)) / (priorStrength + n)

	stars := 1 + 4*pBayes
	if stars < 1 {
		stars = 1
	}
	if stars > 5 {
		stars = 5
	}
	return math.Round(stars*100) / 100
}
