package exam

import "math"

// PointTolerance is how far a custom point distribution may drift from the
// declared total before the mismatch warning fires.
const PointTolerance = 0.01

// Validation reports whether question points add up to the declared total.
// It is advisory: a false Valid never blocks saving the exam, the UI just
// shows the warning.
type Validation struct {
	Valid       bool    `json:"valid"`
	ActualSum   float64 `json:"actual_sum"`
	Discrepancy float64 `json:"discrepancy"` // actual minus declared
}

// ValidatePoints cross-checks the question points against totalPoints.
// Only meaningful in custom mode; equal mode holds by construction (modulo
// the accepted rounding drift, which is not flagged here).
func ValidatePoints(totalPoints float64, questions []Question) Validation {
	sum := 0.0
	for _, q := range questions {
		sum += q.Points
	}
	diff := sum - totalPoints
	return Validation{
		Valid:       math.Abs(diff) < PointTolerance,
		ActualSum:   Round2(sum),
		Discrepancy: Round2(diff),
	}
}
