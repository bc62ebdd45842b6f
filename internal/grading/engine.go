// Package grading turns a student's raw answer letters into a score against
// an exam's answer key. Everything here is pure: no I/O, no clock, and
// grading the same inputs twice always yields the same Summary.
package grading

import (
	"fmt"
	"math"
	"strings"
)

// Q is the minimal view of a question needed for grading.
type Q struct {
	Number        int
	CorrectAnswer string
	Points        float64
}

// Detail is the per-question verdict, consumed by the UI and the result
// constructor. Not persisted on its own.
type Detail struct {
	QuestionNumber int     `json:"question_number"`
	IsCorrect      bool    `json:"is_correct"`
	PointsAwarded  float64 `json:"points_awarded"`
}

// Summary is the outcome of grading one submission.
type Summary struct {
	TotalScore   float64  `json:"total_score"`
	CorrectCount int      `json:"correct_count"`
	Details      []Detail `json:"details"`
}

// Grade compares a submission against the answer key, index by index.
// Comparison is case-insensitive; a blank submitted answer is always wrong
// and awards zero. A submission whose length differs from the key is a
// caller bug and returns an error rather than being coerced.
func Grade(key []Q, submission []string) (Summary, error) {
	if len(submission) != len(key) {
		return Summary{}, fmt.Errorf("grade: submission has %d answers, answer key has %d questions",
			len(submission), len(key))
	}
	sum := Summary{Details: make([]Detail, 0, len(key))}
	total := 0.0
	for i, q := range key {
		ans := strings.TrimSpace(submission[i])
		correct := ans != "" && strings.EqualFold(ans, q.CorrectAnswer)
		awarded := 0.0
		if correct {
			awarded = q.Points
			total += q.Points
			sum.CorrectCount++
		}
		sum.Details = append(sum.Details, Detail{
			QuestionNumber: q.Number,
			IsCorrect:      correct,
			PointsAwarded:  awarded,
		})
	}
	sum.TotalScore = round2(total)
	return sum, nil
}

// round2 rounds half away from zero to 2 decimals.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
