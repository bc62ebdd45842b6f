package exam

import (
	"fmt"
	"math"
)

// DefaultQuestionPoints is assigned to a newly added question in custom mode.
const DefaultQuestionPoints = 1.0

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Allocate returns per-question point values for a fresh exam. In equal mode
// every question gets Round2(totalPoints/questionCount); the per-question
// rounding may make the sum drift from totalPoints by up to
// questionCount*0.005, which is accepted rather than corrected. In custom
// mode every question starts at the default and the author adjusts each one.
func Allocate(totalPoints float64, questionCount int, mode ScoringType) ([]float64, error) {
	if totalPoints <= 0 {
		return nil, fmt.Errorf("allocate: total points must be positive, got %v", totalPoints)
	}
	if questionCount <= 0 {
		return nil, fmt.Errorf("allocate: question count must be positive, got %d", questionCount)
	}
	pts := make([]float64, questionCount)
	per := DefaultQuestionPoints
	if mode == ScoringEqual {
		per = Round2(totalPoints / float64(questionCount))
	}
	for i := range pts {
		pts[i] = per
	}
	return pts, nil
}

// AddQuestion appends a question numbered len+1 with the default correct
// answer. In equal mode all question points are recomputed from the new
// count; in custom mode existing points are left untouched and the new
// question gets DefaultQuestionPoints.
func AddQuestion(e *Exam) {
	e.Questions = append(e.Questions, Question{
		Number:        len(e.Questions) + 1,
		CorrectAnswer: OptionLetters[0],
		Points:        DefaultQuestionPoints,
	})
	if e.ScoringType == ScoringEqual {
		respread(e)
	}
}

// RemoveQuestion deletes the question at index (0-based) and renumbers the
// rest back to a contiguous 1..N-1 sequence, preserving relative order.
// Removing the only remaining question, or passing an out-of-range index,
// is a no-op: an exam always keeps at least one question.
func RemoveQuestion(e *Exam, index int) {
	if len(e.Questions) <= 1 || index < 0 || index >= len(e.Questions) {
		return
	}
	e.Questions = append(e.Questions[:index], e.Questions[index+1:]...)
	Renumber(e.Questions)
	if e.ScoringType == ScoringEqual {
		respread(e)
	}
}

// SetTotalPoints changes the exam total. Equal mode recomputes every
// question's points; custom mode never silently overwrites author values,
// so the questions stay as they are (the validator will surface a mismatch).
func SetTotalPoints(e *Exam, totalPoints float64) error {
	if totalPoints <= 0 {
		return fmt.Errorf("set total points: must be positive, got %v", totalPoints)
	}
	e.TotalPoints = totalPoints
	if e.ScoringType == ScoringEqual {
		respread(e)
	}
	return nil
}

// SetScoringType switches the allocation mode. Switching to equal recomputes
// all points from the current total and count; switching to custom keeps
// whatever values the questions currently carry.
func SetScoringType(e *Exam, st ScoringType) error {
	if st != ScoringEqual && st != ScoringCustom {
		return fmt.Errorf("set scoring type: unknown mode %q", st)
	}
	e.ScoringType = st
	if st == ScoringEqual {
		respread(e)
	}
	return nil
}

// Renumber rewrites question numbers to 1..N in slice order.
func Renumber(qs []Question) {
	for i := range qs {
		qs[i].Number = i + 1
	}
}

func respread(e *Exam) {
	if len(e.Questions) == 0 {
		return
	}
	per := Round2(e.TotalPoints / float64(len(e.Questions)))
	for i := range e.Questions {
		e.Questions[i].Points = per
	}
}
