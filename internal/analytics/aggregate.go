// Package analytics aggregates a set of graded results for one exam into
// class statistics: average and extrema, a score-distribution histogram, a
// letter-grade histogram, and per-question percent-correct derived from the
// raw answers stored on each result.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
)

// ClassStats holds the class-wide aggregate measures. All fields are zero
// when no results have been graded yet; that is a normal state, not an error.
type ClassStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// QuestionStat is the real per-question performance for an exam, counted
// from the persisted submissions of every graded result.
type QuestionStat struct {
	QuestionNumber int     `json:"question_number"`
	Graded         int     `json:"graded"` // results that recorded an answer slot for this question
	Correct        int     `json:"correct"`
	PercentCorrect float64 `json:"percent_correct"`
}

// Stats computes average (rounded to 2 decimals), highest and lowest score.
func Stats(results []exam.Result) ClassStats {
	if len(results) == 0 {
		return ClassStats{}
	}
	s := ClassStats{
		Count:   len(results),
		Highest: results[0].FinalScore,
		Lowest:  results[0].FinalScore,
	}
	sum := 0.0
	for _, r := range results {
		sum += r.FinalScore
		if r.FinalScore > s.Highest {
			s.Highest = r.FinalScore
		}
		if r.FinalScore < s.Lowest {
			s.Lowest = r.FinalScore
		}
	}
	s.Average = round2(sum / float64(len(results)))
	return s
}

// ScoreHistogram buckets final scores into 10 equal-width ranges spanning
// [0, maxPoints]. Bucket width is ceil(maxPoints/10); a score at or past the
// nominal top edge is clamped into the last bucket instead of overflowing.
func ScoreHistogram(results []exam.Result, maxPoints float64) []Bucket {
	width := math.Ceil(maxPoints / 10)
	if width < 1 {
		width = 1
	}
	buckets := make([]Bucket, 10)
	for i := range buckets {
		lo := float64(i) * width
		hi := math.Min(float64(i+1)*width, maxPoints)
		buckets[i].Label = fmt.Sprintf("%g-%g", lo, hi)
	}
	for _, r := range results {
		idx := int(math.Floor(r.FinalScore / width))
		if idx > 9 {
			idx = 9
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}
	return buckets
}

// GradeHistogram buckets results into the five letter grades by percentage
// of maxPoints. Boundaries evaluate top-down, so a score at exactly 90% is
// an A and exactly 60% is a D.
func GradeHistogram(results []exam.Result, maxPoints float64) []Bucket {
	buckets := []Bucket{
		{Label: "A (90-100%)"},
		{Label: "B (80-89%)"},
		{Label: "C (70-79%)"},
		{Label: "D (60-69%)"},
		{Label: "F (0-59%)"},
	}
	for _, r := range results {
		switch LetterGrade(r.FinalScore, maxPoints) {
		case "A":
			buckets[0].Count++
		case "B":
			buckets[1].Count++
		case "C":
			buckets[2].Count++
		case "D":
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets
}

// LetterGrade maps a score to A..F by percentage of maxPoints.
func LetterGrade(score, maxPoints float64) string {
	pct := score / maxPoints * 100
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}

// Rank returns the results ordered by final score descending. The sort is
// stable, so ties keep their insertion order. The input is not modified.
func Rank(results []exam.Result) []exam.Result {
	out := append([]exam.Result(nil), results...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

// QuestionPerformance counts, per question, how many graded submissions got
// it right. Results graded before raw answers were stored carry no answer
// slots and are skipped.
func QuestionPerformance(questions []exam.Question, results []exam.Result) []QuestionStat {
	stats := make([]QuestionStat, len(questions))
	for i, q := range questions {
		stats[i].QuestionNumber = q.Number
	}
	for _, r := range results {
		if len(r.Answers) != len(questions) {
			continue
		}
		for i, q := range questions {
			stats[i].Graded++
			ans := strings.TrimSpace(r.Answers[i])
			if ans != "" && strings.EqualFold(ans, q.CorrectAnswer) {
				stats[i].Correct++
			}
		}
	}
	for i := range stats {
		if stats[i].Graded > 0 {
			stats[i].PercentCorrect = round2(float64(stats[i].Correct) / float64(stats[i].Graded) * 100)
		}
	}
	return stats
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
