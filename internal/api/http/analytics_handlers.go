package http

import (
	"encoding/json"
	"net/http"

	"github.com/TrainerKiri/CorrigeProvas/internal/analytics"
	authmw "github.com/TrainerKiri/CorrigeProvas/internal/auth/middleware"
	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
)

type examStatsResponse struct {
	Stats        analytics.ClassStats     `json:"stats"`
	ScoreBuckets []analytics.Bucket       `json:"score_buckets"`
	GradeBuckets []analytics.Bucket       `json:"grade_buckets"`
	Questions    []analytics.QuestionStat `json:"questions"`
	Results      []exam.Result            `json:"results"` // ranked
}

// GET /exams/{examID}/stats — class statistics for one exam. An exam with no
// graded results reports zeroed stats and empty histogram counts; the UI
// shows its own "no data yet" state.
func ExamStatsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := loadOwnedExam(w, r, store)
		if !ok {
			return
		}
		results, err := store.ListResults(r.Context(), e.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp := examStatsResponse{
			Stats:        analytics.Stats(results),
			ScoreBuckets: analytics.ScoreHistogram(results, e.TotalPoints),
			GradeBuckets: analytics.GradeHistogram(results, e.TotalPoints),
			Questions:    analytics.QuestionPerformance(e.Questions, results),
			Results:      analytics.Rank(results),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GET /dashboard
func DashboardHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Dashboard(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(d)
	}
}
