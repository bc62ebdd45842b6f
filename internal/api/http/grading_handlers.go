package http

import (
	"encoding/json"
	"net/http"

	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
	"github.com/TrainerKiri/CorrigeProvas/internal/grading"
	syncx "github.com/TrainerKiri/CorrigeProvas/internal/sync"
)

type gradeReq struct {
	StudentID string   `json:"student_id"`
	Answers   []string `json:"answers"` // one letter per question, "" = unanswered
}

type gradeResponse struct {
	Result  exam.Result     `json:"result"`
	Summary grading.Summary `json:"summary"`
}

// POST /exams/{examID}/grade — grade one student's submission and persist
// the result. Grading the same student again overwrites the earlier result.
func GradeExamHandler(store exam.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := loadOwnedExam(w, r, store)
		if !ok {
			return
		}
		var req gradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.StudentID == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}

		key := make([]grading.Q, len(e.Questions))
		for i, q := range e.Questions {
			key[i] = grading.Q{Number: q.Number, CorrectAnswer: q.CorrectAnswer, Points: q.Points}
		}
		summary, err := grading.Grade(key, req.Answers)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		saved, err := store.SaveResult(r.Context(), exam.Result{
			ExamID:         e.ID,
			StudentID:      req.StudentID,
			CorrectAnswers: summary.CorrectCount,
			FinalScore:     summary.TotalScore,
			Answers:        req.Answers,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = events.Record(r.Context(), syncx.EventResultGraded, saved.ID, map[string]any{
			"exam_id":    saved.ExamID,
			"student_id": saved.StudentID,
			"score":      saved.FinalScore,
		})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gradeResponse{Result: saved, Summary: summary})
	}
}

// GET /exams/{examID}/results — ranked by final score descending.
func ListResultsHandler(store exam.Store) http.HandlerFunc {
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
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	}
}
