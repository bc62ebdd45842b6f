package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/TrainerKiri/CorrigeProvas/internal/auth/middleware"
	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
	"github.com/TrainerKiri/CorrigeProvas/internal/rbac"
	syncx "github.com/TrainerKiri/CorrigeProvas/internal/sync"
)

type examResponse struct {
	Exam exam.Exam `json:"exam"`
	// Warning only: a custom point distribution that does not add up never
	// blocks saving, the UI just shows it.
	Validation *exam.Validation `json:"validation,omitempty"`
}

// POST /exams — create or replace an exam with its answer key.
func CreateExamHandler(store exam.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(e.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		if e.TotalPoints <= 0 {
			http.Error(w, "total_points must be positive", http.StatusBadRequest)
			return
		}
		if len(e.Questions) == 0 {
			http.Error(w, "at least one question required", http.StatusBadRequest)
			return
		}
		for i := range e.Questions {
			e.Questions[i].CorrectAnswer = strings.ToUpper(strings.TrimSpace(e.Questions[i].CorrectAnswer))
			if !validOption(e.Questions[i].CorrectAnswer) {
				http.Error(w, "correct_answer must be one of A-E", http.StatusBadRequest)
				return
			}
		}
		exam.Renumber(e.Questions)
		if e.ScoringType == "" {
			e.ScoringType = exam.ScoringEqual
		}
		// equal mode always derives points server-side from total and count
		if err := exam.SetScoringType(&e, e.ScoringType); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sub := authmw.SubjectFromContext(r.Context())
		e.OwnerID = sub
		// A client-supplied id means update: the exam must already be the
		// caller's. Without this, any teacher could replace another's exam
		// (and the answer key behind its results) by posting its id.
		if e.ID != "" {
			existing, err := store.GetExam(r.Context(), e.ID)
			switch {
			case err == nil:
				if rbac.RoleFromContext(r.Context()) != "admin" && existing.OwnerID != sub {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				e.OwnerID = existing.OwnerID
				e.CreatedAt = existing.CreatedAt
			case errors.Is(err, exam.ErrExamNotFound):
				// caller-chosen id for a new exam; keep it
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		saved, err := store.PutExam(r.Context(), e)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = events.Record(r.Context(), syncx.EventExamCreated, saved.ID,
			map[string]any{"title": saved.Title, "questions": len(saved.Questions)})

		resp := examResponse{Exam: saved}
		if saved.ScoringType == exam.ScoringCustom {
			v := exam.ValidatePoints(saved.TotalPoints, saved.Questions)
			resp.Validation = &v
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GET /exams/{examID}
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := loadOwnedExam(w, r, store)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e)
	}
}

// DELETE /exams/{examID} — questions and results go with the exam.
func DeleteExamHandler(store exam.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := loadOwnedExam(w, r, store)
		if !ok {
			return
		}
		if err := store.DeleteExam(r.Context(), e.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = events.Record(r.Context(), syncx.EventExamDeleted, e.ID, map[string]any{"title": e.Title})
		w.WriteHeader(http.StatusNoContent)
	}
}

type allocateReq struct {
	// One of the authoring events that trigger re-allocation.
	Event string    `json:"event"` // "init" | "add" | "remove" | "total" | "mode"
	Exam  exam.Exam `json:"exam"`

	Count       int              `json:"count,omitempty"`        // for "init"
	Index       int              `json:"index,omitempty"`        // for "remove", 0-based
	TotalPoints float64          `json:"total_points,omitempty"` // for "total"
	ScoringType exam.ScoringType `json:"scoring_type,omitempty"` // for "mode"
}

// POST /exams/points — run the point allocator on a draft exam for one form
// event and return the updated question set. The form never recomputes
// points itself.
func AllocatePointsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req allocateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		e := req.Exam
		switch req.Event {
		case "init":
			if e.ScoringType == "" {
				e.ScoringType = exam.ScoringEqual
			}
			pts, err := exam.Allocate(e.TotalPoints, req.Count, e.ScoringType)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			e.Questions = make([]exam.Question, req.Count)
			for i := range e.Questions {
				e.Questions[i] = exam.Question{
					Number:        i + 1,
					CorrectAnswer: exam.OptionLetters[0],
					Points:        pts[i],
				}
			}
			exam.AddQuestion(&e)
		case "remove":
			exam.RemoveQuestion(&e, req.Index)
		case "total":
			if err := exam.SetTotalPoints(&e, req.TotalPoints); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		case "mode":
			if err := exam.SetScoringType(&e, req.ScoringType); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		default:
			http.Error(w, "unknown event", http.StatusBadRequest)
			return
		}
		resp := examResponse{Exam: e}
		if e.ScoringType == exam.ScoringCustom {
			v := exam.ValidatePoints(e.TotalPoints, e.Questions)
			resp.Validation = &v
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func validOption(letter string) bool {
	for _, o := range exam.OptionLetters {
		if letter == o {
			return true
		}
	}
	return false
}

// loadOwnedExam fetches the exam from the URL and enforces that the caller
// owns it (admins see everything). Writes the error response itself.
func loadOwnedExam(w http.ResponseWriter, r *http.Request, store exam.Store) (exam.Exam, bool) {
	id := chi.URLParam(r, "examID")
	e, err := store.GetExam(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return exam.Exam{}, false
	}
	sub := authmw.SubjectFromContext(r.Context())
	role := rbac.RoleFromContext(r.Context())
	if role != "admin" && e.OwnerID != "" && e.OwnerID != sub {
		http.Error(w, "forbidden", http.StatusForbidden)
		return exam.Exam{}, false
	}
	return e, true
}
