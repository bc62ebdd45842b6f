package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authmw "github.com/TrainerKiri/CorrigeProvas/internal/auth/middleware"
	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
	"github.com/TrainerKiri/CorrigeProvas/internal/rbac"
)

// asUser stamps the request context the way JWTMiddleware does after a
// successful token check.
func asUser(r *http.Request, sub, role string) *http.Request {
	ctx := authmw.WithSubject(r.Context(), sub)
	return r.WithContext(rbac.WithRole(ctx, role))
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any, sub, role string) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h(rec, asUser(req, sub, role))
	return rec
}

func draftExam() exam.Exam {
	return exam.Exam{
		Title:       "Prova de Matemática",
		Date:        "2026-04-10",
		TotalPoints: 10,
		ScoringType: exam.ScoringEqual,
		Questions: []exam.Question{
			{Number: 1, CorrectAnswer: "A"},
			{Number: 2, CorrectAnswer: "B"},
		},
	}
}

func TestCreateExamRejectsForeignID(t *testing.T) {
	store := exam.NewInMemoryStore()
	h := CreateExamHandler(store, nil)

	rec := postJSON(t, h, "/exams", draftExam(), "teacher-1", "teacher")
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	var created examResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Exam.OwnerID != "teacher-1" || created.Exam.CreatedAt == 0 {
		t.Fatalf("unexpected created exam: %+v", created.Exam)
	}

	// another teacher re-posting the same id must not be able to replace
	// the exam or its answer key
	hijack := draftExam()
	hijack.ID = created.Exam.ID
	hijack.Title = "Prova Trocada"
	rec = postJSON(t, h, "/exams", hijack, "teacher-2", "teacher")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update: status %d, want %d", rec.Code, http.StatusForbidden)
	}
	got, err := store.GetExam(context.Background(), created.Exam.ID)
	if err != nil {
		t.Fatalf("get exam: %v", err)
	}
	if got.Title != "Prova de Matemática" || got.OwnerID != "teacher-1" {
		t.Fatalf("exam was modified by a non-owner: %+v", got)
	}
}

func TestCreateExamOwnerUpdateKeepsMetadata(t *testing.T) {
	store := exam.NewInMemoryStore()
	h := CreateExamHandler(store, nil)

	rec := postJSON(t, h, "/exams", draftExam(), "teacher-1", "teacher")
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d", rec.Code)
	}
	var created examResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	update := draftExam()
	update.ID = created.Exam.ID
	update.Title = "Prova de Matemática II"
	rec = postJSON(t, h, "/exams", update, "teacher-1", "teacher")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: status %d: %s", rec.Code, rec.Body.String())
	}
	var updated examResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Exam.Title != "Prova de Matemática II" {
		t.Errorf("title not updated: %q", updated.Exam.Title)
	}
	if updated.Exam.OwnerID != "teacher-1" || updated.Exam.CreatedAt != created.Exam.CreatedAt {
		t.Errorf("owner or creation time lost on update: %+v", updated.Exam)
	}

	// admins may edit any exam, but ownership stays with the teacher
	update.Title = "Prova Revisada"
	rec = postJSON(t, h, "/exams", update, "coordinator", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update: status %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Exam.OwnerID != "teacher-1" {
		t.Errorf("admin edit must not take ownership: %+v", updated.Exam)
	}
}

func TestAllocatePointsInit(t *testing.T) {
	h := AllocatePointsHandler()

	req := allocateReq{
		Event: "init",
		Count: 4,
		Exam:  exam.Exam{TotalPoints: 10},
	}
	rec := postJSON(t, h, "/exams/points", req, "teacher-1", "teacher")
	if rec.Code != http.StatusOK {
		t.Fatalf("init: status %d: %s", rec.Code, rec.Body.String())
	}
	var resp examResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Exam.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(resp.Exam.Questions))
	}
	for i, q := range resp.Exam.Questions {
		if q.Number != i+1 {
			t.Errorf("question %d numbered %d", i, q.Number)
		}
		if q.Points != 2.5 {
			t.Errorf("question %d has %v points, want 2.5", i+1, q.Points)
		}
	}
	if resp.Exam.ScoringType != exam.ScoringEqual {
		t.Errorf("init must default to equal scoring, got %q", resp.Exam.ScoringType)
	}

	req.Count = 0
	rec = postJSON(t, h, "/exams/points", req, "teacher-1", "teacher")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("init with zero questions: status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
