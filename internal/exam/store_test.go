package exam_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/TrainerKiri/CorrigeProvas/internal/db"
	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
)

// Both Store implementations must behave the same; every test below runs
// against the in-memory store and the sqlite-backed SQLStore.
func stores(t *testing.T) map[string]exam.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return map[string]exam.Store{
		"memory": exam.NewInMemoryStore(),
		"sqlite": exam.NewSQLStore(dbh, "sqlite"),
	}
}

func seedExam(t *testing.T, s exam.Store, owner string) exam.Exam {
	t.Helper()
	e, err := s.PutExam(context.Background(), exam.Exam{
		OwnerID:     owner,
		Title:       "Midterm",
		Date:        "2026-03-15",
		TotalPoints: 10,
		ScoringType: exam.ScoringEqual,
		Questions: []exam.Question{
			{Number: 1, CorrectAnswer: "A", Points: 2.5},
			{Number: 2, CorrectAnswer: "B", Points: 2.5},
			{Number: 3, CorrectAnswer: "C", Points: 2.5},
			{Number: 4, CorrectAnswer: "D", Points: 2.5},
		},
	})
	if err != nil {
		t.Fatalf("put exam: %v", err)
	}
	return e
}

func seedStudent(t *testing.T, s exam.Store, owner, name string) exam.Student {
	t.Helper()
	st, err := s.PutStudent(context.Background(), exam.Student{OwnerID: owner, Name: name, Classroom: "9B"})
	if err != nil {
		t.Fatalf("put student: %v", err)
	}
	return st
}

func TestStoreExamRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			if e.ID == "" {
				t.Fatal("store must assign an exam id")
			}
			got, err := s.GetExam(ctx, e.ID)
			if err != nil {
				t.Fatalf("get exam: %v", err)
			}
			if got.Title != "Midterm" || got.TotalPoints != 10 || got.ScoringType != exam.ScoringEqual {
				t.Errorf("exam fields lost: %+v", got)
			}
			if len(got.Questions) != 4 {
				t.Fatalf("expected 4 questions, got %d", len(got.Questions))
			}
			for i, q := range got.Questions {
				if q.Number != i+1 {
					t.Errorf("questions out of order: index %d has number %d", i, q.Number)
				}
			}
			if _, err := s.GetExam(ctx, "nope"); !errors.Is(err, exam.ErrExamNotFound) {
				t.Errorf("expected ErrExamNotFound, got %v", err)
			}
		})
	}
}

func TestStoreResultOverwrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			st := seedStudent(t, s, "teacher-1", "Ana")

			first, err := s.SaveResult(ctx, exam.Result{
				ExamID: e.ID, StudentID: st.ID,
				CorrectAnswers: 2, FinalScore: 5,
				Answers: []string{"A", "B", "", ""},
			})
			if err != nil {
				t.Fatalf("save result: %v", err)
			}
			second, err := s.SaveResult(ctx, exam.Result{
				ExamID: e.ID, StudentID: st.ID,
				CorrectAnswers: 4, FinalScore: 10,
				Answers: []string{"A", "B", "C", "D"},
			})
			if err != nil {
				t.Fatalf("re-grade: %v", err)
			}
			if second.ID != first.ID {
				t.Errorf("re-grading must overwrite, got new id %s (was %s)", second.ID, first.ID)
			}
			results, err := s.ListResults(ctx, e.ID)
			if err != nil {
				t.Fatalf("list results: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("expected a single result after re-grade, got %d", len(results))
			}
			if results[0].FinalScore != 10 || results[0].CorrectAnswers != 4 {
				t.Errorf("overwritten result not stored: %+v", results[0])
			}
			if len(results[0].Answers) != 4 || results[0].Answers[2] != "C" {
				t.Errorf("raw answers not persisted: %+v", results[0].Answers)
			}
			if results[0].StudentName != "Ana" {
				t.Errorf("student name not joined: %+v", results[0])
			}
		})
	}
}

func TestStoreResultsRanked(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			scores := map[string]float64{"Ana": 7.5, "Bruno": 10, "Carla": 2.5}
			for n, sc := range scores {
				st := seedStudent(t, s, "teacher-1", n)
				if _, err := s.SaveResult(ctx, exam.Result{
					ExamID: e.ID, StudentID: st.ID, FinalScore: sc,
				}); err != nil {
					t.Fatalf("save result for %s: %v", n, err)
				}
			}
			results, err := s.ListResults(ctx, e.ID)
			if err != nil {
				t.Fatalf("list results: %v", err)
			}
			if len(results) != 3 {
				t.Fatalf("expected 3 results, got %d", len(results))
			}
			for i := 1; i < len(results); i++ {
				if results[i].FinalScore > results[i-1].FinalScore {
					t.Errorf("results not ranked descending: %v then %v",
						results[i-1].FinalScore, results[i].FinalScore)
				}
			}
		})
	}
}

func TestStoreResultRequiresRecords(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			if _, err := s.SaveResult(ctx, exam.Result{ExamID: "ghost", StudentID: "x"}); !errors.Is(err, exam.ErrExamNotFound) {
				t.Errorf("expected ErrExamNotFound, got %v", err)
			}
			if _, err := s.SaveResult(ctx, exam.Result{ExamID: e.ID, StudentID: "ghost"}); !errors.Is(err, exam.ErrStudentNotFound) {
				t.Errorf("expected ErrStudentNotFound, got %v", err)
			}
		})
	}
}

func TestStoreDeleteExamRemovesChildren(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			st := seedStudent(t, s, "teacher-1", "Ana")
			if _, err := s.SaveResult(ctx, exam.Result{ExamID: e.ID, StudentID: st.ID, FinalScore: 5}); err != nil {
				t.Fatalf("save result: %v", err)
			}
			if err := s.DeleteExam(ctx, e.ID); err != nil {
				t.Fatalf("delete exam: %v", err)
			}
			if _, err := s.GetExam(ctx, e.ID); !errors.Is(err, exam.ErrExamNotFound) {
				t.Errorf("exam still present after delete: %v", err)
			}
			results, err := s.ListResults(ctx, e.ID)
			if err != nil {
				t.Fatalf("list results: %v", err)
			}
			if len(results) != 0 {
				t.Errorf("results must be deleted with their exam, got %d", len(results))
			}
			if err := s.DeleteExam(ctx, e.ID); !errors.Is(err, exam.ErrExamNotFound) {
				t.Errorf("second delete: expected ErrExamNotFound, got %v", err)
			}
		})
	}
}

func TestStoreDeleteStudentRemovesResults(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			ana := seedStudent(t, s, "teacher-1", "Ana")
			bruno := seedStudent(t, s, "teacher-1", "Bruno")
			for _, st := range []exam.Student{ana, bruno} {
				if _, err := s.SaveResult(ctx, exam.Result{ExamID: e.ID, StudentID: st.ID, FinalScore: 5}); err != nil {
					t.Fatalf("save result: %v", err)
				}
			}
			if err := s.DeleteStudent(ctx, ana.ID); err != nil {
				t.Fatalf("delete student: %v", err)
			}
			results, err := s.ListResults(ctx, e.ID)
			if err != nil {
				t.Fatalf("list results: %v", err)
			}
			if len(results) != 1 || results[0].StudentID != bruno.ID {
				t.Fatalf("expected only Bruno's result to survive, got %+v", results)
			}
			d, err := s.Dashboard(ctx, "teacher-1")
			if err != nil {
				t.Fatalf("dashboard: %v", err)
			}
			if d.Results != 1 {
				t.Errorf("dashboard counts a deleted student's result: got %d, want 1", d.Results)
			}
		})
	}
}

func TestStoreRankTiesFirstGradedOrder(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			// all graded within the same second, all with the same score
			order := []string{"Ana", "Bruno", "Carla", "Dani"}
			for _, n := range order {
				st := seedStudent(t, s, "teacher-1", n)
				if _, err := s.SaveResult(ctx, exam.Result{ExamID: e.ID, StudentID: st.ID, FinalScore: 7.5}); err != nil {
					t.Fatalf("save result for %s: %v", n, err)
				}
			}
			results, err := s.ListResults(ctx, e.ID)
			if err != nil {
				t.Fatalf("list results: %v", err)
			}
			if len(results) != len(order) {
				t.Fatalf("expected %d results, got %d", len(order), len(results))
			}
			for i, r := range results {
				if r.StudentName != order[i] {
					t.Fatalf("ties must keep grading order: position %d is %s, want %s", i, r.StudentName, order[i])
				}
			}
		})
	}
}

func TestStoreListExamsScoped(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedExam(t, s, "teacher-1")
			seedExam(t, s, "teacher-2")

			mine, err := s.ListExams(ctx, exam.ListOpts{OwnerID: "teacher-1"})
			if err != nil {
				t.Fatalf("list exams: %v", err)
			}
			if len(mine) != 1 {
				t.Fatalf("expected 1 owned exam, got %d", len(mine))
			}
			if mine[0].QuestionCount != 4 {
				t.Errorf("QuestionCount = %d, want 4", mine[0].QuestionCount)
			}

			none, err := s.ListExams(ctx, exam.ListOpts{OwnerID: "teacher-1", Q: "final"})
			if err != nil {
				t.Fatalf("list exams: %v", err)
			}
			if len(none) != 0 {
				t.Errorf("title filter failed, got %d", len(none))
			}
			some, err := s.ListExams(ctx, exam.ListOpts{OwnerID: "teacher-1", Q: "mid"})
			if err != nil {
				t.Fatalf("list exams: %v", err)
			}
			if len(some) != 1 {
				t.Errorf("case-insensitive title filter failed, got %d", len(some))
			}
		})
	}
}

func TestStoreDashboard(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := seedExam(t, s, "teacher-1")
			seedExam(t, s, "teacher-2") // someone else's; must not count
			a := seedStudent(t, s, "teacher-1", "Ana")
			b := seedStudent(t, s, "teacher-1", "Bruno")
			for _, st := range []exam.Student{a, b} {
				if _, err := s.SaveResult(ctx, exam.Result{ExamID: e.ID, StudentID: st.ID, FinalScore: 5}); err != nil {
					t.Fatalf("save result: %v", err)
				}
			}
			d, err := s.Dashboard(ctx, "teacher-1")
			if err != nil {
				t.Fatalf("dashboard: %v", err)
			}
			if d.Exams != 1 || d.Students != 2 || d.Results != 2 {
				t.Errorf("counts = %d/%d/%d, want 1/2/2", d.Exams, d.Students, d.Results)
			}
			if len(d.Recent) != 2 {
				t.Errorf("expected 2 recent results, got %d", len(d.Recent))
			}
		})
	}
}
