package exam

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrStudentNotFound = errors.New("student not found")
)

type memoryStore struct {
	mu       sync.RWMutex
	exams    map[string]Exam
	students map[string]Student
	results  map[string]Result // id -> result
	order    []string          // result ids in insertion order, for stable ranking
}

// NewInMemoryStore is used by tests and by offline demos without a DB file.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:    map[string]Exam{},
		students: map[string]Student{},
		results:  map[string]Result{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) (Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
		e.CreatedAt = time.Now().Unix()
	}
	for i := range e.Questions {
		if e.Questions[i].ID == "" {
			e.Questions[i].ID = uuid.NewString()
		}
	}
	m.exams[e.ID] = e
	return e, nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (m *memoryStore) DeleteExam(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[id]; !ok {
		return ErrExamNotFound
	}
	delete(m.exams, id)
	// exam owns its questions and results; both go with it
	kept := m.order[:0]
	for _, rid := range m.order {
		if m.results[rid].ExamID == id {
			delete(m.results, rid)
			continue
		}
		kept = append(kept, rid)
	}
	m.order = kept
	return nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []ExamSummary
	for _, e := range m.exams {
		if opts.OwnerID != "" && e.OwnerID != opts.OwnerID {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(opts.Q)) {
			continue
		}
		all = append(all, ExamSummary{
			ID:            e.ID,
			Title:         e.Title,
			Date:          e.Date,
			TotalPoints:   e.TotalPoints,
			ScoringType:   e.ScoringType,
			QuestionCount: len(e.Questions),
			CreatedAt:     e.CreatedAt,
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	return page(all, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) PutStudent(_ context.Context, s Student) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
		s.CreatedAt = time.Now().Unix()
	}
	m.students[s.ID] = s
	return s, nil
}

func (m *memoryStore) ListStudents(_ context.Context, ownerID string) ([]Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Student
	for _, s := range m.students {
		if ownerID != "" && s.OwnerID != ownerID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) DeleteStudent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[id]; !ok {
		return ErrStudentNotFound
	}
	delete(m.students, id)
	// Results reference the student by id; drop them like the SQL store does.
	kept := m.order[:0]
	for _, rid := range m.order {
		if m.results[rid].StudentID == id {
			delete(m.results, rid)
			continue
		}
		kept = append(kept, rid)
	}
	m.order = kept
	return nil
}

func (m *memoryStore) SaveResult(_ context.Context, r Result) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[r.ExamID]; !ok {
		return Result{}, ErrExamNotFound
	}
	if _, ok := m.students[r.StudentID]; !ok {
		return Result{}, ErrStudentNotFound
	}
	// overwrite any earlier grading of the same student on the same exam
	for _, rid := range m.order {
		prev := m.results[rid]
		if prev.ExamID == r.ExamID && prev.StudentID == r.StudentID {
			r.ID = prev.ID
			r.GradedAt = time.Now().Unix()
			m.results[rid] = r
			return r, nil
		}
	}
	r.ID = uuid.NewString()
	r.GradedAt = time.Now().Unix()
	m.results[r.ID] = r
	m.order = append(m.order, r.ID)
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context, examID string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, rid := range m.order {
		r := m.results[rid]
		if r.ExamID != examID {
			continue
		}
		if s, ok := m.students[r.StudentID]; ok {
			r.StudentName = s.Name
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out, nil
}

func (m *memoryStore) Dashboard(_ context.Context, ownerID string) (DashboardSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var d DashboardSummary
	owned := map[string]bool{}
	for id, e := range m.exams {
		if ownerID == "" || e.OwnerID == ownerID {
			owned[id] = true
			d.Exams++
		}
	}
	for _, s := range m.students {
		if ownerID == "" || s.OwnerID == ownerID {
			d.Students++
		}
	}
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.results[m.order[i]]
		if !owned[r.ExamID] {
			continue
		}
		d.Results++
		if len(d.Recent) < 5 {
			if s, ok := m.students[r.StudentID]; ok {
				r.StudentName = s.Name
			}
			d.Recent = append(d.Recent, r)
		}
	}
	return d, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
