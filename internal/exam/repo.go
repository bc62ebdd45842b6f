package exam

import "context"

type ListOpts struct {
	Q       string // substring match on title
	Limit   int
	Offset  int
	OwnerID string // scope to the owning teacher; required for non-admins
}

// DashboardSummary backs the landing page: record counts plus the most
// recently graded results.
type DashboardSummary struct {
	Exams    int      `json:"exams"`
	Students int      `json:"students"`
	Results  int      `json:"results"`
	Recent   []Result `json:"recent"`
}

// Store is the persistence boundary. Implementations assign identifiers and
// graded/created timestamps; the scoring core never does.
type Store interface {
	PutExam(ctx context.Context, e Exam) (Exam, error)
	GetExam(ctx context.Context, id string) (Exam, error)
	DeleteExam(ctx context.Context, id string) error
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)

	PutStudent(ctx context.Context, s Student) (Student, error)
	ListStudents(ctx context.Context, ownerID string) ([]Student, error)
	DeleteStudent(ctx context.Context, id string) error

	// SaveResult upserts on (exam_id, student_id): re-grading a student
	// overwrites the previous result and refreshes graded_at.
	SaveResult(ctx context.Context, r Result) (Result, error)
	// ListResults returns an exam's results ranked by final score descending,
	// ties in insertion order.
	ListResults(ctx context.Context, examID string) ([]Result, error)

	Dashboard(ctx context.Context, ownerID string) (DashboardSummary, error)
}
