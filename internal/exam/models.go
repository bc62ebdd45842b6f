package exam

// ScoringType selects how an exam's total points are spread over its questions.
type ScoringType string

const (
	ScoringEqual  ScoringType = "equal"  // total split evenly across questions
	ScoringCustom ScoringType = "custom" // per-question points set by the author
)

// OptionLetters is the fixed answer alphabet for multiple-choice questions.
var OptionLetters = []string{"A", "B", "C", "D", "E"}

type Question struct {
	ID            string  `json:"id,omitempty"`
	Number        int     `json:"number"` // 1-based, contiguous within the exam
	CorrectAnswer string  `json:"correct_answer"`
	Points        float64 `json:"points"`
}

type Exam struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id,omitempty"`
	Title       string      `json:"title"`
	Date        string      `json:"date"` // YYYY-MM-DD
	TotalPoints float64     `json:"total_points"`
	ScoringType ScoringType `json:"scoring_type"`
	Questions   []Question  `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// ExamSummary is the list-view projection (questions not loaded).
type ExamSummary struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Date          string      `json:"date"`
	TotalPoints   float64     `json:"total_points"`
	ScoringType   ScoringType `json:"scoring_type"`
	QuestionCount int         `json:"question_count"`
	CreatedAt     int64       `json:"created_at"`
}

type Student struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Name      string `json:"name"`
	Classroom string `json:"classroom,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Result is one student's graded outcome for one exam. Answers keeps the raw
// submitted letters (one per question, "" for unanswered) so per-question
// analytics can be recomputed from real data later.
type Result struct {
	ID             string   `json:"id"`
	ExamID         string   `json:"exam_id"`
	StudentID      string   `json:"student_id"`
	StudentName    string   `json:"student_name,omitempty"`
	CorrectAnswers int      `json:"correct_answers"`
	FinalScore     float64  `json:"final_score"`
	Answers        []string `json:"answers,omitempty"`
	GradedAt       int64    `json:"graded_at"`
}
