package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) (Exam, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
		e.CreatedAt = time.Now().Unix()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Exam{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO exams (id,owner_id,title,date,total_points,scoring_type,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, date=EXCLUDED.date,
		total_points=EXCLUDED.total_points, scoring_type=EXCLUDED.scoring_type`,
		e.ID, e.OwnerID, e.Title, e.Date, e.TotalPoints, string(e.ScoringType), e.CreatedAt)
	if err != nil {
		return Exam{}, err
	}

	// replace the question set wholesale; the exam owns its questions
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, e.ID); err != nil {
		return Exam{}, err
	}
	for i := range e.Questions {
		q := &e.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions (id,exam_id,number,correct_answer,points)
			VALUES ($1,$2,$3,$4,$5)`,
			q.ID, e.ID, q.Number, q.CorrectAnswer, q.Points); err != nil {
			return Exam{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,owner_id,title,date,total_points,scoring_type,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var st string
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Date, &e.TotalPoints, &st, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	e.ScoringType = ScoringType(st)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id,number,correct_answer,points FROM questions WHERE exam_id=$1 ORDER BY number ASC`, id)
	if err != nil {
		return Exam{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Number, &q.CorrectAnswer, &q.Points); err != nil {
			return Exam{}, err
		}
		e.Questions = append(e.Questions, q)
	}
	return e, rows.Err()
}

func (s *SQLStore) DeleteExam(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	// explicit child deletes so sqlite works without foreign_keys pragma
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE exam_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE exam_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExamNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT e.id, e.title, e.date, e.total_points, e.scoring_type, e.created_at,
		(SELECT COUNT(1) FROM questions qs WHERE qs.exam_id = e.id) AS question_count
		FROM exams e WHERE 1=1`
	args := []interface{}{}
	if opts.OwnerID != "" {
		args = append(args, opts.OwnerID)
		q += ` AND e.owner_id=` + ph(len(args))
	}
	if strings.TrimSpace(opts.Q) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(opts.Q))+"%")
		q += ` AND LOWER(e.title) LIKE ` + ph(len(args))
	}
	args = append(args, limit)
	q += ` ORDER BY e.created_at DESC LIMIT ` + ph(len(args))
	args = append(args, opts.Offset)
	q += ` OFFSET ` + ph(len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamSummary{}
	for rows.Next() {
		var es ExamSummary
		var st string
		if err := rows.Scan(&es.ID, &es.Title, &es.Date, &es.TotalPoints, &st, &es.CreatedAt, &es.QuestionCount); err != nil {
			return nil, err
		}
		es.ScoringType = ScoringType(st)
		out = append(out, es)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutStudent(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
		st.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO students (id,owner_id,name,classroom,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, classroom=EXCLUDED.classroom`,
		st.ID, st.OwnerID, st.Name, st.Classroom, st.CreatedAt)
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

func (s *SQLStore) ListStudents(ctx context.Context, ownerID string) ([]Student, error) {
	q := `SELECT id,owner_id,name,classroom,created_at FROM students`
	args := []interface{}{}
	if ownerID != "" {
		q += ` WHERE owner_id=$1`
		args = append(args, ownerID)
	}
	q += ` ORDER BY name ASC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.OwnerID, &st.Name, &st.Classroom, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteStudent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE student_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) SaveResult(ctx context.Context, r Result) (Result, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, r.ExamID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrExamNotFound
		}
		return Result{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id=$1`, r.StudentID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrStudentNotFound
		}
		return Result{}, err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.GradedAt = time.Now().Unix()
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return Result{}, err
	}
	// seq breaks score ties by first-graded order; graded_at alone is only
	// second-precision. A re-grade keeps the original seq.
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (id,exam_id,student_id,correct_answers,final_score,answers_json,graded_at,seq)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (exam_id,student_id) DO UPDATE SET
		correct_answers=EXCLUDED.correct_answers, final_score=EXCLUDED.final_score,
		answers_json=EXCLUDED.answers_json, graded_at=EXCLUDED.graded_at`,
		r.ID, r.ExamID, r.StudentID, r.CorrectAnswers, r.FinalScore, string(aj), r.GradedAt, time.Now().UnixNano())
	if err != nil {
		return Result{}, err
	}
	// the upsert may have kept the original row id
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM results WHERE exam_id=$1 AND student_id=$2`,
		r.ExamID, r.StudentID).Scan(&r.ID); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) ListResults(ctx context.Context, examID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.exam_id, r.student_id, st.name, r.correct_answers, r.final_score, r.answers_json, r.graded_at
		 FROM results r JOIN students st ON st.id = r.student_id
		 WHERE r.exam_id=$1
		 ORDER BY r.final_score DESC, r.seq ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Dashboard(ctx context.Context, ownerID string) (DashboardSummary, error) {
	var d DashboardSummary
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM exams WHERE owner_id=$1`, ownerID).Scan(&d.Exams); err != nil {
		return d, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM students WHERE owner_id=$1`, ownerID).Scan(&d.Students); err != nil {
		return d, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM results r JOIN exams e ON e.id=r.exam_id WHERE e.owner_id=$1`,
		ownerID).Scan(&d.Results); err != nil {
		return d, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.exam_id, r.student_id, st.name, r.correct_answers, r.final_score, r.answers_json, r.graded_at
		 FROM results r
		 JOIN students st ON st.id = r.student_id
		 JOIN exams e ON e.id = r.exam_id
		 WHERE e.owner_id=$1
		 ORDER BY r.graded_at DESC, r.seq DESC LIMIT 5`, ownerID)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	d.Recent = []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return d, err
		}
		d.Recent = append(d.Recent, r)
	}
	return d, rows.Err()
}

func scanResult(rows *sql.Rows) (Result, error) {
	var r Result
	var aj string
	if err := rows.Scan(&r.ID, &r.ExamID, &r.StudentID, &r.StudentName,
		&r.CorrectAnswers, &r.FinalScore, &aj, &r.GradedAt); err != nil {
		return Result{}, err
	}
	if aj != "" {
		if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
			return Result{}, err
		}
	}
	return r, nil
}

// ph renders the nth positional placeholder ($1, $2, ...), understood by both
// the pgx and modernc sqlite drivers.
func ph(n int) string { return fmt.Sprintf("$%d", n) }
