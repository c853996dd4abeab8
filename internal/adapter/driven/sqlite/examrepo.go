package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ExamStore = (*ExamRepo)(nil)

const examColumns = `id, title, subject, description, duration_minutes, questions, created_by, created_at, updated_at`

// ExamRepo is the SQLite implementation of the ExamStore port interface.
type ExamRepo struct {
	db *DB
}

// NewExamRepo creates a new ExamRepo backed by the given DB.
func NewExamRepo(db *DB) *ExamRepo {
	return &ExamRepo{db: db}
}

// Create inserts a new exam.
func (r *ExamRepo) Create(ctx context.Context, exam model.Exam) error {
	const query = `INSERT INTO exams (` + examColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		exam.ID,
		exam.Title,
		exam.Subject,
		exam.Description,
		exam.DurationMinutes,
		questionsText(exam.Questions),
		exam.CreatedBy,
		formatTime(exam.CreatedAt),
		formatTime(exam.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create exam %s: %w", exam.ID, err)
	}
	return nil
}

// Update replaces every field of an existing exam except id, created_by and created_at.
func (r *ExamRepo) Update(ctx context.Context, exam model.Exam) error {
	const query = `UPDATE exams SET title = ?, subject = ?, description = ?, duration_minutes = ?, questions = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		exam.Title,
		exam.Subject,
		exam.Description,
		exam.DurationMinutes,
		questionsText(exam.Questions),
		formatTime(exam.UpdatedAt),
		exam.ID,
	)
	if err != nil {
		return fmt.Errorf("update exam %s: %w", exam.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update exam %s: %w", exam.ID, driven.ErrExamNotFound)
	}
	return nil
}

// Delete removes an exam by id.
func (r *ExamRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM exams WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete exam %s: %w", id, driven.ErrExamNotFound)
	}
	return nil
}

// GetByID returns the exam with the given id, or nil if none exists.
func (r *ExamRepo) GetByID(ctx context.Context, id string) (*model.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams WHERE id = ?`

	exam, err := scanExam(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exam %s: %w", id, err)
	}
	return exam, nil
}

// ListAll returns all exams, oldest first.
func (r *ExamRepo) ListAll(ctx context.Context) ([]model.Exam, error) {
	const query = `SELECT ` + examColumns + ` FROM exams ORDER BY created_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		exams = append(exams, *exam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exams: %w", err)
	}

	return exams, nil
}

// Count returns the number of stored exams.
func (r *ExamRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM exams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exams: %w", err)
	}
	return n, nil
}

func questionsText(q json.RawMessage) string {
	if len(q) == 0 {
		return "[]"
	}
	return string(q)
}

func scanExam(s scanner) (*model.Exam, error) {
	var exam model.Exam
	var questions, createdAt, updatedAt string

	err := s.Scan(
		&exam.ID, &exam.Title, &exam.Subject, &exam.Description, &exam.DurationMinutes,
		&questions, &exam.CreatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	exam.Questions = json.RawMessage(questions)

	if exam.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if exam.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &exam, nil
}
