package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// Exam defaults applied on create when a field is omitted.
const (
	DefaultExamSubject  = "General"
	DefaultExamDuration = 60
)

// ExamService manages exam records for the admin dashboard and the public
// catalog. It depends only on the ExamStore port.
type ExamService struct {
	store  driven.ExamStore
	clock  Clock
	logger *slog.Logger
}

// NewExamService creates an ExamService. clock may be nil.
func NewExamService(store driven.ExamStore, clock Clock, logger *slog.Logger) *ExamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExamService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Create stores a new exam built from patch, filling defaults for omitted
// fields. createdBy is the admin client id.
func (s *ExamService) Create(ctx context.Context, patch model.ExamPatch, createdBy string) (*model.Exam, error) {
	now := s.clock.now().UTC()
	exam := model.Exam{
		ID:              "exam-" + uuid.NewString(),
		Subject:         DefaultExamSubject,
		DurationMinutes: DefaultExamDuration,
		Questions:       json.RawMessage("[]"),
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	patch.Apply(&exam)

	if err := s.store.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.logger.Info("exam created", "id", exam.ID, "created_by", createdBy)
	return &exam, nil
}

// Update applies patch to an existing exam. Returns ErrNotFound for an unknown id.
func (s *ExamService) Update(ctx context.Context, id string, patch model.ExamPatch) (*model.Exam, error) {
	exam, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get exam %s: %w", id, err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}

	patch.Apply(exam)
	exam.UpdatedAt = s.clock.now().UTC()

	if err := s.store.Update(ctx, *exam); err != nil {
		if errors.Is(err, driven.ErrExamNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return exam, nil
}

// Delete removes an exam. Returns ErrNotFound for an unknown id.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, driven.ErrExamNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete exam: %w", err)
	}
	s.logger.Info("exam deleted", "id", id)
	return nil
}

// Get returns the exam with id. Returns ErrNotFound for an unknown id.
func (s *ExamService) Get(ctx context.Context, id string) (*model.Exam, error) {
	exam, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get exam %s: %w", id, err)
	}
	if exam == nil {
		return nil, ErrNotFound
	}
	return exam, nil
}

// List returns every exam. The result is never nil.
func (s *ExamService) List(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Count returns the number of stored exams.
func (s *ExamService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count exams: %w", err)
	}
	return n, nil
}
