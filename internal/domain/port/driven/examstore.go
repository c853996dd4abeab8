package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// ErrExamNotFound indicates the requested exam does not exist.
var ErrExamNotFound = errors.New("exam not found")

// ExamStore defines the driven port for exam persistence.
// Update and Delete return ErrExamNotFound for unknown ids.
type ExamStore interface {
	Create(ctx context.Context, exam model.Exam) error
	Update(ctx context.Context, exam model.Exam) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Exam, error)
	ListAll(ctx context.Context) ([]model.Exam, error)
	Count(ctx context.Context) (int, error)
}
