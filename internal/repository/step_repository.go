package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"flowstack/internal/model"
)

// StepRepository defines step persistence operations.
type StepRepository interface {
	Create(ctx context.Context, step *model.Step) error
	ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]model.Step, error)
}

type stepRepository struct {
	db *gorm.DB
}

// NewStepRepository builds a GORM-backed repository.
func NewStepRepository(db *gorm.DB) StepRepository {
	return &stepRepository{db: db}
}

func (r *stepRepository) Create(ctx context.Context, step *model.Step) error {
	return r.db.WithContext(ctx).Create(step).Error
}

func (r *stepRepository) ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]model.Step, error) {
	var steps []model.Step
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("position").
		Find(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}
