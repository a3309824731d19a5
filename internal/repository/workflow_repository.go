package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"flowstack/internal/model"
)

// WorkflowRepository defines workflow persistence operations. Listing is
// ordered by creation time so pagination walks insertion order.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *model.Workflow) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Workflow, error)
	ListAll(ctx context.Context, offset, limit int) ([]model.Workflow, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]model.Workflow, error)
	CountAll(ctx context.Context) (int64, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository builds a GORM-backed repository.
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, workflow *model.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *workflowRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Workflow, error) {
	var workflow model.Workflow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workflow).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) ListAll(ctx context.Context, offset, limit int) ([]model.Workflow, error) {
	var workflows []model.Workflow
	err := r.db.WithContext(ctx).
		Order("created_at").
		Offset(offset).
		Limit(limit).
		Find(&workflows).Error
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *workflowRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]model.Workflow, error) {
	var workflows []model.Workflow
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Offset(offset).
		Limit(limit).
		Find(&workflows).Error
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *workflowRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Workflow{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *workflowRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Workflow{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
