package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flowstack/internal/cache"
	errs "flowstack/internal/errors"
	"flowstack/internal/model"
	"flowstack/internal/repository"
)

const workflowCacheTTL = 5 * time.Minute

// WorkflowService exposes workflow operations scoped to the requesting user.
type WorkflowService interface {
	List(ctx context.Context, user *model.User, skip, limit int) ([]model.Workflow, int64, error)
	Create(ctx context.Context, user *model.User, name, description string, definition datatypes.JSON) (*model.Workflow, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Workflow, error)
	ListSteps(ctx context.Context, user *model.User, workflowID uuid.UUID) ([]model.Step, error)
	AddStep(ctx context.Context, user *model.User, workflowID uuid.UUID, step *model.Step) (*model.Step, error)
}

type workflowService struct {
	workflows repository.WorkflowRepository
	steps     repository.StepRepository
	cache     *cache.Client
}

// NewWorkflowService builds a WorkflowService with repositories and cache.
func NewWorkflowService(workflows repository.WorkflowRepository, steps repository.StepRepository, cache *cache.Client) WorkflowService {
	return &workflowService{workflows: workflows, steps: steps, cache: cache}
}

func (s *workflowService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("workflow:%s", id)
}

// List returns the workflows visible to user, offset by skip and capped at
// limit, with the total visible count. Superusers see every workflow;
// everyone else sees only their own. A skip past the end yields an empty
// page, not an error.
func (s *workflowService) List(ctx context.Context, user *model.User, skip, limit int) ([]model.Workflow, int64, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	var (
		workflows []model.Workflow
		count     int64
		err       error
	)
	if user.IsSuperuser {
		count, err = s.workflows.CountAll(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("count workflows: %w", err)
		}
		workflows, err = s.workflows.ListAll(ctx, skip, limit)
	} else {
		count, err = s.workflows.CountByOwner(ctx, user.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("count workflows: %w", err)
		}
		workflows, err = s.workflows.ListByOwner(ctx, user.ID, skip, limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list workflows: %w", err)
	}

	return workflows, count, nil
}

// Create stores a new workflow owned by user.
func (s *workflowService) Create(ctx context.Context, user *model.User, name, description string, definition datatypes.JSON) (*model.Workflow, error) {
	workflow := &model.Workflow{
		Name:        name,
		Description: description,
		Definition:  definition,
		OwnerID:     user.ID,
	}
	if err := s.workflows.Create(ctx, workflow); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	return workflow, nil
}

// Get returns a single workflow if user owns it or is a superuser.
// Workflows belonging to others are reported as not found so their
// existence is not leaked.
func (s *workflowService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Workflow, error) {
	var cached model.Workflow
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return s.authorize(user, &cached)
	}

	workflow, err := s.workflows.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), workflow, workflowCacheTTL)
	return s.authorize(user, workflow)
}

// ListSteps returns the steps of a workflow visible to user, in position
// order.
func (s *workflowService) ListSteps(ctx context.Context, user *model.User, workflowID uuid.UUID) ([]model.Step, error) {
	if _, err := s.Get(ctx, user, workflowID); err != nil {
		return nil, err
	}
	steps, err := s.steps.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return steps, nil
}

// AddStep attaches a step shape to a workflow visible to user.
func (s *workflowService) AddStep(ctx context.Context, user *model.User, workflowID uuid.UUID, step *model.Step) (*model.Step, error) {
	if _, err := s.Get(ctx, user, workflowID); err != nil {
		return nil, err
	}
	step.WorkflowID = workflowID
	if err := s.steps.Create(ctx, step); err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(workflowID))
	return step, nil
}

func (s *workflowService) authorize(user *model.User, workflow *model.Workflow) (*model.Workflow, error) {
	if !user.IsSuperuser && workflow.OwnerID != user.ID {
		return nil, errs.ErrWorkflowNotFound
	}
	return workflow, nil
}
