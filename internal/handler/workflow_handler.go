package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"flowstack/internal/auth"
	"flowstack/internal/errors"
	"flowstack/internal/model"
	"flowstack/internal/service"
)

const defaultListLimit = 100

// WorkflowHandler handles workflow endpoints.
type WorkflowHandler struct {
	workflowService service.WorkflowService
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

// CreateWorkflowRequest carries a workflow creation body.
type CreateWorkflowRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Definition  json.RawMessage `json:"definition"`
}

// CreateStepRequest carries a step creation body.
type CreateStepRequest struct {
	Name          string `json:"name" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=filter aggregate"`
	Column        string `json:"column"`
	Condition     string `json:"condition"`
	Value         string `json:"value"`
	AggregateFunc string `json:"aggregate_function"`
	Position      int    `json:"position" validate:"gte=0"`
}

// WorkflowListResponse is the listing envelope.
type WorkflowListResponse struct {
	Data  []model.Workflow `json:"data"`
	Count int64            `json:"count"`
}

// StepListResponse is the step listing envelope.
type StepListResponse struct {
	Data  []model.Step `json:"data"`
	Count int          `json:"count"`
}

// List godoc
// @Summary List workflows visible to the authenticated user
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Number of records to skip" default(0)
// @Param limit query int false "Maximum records to return" default(100)
// @Success 200 {object} WorkflowListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /workflows/ [get]
func (h *WorkflowHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.RejectUnauthenticated(c)
	}

	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "skip must be an integer"})
	}
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "limit must be an integer"})
	}

	workflows, count, err := h.workflowService.List(c.Request().Context(), user, skip, limit)
	if err != nil {
		status, body := errors.MapErrorToHTTP(err)
		return c.JSON(status, body)
	}

	if workflows == nil {
		workflows = []model.Workflow{}
	}
	return c.JSON(http.StatusOK, WorkflowListResponse{
		Data:  workflows,
		Count: count,
	})
}

// Create godoc
// @Summary Create a workflow owned by the authenticated user
// @Tags workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateWorkflowRequest true "Workflow definition"
// @Success 201 {object} model.Workflow
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /workflows/ [post]
func (h *WorkflowHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.RejectUnauthenticated(c)
	}

	var req CreateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: err.Error()})
	}

	workflow, err := h.workflowService.Create(c.Request().Context(), user, req.Name, req.Description, datatypes.JSON(req.Definition))
	if err != nil {
		status, body := errors.MapErrorToHTTP(err)
		return c.JSON(status, body)
	}

	return c.JSON(http.StatusCreated, workflow)
}

// Get godoc
// @Summary Get a workflow by ID
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Success 200 {object} model.Workflow
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) Get(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.RejectUnauthenticated(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "invalid workflow ID"})
	}

	workflow, err := h.workflowService.Get(c.Request().Context(), user, id)
	if err != nil {
		status, body := errors.MapErrorToHTTP(err)
		return c.JSON(status, body)
	}

	return c.JSON(http.StatusOK, workflow)
}

// ListSteps godoc
// @Summary List the steps of a workflow
// @Tags workflows
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Success 200 {object} StepListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /workflows/{id}/steps [get]
func (h *WorkflowHandler) ListSteps(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.RejectUnauthenticated(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "invalid workflow ID"})
	}

	steps, err := h.workflowService.ListSteps(c.Request().Context(), user, id)
	if err != nil {
		status, body := errors.MapErrorToHTTP(err)
		return c.JSON(status, body)
	}

	if steps == nil {
		steps = []model.Step{}
	}
	return c.JSON(http.StatusOK, StepListResponse{
		Data:  steps,
		Count: len(steps),
	})
}

// AddStep godoc
// @Summary Attach a step to a workflow
// @Tags workflows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Workflow ID"
// @Param request body CreateStepRequest true "Step shape"
// @Success 201 {object} model.Step
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /workflows/{id}/steps [post]
func (h *WorkflowHandler) AddStep(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return auth.RejectUnauthenticated(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "invalid workflow ID"})
	}

	var req CreateStepRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errors.ErrorResponse{Detail: err.Error()})
	}

	step := &model.Step{
		Name:          req.Name,
		Type:          model.StepType(req.Type),
		Column:        req.Column,
		Condition:     req.Condition,
		Value:         req.Value,
		AggregateFunc: req.AggregateFunc,
		Position:      req.Position,
	}
	created, err := h.workflowService.AddStep(c.Request().Context(), user, id, step)
	if err != nil {
		status, body := errors.MapErrorToHTTP(err)
		return c.JSON(status, body)
	}

	return c.JSON(http.StatusCreated, created)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
