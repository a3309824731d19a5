package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"flowstack/internal/auth"
	errs "flowstack/internal/errors"
	"flowstack/internal/model"
)

// MockWorkflowService is a mock implementation of service.WorkflowService.
type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) List(ctx context.Context, user *model.User, skip, limit int) ([]model.Workflow, int64, error) {
	args := m.Called(ctx, user, skip, limit)
	var workflows []model.Workflow
	if args.Get(0) != nil {
		workflows = args.Get(0).([]model.Workflow)
	}
	return workflows, args.Get(1).(int64), args.Error(2)
}

func (m *MockWorkflowService) Create(ctx context.Context, user *model.User, name, description string, definition datatypes.JSON) (*model.Workflow, error) {
	args := m.Called(ctx, user, name, description, definition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*model.Workflow, error) {
	args := m.Called(ctx, user, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

func (m *MockWorkflowService) ListSteps(ctx context.Context, user *model.User, workflowID uuid.UUID) ([]model.Step, error) {
	args := m.Called(ctx, user, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Step), args.Error(1)
}

func (m *MockWorkflowService) AddStep(ctx context.Context, user *model.User, workflowID uuid.UUID, step *model.Step) (*model.Step, error) {
	args := m.Called(ctx, user, workflowID, step)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Step), args.Error(1)
}

func newWorkflowTestContext(t *testing.T, method, target, body string, user *model.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(auth.UserContextKey, user)
	}
	return c, rec
}

func TestWorkflowHandler_List_Defaults(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	workflows := []model.Workflow{{ID: uuid.New(), Name: "rollup", OwnerID: user.ID}}

	svc := new(MockWorkflowService)
	svc.On("List", mock.Anything, user, 0, 100).Return(workflows, int64(1), nil)

	c, rec := newWorkflowTestContext(t, http.MethodGet, "/workflows/", "", user)
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body WorkflowListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Count)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "rollup", body.Data[0].Name)
	svc.AssertExpectations(t)
}

func TestWorkflowHandler_List_SkipLimitParams(t *testing.T) {
	user := &model.User{ID: uuid.New()}

	svc := new(MockWorkflowService)
	svc.On("List", mock.Anything, user, 5, 2).Return([]model.Workflow{}, int64(9), nil)

	c, rec := newWorkflowTestContext(t, http.MethodGet, "/workflows/?skip=5&limit=2", "", user)
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body WorkflowListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(9), body.Count)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
	svc.AssertExpectations(t)
}

func TestWorkflowHandler_List_BadQueryParams(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	svc := new(MockWorkflowService)

	c, rec := newWorkflowTestContext(t, http.MethodGet, "/workflows/?skip=abc", "", user)
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowHandler_List_Unauthenticated(t *testing.T) {
	svc := new(MockWorkflowService)

	c, rec := newWorkflowTestContext(t, http.MethodGet, "/workflows/", "", nil)
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errs.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errs.CredentialsDetail, body.Detail)
}

func TestWorkflowHandler_Create(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	definition := `{"input": "orders.csv", "output": "totals.csv"}`

	svc := new(MockWorkflowService)
	svc.On("Create", mock.Anything, user, "rollup", "monthly totals", mock.AnythingOfType("datatypes.JSON")).
		Return(&model.Workflow{ID: uuid.New(), Name: "rollup", OwnerID: user.ID}, nil)

	body := `{"name": "rollup", "description": "monthly totals", "definition": ` + definition + `}`
	c, rec := newWorkflowTestContext(t, http.MethodPost, "/workflows/", body, user)
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestWorkflowHandler_Create_MissingName(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	svc := new(MockWorkflowService)

	c, rec := newWorkflowTestContext(t, http.MethodPost, "/workflows/", `{"description": "no name"}`, user)
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowHandler_Get_NotFound(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	id := uuid.New()

	svc := new(MockWorkflowService)
	svc.On("Get", mock.Anything, user, id).Return(nil, errs.ErrWorkflowNotFound)

	c, rec := newWorkflowTestContext(t, http.MethodGet, "/workflows/"+id.String(), "", user)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkflowHandler_Get_InvalidID(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	svc := new(MockWorkflowService)

	c, rec := newWorkflowTestContext(t, http.MethodGet, "/workflows/nope", "", user)
	c.SetParamNames("id")
	c.SetParamValues("nope")
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWorkflowHandler_AddStep(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	workflowID := uuid.New()

	svc := new(MockWorkflowService)
	svc.On("AddStep", mock.Anything, user, workflowID, mock.AnythingOfType("*model.Step")).
		Return(&model.Step{ID: uuid.New(), WorkflowID: workflowID, Type: model.StepTypeFilter}, nil)

	body := `{"name": "keep active", "type": "filter", "column": "status", "condition": "eq", "value": "active"}`
	c, rec := newWorkflowTestContext(t, http.MethodPost, "/workflows/"+workflowID.String()+"/steps", body, user)
	c.SetParamNames("id")
	c.SetParamValues(workflowID.String())
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.AddStep(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestWorkflowHandler_AddStep_BadType(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	workflowID := uuid.New()
	svc := new(MockWorkflowService)

	body := `{"name": "mystery", "type": "join"}`
	c, rec := newWorkflowTestContext(t, http.MethodPost, "/workflows/"+workflowID.String()+"/steps", body, user)
	c.SetParamNames("id")
	c.SetParamValues(workflowID.String())
	h := NewWorkflowHandler(svc)

	require.NoError(t, h.AddStep(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "AddStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
