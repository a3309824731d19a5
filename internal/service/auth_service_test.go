package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"flowstack/internal/auth"
	errs "flowstack/internal/errors"
	"flowstack/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret", "HS256", 30*time.Minute)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "email already registered",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: errs.ErrEmailAlreadyRegistered,
		},
		{
			name:     "registration race lost at unique index",
			email:    "race@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errs.ErrEmailAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, newTestJWTService())
			user, token, err := service.Register(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.NotEmpty(t, token)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					PasswordHash: hashed,
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errs.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					PasswordHash: hashed,
				}, nil)
			},
			expectedError: errs.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := newTestJWTService()
			service := NewAuthService(mockRepo, jwtService)

			user, token, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)

				claims, err := jwtService.VerifyToken(token)
				require.NoError(t, err)
				subject, err := claims.SubjectID()
				require.NoError(t, err)
				assert.Equal(t, userID, subject)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// A store outage during login must surface as an internal failure, not as
// bad credentials.
func TestAuthService_Login_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").
		Return(nil, errors.New("dial tcp: connection refused"))

	service := NewAuthService(mockRepo, newTestJWTService())
	_, _, err := service.Login(context.Background(), "a@example.com", "p1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrInvalidCredentials)

	status, _ := errs.MapErrorToHTTP(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	mockRepo.AssertExpectations(t)
}

// Unknown-email and wrong-password failures must be indistinguishable.
func TestAuthService_Login_UniformFailure(t *testing.T) {
	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "real@example.com").Return(&model.User{
		ID:           uuid.New(),
		Email:        "real@example.com",
		PasswordHash: hashed,
	}, nil)

	service := NewAuthService(mockRepo, newTestJWTService())

	_, _, errUnknown := service.Login(context.Background(), "ghost@example.com", "password123")
	_, _, errWrongPass := service.Login(context.Background(), "real@example.com", "wrongpassword")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

// Registering then logging in with the same credentials must both succeed
// and yield tokens bound to the same subject.
func TestAuthService_RegisterThenLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	var stored *model.User
	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*model.User)
		stored.ID = uuid.New()
	}).Return(nil)

	jwtService := newTestJWTService()
	service := NewAuthService(mockRepo, jwtService)

	_, registerToken, err := service.Register(context.Background(), "a@example.com", "p1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(stored, nil)

	_, loginToken, err := service.Login(context.Background(), "a@example.com", "p1")
	require.NoError(t, err)

	for _, token := range []string{registerToken, loginToken} {
		claims, err := jwtService.VerifyToken(token)
		require.NoError(t, err)
		subject, err := claims.SubjectID()
		require.NoError(t, err)
		assert.Equal(t, stored.ID, subject)
	}
}
