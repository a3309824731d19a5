package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailAlreadyRegistered is returned when registering an email that
	// already has a user.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// The two cases are never distinguished to the client.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWorkflowNotFound is returned when a workflow does not exist or is
	// not visible to the requesting user.
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// CredentialsDetail is the uniform 401 body detail. Every authentication
// failure surfaces this exact message so the cause is not leaked.
const CredentialsDetail = "Could not validate credentials"

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MapErrorToHTTP maps domain errors to a status code and response body.
func MapErrorToHTTP(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, ErrEmailAlreadyRegistered):
		return http.StatusBadRequest, ErrorResponse{Detail: "Email already registered"}
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, ErrorResponse{Detail: "Invalid email or password"}
	case errors.Is(err, ErrWorkflowNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: "Workflow not found"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"}
	}
}
