package auth

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"flowstack/internal/errors"
	"flowstack/internal/model"
)

// UserContextKey is where the resolved user is stored for the duration of a
// single request. Identity is never cached across requests.
const UserContextKey = "currentUser"

// UserResolver looks up a user by ID. Satisfied by repository.UserRepository.
type UserResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ResolveUser is middleware that runs after JWT verification. It resolves
// the token subject to a stored user and places it in the request context;
// a subject that no longer exists is rejected the same way as a bad token.
func ResolveUser(users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return RejectUnauthenticated(c)
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return RejectUnauthenticated(c)
			}
			subject, err := claims.SubjectID()
			if err != nil {
				return RejectUnauthenticated(c)
			}

			user, err := users.FindByID(c.Request().Context(), subject)
			if err != nil {
				return RejectUnauthenticated(c)
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user placed by ResolveUser.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(UserContextKey).(*model.User)
	return user, ok
}

// RejectUnauthenticated writes the uniform 401 response. All authentication
// failures converge here regardless of internal cause.
func RejectUnauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Detail: errors.CredentialsDetail})
}
