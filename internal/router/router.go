package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"flowstack/internal/auth"
	"flowstack/internal/config"
	"flowstack/internal/handler"
	"flowstack/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	workflowHandler *handler.WorkflowHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// Secured routes: bearer token verification followed by subject
	// resolution. Every failure in either stage yields the same 401.
	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(cfg.JWTSecret),
		SigningMethod: cfg.JWTAlgorithm,
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &auth.Claims{}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return auth.RejectUnauthenticated(c)
		},
	}), auth.ResolveUser(userRepo))

	secured.GET("/auth/me", authHandler.Me)

	// Workflow routes
	secured.GET("/workflows/", workflowHandler.List)
	secured.POST("/workflows/", workflowHandler.Create)
	secured.GET("/workflows/:id", workflowHandler.Get)
	secured.GET("/workflows/:id/steps", workflowHandler.ListSteps)
	secured.POST("/workflows/:id/steps", workflowHandler.AddStep)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
