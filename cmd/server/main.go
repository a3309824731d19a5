package main

import (
	"log"
	"net/http"
	"os"

	_ "flowstack/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"flowstack/internal/auth"
	"flowstack/internal/cache"
	"flowstack/internal/config"
	"flowstack/internal/db"
	"flowstack/internal/handler"
	"flowstack/internal/model"
	"flowstack/internal/repository"
	"flowstack/internal/router"
	"flowstack/internal/service"
)

// @title Flowstack API
// @version 1.0
// @description Workflow definition backend with JWT authentication and ownership-scoped access.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Step{},
			&model.Workflow{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Workflow{},
		&model.Step{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	workflowRepo := repository.NewWorkflowRepository(gormDB)
	stepRepo := repository.NewStepRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	workflowService := service.NewWorkflowService(workflowRepo, stepRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)

	// Register routes
	router.Register(e, cfg, userRepo, authHandler, workflowHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
