package main

import (
	"context"
	"errors"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flowstack/internal/auth"
	"flowstack/internal/config"
	"flowstack/internal/db"
	"flowstack/internal/model"
	"flowstack/internal/repository"
)

type seedUser struct {
	Email       string
	Password    string
	IsSuperuser bool
	Workflows   []seedWorkflow
}

type seedWorkflow struct {
	Name        string
	Description string
	Definition  string
}

var seedUsers = []seedUser{
	{
		Email:       "admin@flowstack.local",
		Password:    "admin-change-me",
		IsSuperuser: true,
	},
	{
		Email:    "alice@example.com",
		Password: "password123",
		Workflows: []seedWorkflow{
			{
				Name:        "Monthly sales rollup",
				Description: "Aggregates order totals per region",
				Definition:  `{"input": "orders.csv", "output": "sales_by_region.csv"}`,
			},
			{
				Name:        "Active customers",
				Description: "Filters the customer table to active rows",
				Definition:  `{"input": "customers.csv", "output": "active_customers.csv"}`,
			},
		},
	},
	{
		Email:    "bob@example.com",
		Password: "password123",
		Workflows: []seedWorkflow{
			{
				Name:        "Inventory snapshot",
				Description: "Counts stock per warehouse",
				Definition:  `{"input": "inventory.csv", "output": "stock_counts.csv"}`,
			},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.User{}, &model.Workflow{}, &model.Step{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	workflowRepo := repository.NewWorkflowRepository(gormDB)

	created, skipped := 0, 0
	for _, su := range seedUsers {
		existing, err := userRepo.FindByEmail(ctx, su.Email)
		if err == nil && existing != nil {
			log.Printf("User %s already exists, skipping", su.Email)
			skipped++
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", su.Email, err)
		}

		hashed, err := auth.HashPassword(su.Password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", su.Email, err)
		}

		user := &model.User{
			Email:        su.Email,
			PasswordHash: hashed,
			IsSuperuser:  su.IsSuperuser,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Email, err)
		}
		created++

		for _, sw := range su.Workflows {
			workflow := &model.Workflow{
				Name:        sw.Name,
				Description: sw.Description,
				Definition:  datatypes.JSON(sw.Definition),
				OwnerID:     user.ID,
			}
			if err := workflowRepo.Create(ctx, workflow); err != nil {
				log.Fatalf("Failed to create workflow %q for %s: %v", sw.Name, su.Email, err)
			}
		}
		log.Printf("Seeded user %s with %d workflows", su.Email, len(su.Workflows))
	}

	log.Printf("Seed complete: %d users created, %d skipped", created, skipped)
}
