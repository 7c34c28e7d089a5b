package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/beaconcdp/beacon/config"
	"github.com/beaconcdp/beacon/internal/core/auth"
	"github.com/beaconcdp/beacon/internal/storage/postgres"
)

func main() {
	adminEmail := os.Getenv("PLATFORM_ADMIN_EMAIL")
	adminPassword := os.Getenv("PLATFORM_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("PLATFORM_ADMIN_EMAIL and PLATFORM_ADMIN_PASSWORD environment variables are required")
	}

	cfg := config.Load()

	db, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	authRepo := auth.NewRepository(db)

	// Check if the admin already exists
	existing, err := authRepo.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("Failed to check for existing user: %v", err)
	}

	if existing != nil {
		if existing.IsPlatformAdmin {
			fmt.Printf("Platform admin '%s' already exists\n", adminEmail)
			os.Exit(0)
		}
		if err := promoteAdmin(ctx, authRepo, existing.ID); err != nil {
			log.Fatalf("Failed to promote existing user: %v", err)
		}
		fmt.Printf("Promoted existing user '%s' to platform admin\n", adminEmail)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &auth.User{
		ID:              uuid.New(),
		Email:           adminEmail,
		PasswordHash:    string(hash),
		Name:            "Platform Admin",
		Status:          "active",
		IsPlatformAdmin: true,
	}

	if err := authRepo.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create platform admin: %v", err)
	}

	fmt.Printf("Successfully created platform admin: %s\n", adminEmail)
}

func promoteAdmin(ctx context.Context, repo *auth.Repository, userID uuid.UUID) error {
	user, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	now := time.Now()
	user.IsPlatformAdmin = true
	user.AdminPromotedAt = &now
	// AdminPromotedBy stays nil for initial setup

	return repo.UpdateUser(ctx, user)
}
