package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/beaconcdp/beacon/config"
	"github.com/beaconcdp/beacon/internal/api"
	"github.com/beaconcdp/beacon/internal/api/handlers"
	"github.com/beaconcdp/beacon/internal/core/agent"
	"github.com/beaconcdp/beacon/internal/core/auth"
	"github.com/beaconcdp/beacon/internal/core/campaign"
	"github.com/beaconcdp/beacon/internal/core/contact"
	"github.com/beaconcdp/beacon/internal/core/segment"
	"github.com/beaconcdp/beacon/internal/core/validation"
	"github.com/beaconcdp/beacon/internal/core/webhook"
	"github.com/beaconcdp/beacon/internal/messaging"
	"github.com/beaconcdp/beacon/internal/storage/postgres"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate critical configuration
	if cfg.JWT.Secret == "" {
		log.Fatalf("JWT_SECRET environment variable is required")
	}

	// Connect to database
	db, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database")

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	contactRepo := contact.NewRepository(db)
	segmentRepo := segment.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	webhookRepo := webhook.NewRepository(db)
	agentRepo := agent.NewRepository(db)

	// Initialize services
	validator := validation.NewValidator()
	authService := auth.NewService(authRepo, &cfg.JWT)
	webhookService := webhook.NewService(webhookRepo)
	contactService := contact.NewService(contactRepo, validator, webhookService)
	segmentService := segment.NewService(segmentRepo, contactService)
	smsClient := messaging.NewClient(&cfg.Messaging)
	campaignService := campaign.NewService(campaignRepo, segmentService, smsClient, webhookService, cfg.Messaging.FromNumber)
	agentService := agent.NewService(agentRepo, validator)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	workspaceHandler := handlers.NewWorkspaceHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService)
	segmentHandler := handlers.NewSegmentHandler(segmentService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, campaignService, cfg.Messaging.CallbackToken)
	agentHandler := handlers.NewAgentHandler(agentService)
	adminHandler := handlers.NewAdminHandler(authService)

	// Setup router
	router := api.NewRouter(
		authService,
		authHandler,
		workspaceHandler,
		contactHandler,
		segmentHandler,
		campaignHandler,
		webhookHandler,
		agentHandler,
		adminHandler,
	)

	engine := router.Setup(cfg.Server.Mode)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		db.Close()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
