package api

import (
	"github.com/gin-gonic/gin"

	"github.com/beaconcdp/beacon/internal/api/handlers"
	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/auth"
)

type Router struct {
	engine           *gin.Engine
	authMiddleware   *middleware.AuthMiddleware
	authHandler      *handlers.AuthHandler
	workspaceHandler *handlers.WorkspaceHandler
	contactHandler   *handlers.ContactHandler
	segmentHandler   *handlers.SegmentHandler
	campaignHandler  *handlers.CampaignHandler
	webhookHandler   *handlers.WebhookHandler
	agentHandler     *handlers.AgentHandler
	adminHandler     *handlers.AdminHandler
}

func NewRouter(
	authService *auth.Service,
	authHandler *handlers.AuthHandler,
	workspaceHandler *handlers.WorkspaceHandler,
	contactHandler *handlers.ContactHandler,
	segmentHandler *handlers.SegmentHandler,
	campaignHandler *handlers.CampaignHandler,
	webhookHandler *handlers.WebhookHandler,
	agentHandler *handlers.AgentHandler,
	adminHandler *handlers.AdminHandler,
) *Router {
	return &Router{
		authMiddleware:   middleware.NewAuthMiddleware(authService),
		authHandler:      authHandler,
		workspaceHandler: workspaceHandler,
		contactHandler:   contactHandler,
		segmentHandler:   segmentHandler,
		campaignHandler:  campaignHandler,
		webhookHandler:   webhookHandler,
		agentHandler:     agentHandler,
		adminHandler:     adminHandler,
	}
}

func (r *Router) Setup(mode string) *gin.Engine {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(gin.Logger())
	r.engine.Use(middleware.ErrorHandler())
	r.engine.Use(middleware.AuditMiddleware())

	r.setupRoutes()
	return r.engine
}

func (r *Router) setupRoutes() {
	api := r.engine.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", r.authHandler.Register)
		authRoutes.POST("/login", r.authHandler.Login)
	}

	// Vendor status callbacks (public, token-guarded)
	api.POST("/callbacks/sms-status", r.webhookHandler.StatusCallback)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.authMiddleware.Authenticate())
	{
		// Current user
		protected.GET("/auth/me", r.authHandler.Me)

		// Workspaces (requires auth, no specific workspace)
		workspaces := protected.Group("/workspaces")
		{
			workspaces.POST("", r.workspaceHandler.Create)
			workspaces.GET("", r.workspaceHandler.List)
		}

		// Workspace-specific routes
		workspace := protected.Group("/workspaces/:workspaceId")
		workspace.Use(r.authMiddleware.RequireWorkspace())
		{
			workspace.GET("", r.workspaceHandler.Get)
			workspace.PUT("", r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.Update)
			workspace.DELETE("", r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.Delete)

			// Roles
			workspace.GET("/roles", r.workspaceHandler.ListRoles)
			workspace.POST("/roles", r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.CreateRole)

			// Members
			workspace.GET("/members", r.workspaceHandler.ListMembers)
			workspace.POST("/members", r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.AddMember)
			workspace.DELETE("/members/:userId", r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.RemoveMember)

			// API Keys
			workspace.GET("/api-keys", r.workspaceHandler.ListAPIKeys)
			workspace.POST("/api-keys", r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.CreateAPIKey)
		}

		// API key deletion (not workspace-scoped in URL)
		protected.DELETE("/api-keys/:keyId", r.authMiddleware.RequireWorkspace(), r.authMiddleware.RequirePermission(auth.PermWorkspaceManage), r.workspaceHandler.DeleteAPIKey)

		// Contacts (workspace required via header or param)
		contacts := protected.Group("/contacts")
		contacts.Use(r.authMiddleware.RequireWorkspace())
		{
			contacts.POST("", r.authMiddleware.RequirePermission(auth.PermContactWrite), r.contactHandler.Create)
			contacts.GET("", r.authMiddleware.RequirePermission(auth.PermContactRead), r.contactHandler.List)
			contacts.POST("/search", r.authMiddleware.RequirePermission(auth.PermContactRead), r.contactHandler.Search)
			contacts.POST("/filter", r.authMiddleware.RequirePermission(auth.PermContactRead), r.contactHandler.Filter)
			contacts.GET("/fields", r.authMiddleware.RequirePermission(auth.PermContactRead), r.contactHandler.Fields)
			contacts.GET("/:id", r.authMiddleware.RequirePermission(auth.PermContactRead), r.contactHandler.Get)
			contacts.PUT("/:id", r.authMiddleware.RequirePermission(auth.PermContactWrite), r.contactHandler.Update)
			contacts.DELETE("/:id", r.authMiddleware.RequirePermission(auth.PermContactDelete), r.contactHandler.Delete)
		}

		// Attribute definitions
		attributes := protected.Group("/attributes")
		attributes.Use(r.authMiddleware.RequireWorkspace())
		{
			attributes.POST("", r.authMiddleware.RequirePermission(auth.PermContactWrite), r.contactHandler.CreateAttribute)
			attributes.GET("", r.authMiddleware.RequirePermission(auth.PermContactRead), r.contactHandler.ListAttributes)
			attributes.DELETE("/:key", r.authMiddleware.RequirePermission(auth.PermContactDelete), r.contactHandler.DeleteAttribute)
		}

		// Segments
		segments := protected.Group("/segments")
		segments.Use(r.authMiddleware.RequireWorkspace())
		{
			segments.POST("", r.authMiddleware.RequirePermission(auth.PermSegmentWrite), r.segmentHandler.Create)
			segments.GET("", r.authMiddleware.RequirePermission(auth.PermSegmentRead), r.segmentHandler.List)
			segments.POST("/preview", r.authMiddleware.RequirePermission(auth.PermSegmentRead), r.segmentHandler.Preview)
			segments.GET("/:id", r.authMiddleware.RequirePermission(auth.PermSegmentRead), r.segmentHandler.Get)
			segments.PUT("/:id", r.authMiddleware.RequirePermission(auth.PermSegmentWrite), r.segmentHandler.Update)
			segments.DELETE("/:id", r.authMiddleware.RequirePermission(auth.PermSegmentDelete), r.segmentHandler.Delete)
			segments.GET("/:id/contacts", r.authMiddleware.RequirePermission(auth.PermSegmentRead), r.segmentHandler.Evaluate)
			segments.POST("/:id/members", r.authMiddleware.RequirePermission(auth.PermSegmentWrite), r.segmentHandler.AddMember)
			segments.DELETE("/:id/members/:contactId", r.authMiddleware.RequirePermission(auth.PermSegmentWrite), r.segmentHandler.RemoveMember)
		}

		// Campaigns
		campaigns := protected.Group("/campaigns")
		campaigns.Use(r.authMiddleware.RequireWorkspace())
		{
			campaigns.POST("", r.authMiddleware.RequirePermission(auth.PermCampaignWrite), r.campaignHandler.Create)
			campaigns.GET("", r.authMiddleware.RequirePermission(auth.PermCampaignRead), r.campaignHandler.List)
			campaigns.GET("/:id", r.authMiddleware.RequirePermission(auth.PermCampaignRead), r.campaignHandler.Get)
			campaigns.PUT("/:id", r.authMiddleware.RequirePermission(auth.PermCampaignWrite), r.campaignHandler.Update)
			campaigns.DELETE("/:id", r.authMiddleware.RequirePermission(auth.PermCampaignWrite), r.campaignHandler.Delete)
			campaigns.POST("/:id/send", r.authMiddleware.RequirePermission(auth.PermCampaignSend), r.campaignHandler.Send)
			campaigns.POST("/:id/messages", r.authMiddleware.RequirePermission(auth.PermCampaignRead), r.campaignHandler.Messages)
		}

		// Outbound webhooks
		webhooks := protected.Group("/webhooks")
		webhooks.Use(r.authMiddleware.RequireWorkspace())
		{
			webhooks.POST("", r.authMiddleware.RequirePermission(auth.PermWebhookWrite), r.webhookHandler.Create)
			webhooks.GET("", r.authMiddleware.RequirePermission(auth.PermWebhookRead), r.webhookHandler.List)
			webhooks.GET("/:id", r.authMiddleware.RequirePermission(auth.PermWebhookRead), r.webhookHandler.Get)
			webhooks.PUT("/:id", r.authMiddleware.RequirePermission(auth.PermWebhookWrite), r.webhookHandler.Update)
			webhooks.DELETE("/:id", r.authMiddleware.RequirePermission(auth.PermWebhookWrite), r.webhookHandler.Delete)
		}

		// Agents
		agents := protected.Group("/agents")
		agents.Use(r.authMiddleware.RequireWorkspace())
		{
			agents.POST("", r.authMiddleware.RequirePermission(auth.PermAgentWrite), r.agentHandler.Create)
			agents.GET("", r.authMiddleware.RequirePermission(auth.PermAgentRead), r.agentHandler.List)
			agents.GET("/:id", r.authMiddleware.RequirePermission(auth.PermAgentRead), r.agentHandler.Get)
			agents.PUT("/:id", r.authMiddleware.RequirePermission(auth.PermAgentWrite), r.agentHandler.Update)
			agents.DELETE("/:id", r.authMiddleware.RequirePermission(auth.PermAgentWrite), r.agentHandler.Delete)
		}

		// Admin routes (platform admin only)
		admin := protected.Group("/admin")
		admin.Use(r.authMiddleware.RequirePlatformAdmin())
		{
			// Workspace management
			admin.GET("/workspaces", r.adminHandler.ListWorkspaces)
			admin.GET("/workspaces/:workspaceId", r.adminHandler.GetWorkspaceDetail)

			// User management
			admin.GET("/users", r.adminHandler.ListUsers)
			admin.GET("/users/:userId", r.adminHandler.GetUserDetail)
			admin.PUT("/users/:userId", r.adminHandler.UpdateUser)
			admin.POST("/users/:userId/promote", r.adminHandler.PromoteUser)
			admin.POST("/users/:userId/demote", r.adminHandler.DemoteUser)

			// Audit logs
			admin.POST("/audit-logs/query", r.adminHandler.QueryAuditLogs)
		}
	}
}
