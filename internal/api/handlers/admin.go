package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/auth"
	"github.com/beaconcdp/beacon/internal/core/filter"
)

type AdminHandler struct {
	authService *auth.Service
}

func NewAdminHandler(authService *auth.Service) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// ListWorkspaces returns all workspaces in the system (platform admin only)
func (h *AdminHandler) ListWorkspaces(c *gin.Context) {
	limit, offset := paging(c, 1000)

	workspaces, total, err := h.authService.ListWorkspaces(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if workspaces == nil {
		workspaces = []*auth.Workspace{}
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": workspaces,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetWorkspaceDetail returns one workspace with its members (platform admin only)
func (h *AdminHandler) GetWorkspaceDetail(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
		return
	}

	ws, err := h.authService.GetWorkspace(c.Request.Context(), workspaceID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	members, err := h.authService.GetMemberships(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": ws, "members": members})
}

// ListUsers returns all users in the system with pagination (platform admin only)
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := paging(c, 500)

	users, total, err := h.authService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if users == nil {
		users = []*auth.User{}
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetUserDetail returns one user with their workspaces (platform admin only)
func (h *AdminHandler) GetUserDetail(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	workspaces, err := h.authService.GetWorkspacesByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "workspaces": workspaces})
}

type adminUpdateUserRequest struct {
	Name *string `json:"name"`
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := h.authService.UpdateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// PromoteUser grants platform admin to a user (platform admin only)
func (h *AdminHandler) PromoteUser(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.authService.PromoteToPlatformAdmin(c.Request.Context(), actorID, targetID); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, auth.ErrAlreadyAdmin):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.recordAdminAction(c, actorID, targetID, "user.promote")
	c.JSON(http.StatusOK, gin.H{"message": "user promoted to platform admin"})
}

// DemoteUser revokes platform admin from a user (platform admin only)
func (h *AdminHandler) DemoteUser(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.authService.DemoteFromPlatformAdmin(c.Request.Context(), actorID, targetID); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, auth.ErrNotAdmin):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrLastPlatformAdmin):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.recordAdminAction(c, actorID, targetID, "user.demote")
	c.JSON(http.StatusOK, gin.H{"message": "user demoted from platform admin"})
}

type auditQueryRequest struct {
	Filters []filter.Group `json:"filters"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// QueryAuditLogs returns audit log entries, optionally narrowed by a
// filter expression (platform admin only)
func (h *AdminHandler) QueryAuditLogs(c *gin.Context) {
	var req auditQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	logs, err := h.authService.QueryAuditLogs(c.Request.Context(), limit, req.Offset, req.Filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []*auth.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"audit_logs": logs,
		"total":      len(logs),
		"limit":      limit,
		"offset":     req.Offset,
	})
}

func (h *AdminHandler) recordAdminAction(c *gin.Context, actorID, targetID uuid.UUID, action string) {
	ip := middleware.GetIPAddress(c)
	ua := middleware.GetUserAgent(c)
	status := "success"

	entry := &auth.AuditLog{
		UserID:       &actorID,
		ActorType:    "user",
		EntityType:   "user",
		EntityID:     targetID.String(),
		Action:       action,
		ResultStatus: &status,
	}
	if ip != "" {
		entry.IPAddress = &ip
	}
	if ua != "" {
		entry.UserAgent = &ua
	}

	// Audit failures must not fail the admin action.
	if err := h.authService.RecordAudit(c.Request.Context(), entry); err != nil {
		log.Printf("recording audit entry: %v", err)
	}
}

func paging(c *gin.Context, max int) (int, int) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= max {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
