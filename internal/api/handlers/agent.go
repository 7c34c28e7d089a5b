package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/agent"
	"github.com/beaconcdp/beacon/internal/core/validation"
)

type AgentHandler struct {
	agentService *agent.Service
}

func NewAgentHandler(agentService *agent.Service) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

func (h *AgentHandler) Create(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req agent.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.agentService.Create(c.Request.Context(), workspaceID, &req)
	if err != nil {
		if errors.Is(err, agent.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, agent.ErrInvalidSlug) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validation.IsSchemaError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validation.GetSchemaErrors(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, a)
}

func (h *AgentHandler) List(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	resp, err := h.agentService.List(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AgentHandler) Get(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	a, err := h.agentService.Get(c.Request.Context(), workspaceID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

func (h *AgentHandler) Update(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req agent.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.agentService.Update(c.Request.Context(), workspaceID, id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

func (h *AgentHandler) Delete(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.agentService.Delete(c.Request.Context(), workspaceID, id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "agent deleted"})
}

func (h *AgentHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent id"})
		return uuid.Nil, uuid.Nil, false
	}
	return workspaceID, id, true
}

func (h *AgentHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, agent.ErrNotFound), errors.Is(err, agent.ErrWrongTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": agent.ErrNotFound.Error()})
	case errors.Is(err, agent.ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case validation.IsSchemaError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validation.GetSchemaErrors(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
