package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/campaign"
	"github.com/beaconcdp/beacon/internal/core/segment"
)

type CampaignHandler struct {
	campaignService *campaign.Service
}

func NewCampaignHandler(campaignService *campaign.Service) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

func (h *CampaignHandler) Create(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req campaign.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.campaignService.Create(c.Request.Context(), workspaceID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cp)
}

func (h *CampaignHandler) List(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	resp, err := h.campaignService.List(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CampaignHandler) Get(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	cp, err := h.campaignService.Get(c.Request.Context(), workspaceID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cp)
}

func (h *CampaignHandler) Update(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req campaign.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.campaignService.Update(c.Request.Context(), workspaceID, id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cp)
}

func (h *CampaignHandler) Delete(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.campaignService.Delete(c.Request.Context(), workspaceID, id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "campaign deleted"})
}

func (h *CampaignHandler) Send(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	result, err := h.campaignService.Send(c.Request.Context(), workspaceID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CampaignHandler) Messages(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req campaign.MessageLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.campaignService.Messages(c.Request.Context(), workspaceID, id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CampaignHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return uuid.Nil, uuid.Nil, false
	}
	return workspaceID, id, true
}

func (h *CampaignHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, campaign.ErrNotFound), errors.Is(err, campaign.ErrWrongTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": campaign.ErrNotFound.Error()})
	case errors.Is(err, campaign.ErrNotDraft), errors.Is(err, campaign.ErrAlreadySent),
		errors.Is(err, campaign.ErrNoFromNumber), errors.Is(err, campaign.ErrEmptyAudience):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, segment.ErrNotFound), errors.Is(err, segment.ErrWrongTenant):
		c.JSON(http.StatusBadRequest, gin.H{"error": "segment not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
