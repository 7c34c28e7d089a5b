package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/campaign"
	"github.com/beaconcdp/beacon/internal/core/webhook"
)

type WebhookHandler struct {
	webhookService  *webhook.Service
	campaignService *campaign.Service
	callbackToken   string
}

func NewWebhookHandler(webhookService *webhook.Service, campaignService *campaign.Service, callbackToken string) *WebhookHandler {
	return &WebhookHandler{
		webhookService:  webhookService,
		campaignService: campaignService,
		callbackToken:   callbackToken,
	}
}

func (h *WebhookHandler) Create(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req webhook.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.webhookService.Create(c.Request.Context(), workspaceID, &req)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidURL) || errors.Is(err, webhook.ErrUnknownEvent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *WebhookHandler) List(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	resp, err := h.webhookService.List(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *WebhookHandler) Get(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	sub, err := h.webhookService.Get(c.Request.Context(), workspaceID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *WebhookHandler) Update(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req webhook.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.webhookService.Update(c.Request.Context(), workspaceID, id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.webhookService.Delete(c.Request.Context(), workspaceID, id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "webhook deleted"})
}

type statusCallbackRequest struct {
	MessageSID   string `json:"MessageSid" binding:"required"`
	Status       string `json:"MessageStatus" binding:"required"`
	ErrorMessage string `json:"ErrorMessage"`
}

// StatusCallback receives delivery receipts from the SMS vendor. It is
// unauthenticated but guarded by a shared token in the callback URL.
func (h *WebhookHandler) StatusCallback(c *gin.Context) {
	if h.callbackToken == "" || c.Query("token") != h.callbackToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid callback token"})
		return
	}

	var req statusCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.campaignService.ApplyStatusCallback(c.Request.Context(), req.MessageSID, req.Status, req.ErrorMessage)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			// Unknown SID: acknowledge so the vendor stops retrying.
			c.JSON(http.StatusOK, gin.H{"message": "ignored"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (h *WebhookHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook id"})
		return uuid.Nil, uuid.Nil, false
	}
	return workspaceID, id, true
}

func (h *WebhookHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, webhook.ErrNotFound), errors.Is(err, webhook.ErrWrongTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": webhook.ErrNotFound.Error()})
	case errors.Is(err, webhook.ErrInvalidURL), errors.Is(err, webhook.ErrUnknownEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
