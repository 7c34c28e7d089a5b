package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/segment"
)

type SegmentHandler struct {
	segmentService *segment.Service
}

func NewSegmentHandler(segmentService *segment.Service) *SegmentHandler {
	return &SegmentHandler{segmentService: segmentService}
}

func (h *SegmentHandler) Create(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req segment.CreateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seg, err := h.segmentService.Create(c.Request.Context(), workspaceID, &req)
	if err != nil {
		if errors.Is(err, segment.ErrInvalidKind) || errors.Is(err, segment.ErrBadCondition) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, seg)
}

func (h *SegmentHandler) List(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	resp, err := h.segmentService.List(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SegmentHandler) Get(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	seg, err := h.segmentService.Get(c.Request.Context(), workspaceID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, seg)
}

func (h *SegmentHandler) Update(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req segment.UpdateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seg, err := h.segmentService.Update(c.Request.Context(), workspaceID, id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, seg)
}

func (h *SegmentHandler) Delete(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.segmentService.Delete(c.Request.Context(), workspaceID, id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "segment deleted"})
}

type memberRequest struct {
	ContactID string `json:"contact_id" binding:"required"`
}

func (h *SegmentHandler) AddMember(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	if err := h.segmentService.AddMember(c.Request.Context(), workspaceID, id, contactID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "member added"})
}

func (h *SegmentHandler) RemoveMember(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	if err := h.segmentService.RemoveMember(c.Request.Context(), workspaceID, id, contactID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// Evaluate resolves the segment to its current contacts.
func (h *SegmentHandler) Evaluate(c *gin.Context) {
	workspaceID, id, ok := h.scope(c)
	if !ok {
		return
	}

	contacts, err := h.segmentService.Evaluate(c.Request.Context(), workspaceID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "total": len(contacts)})
}

// Preview evaluates an unsaved definition without persisting anything.
func (h *SegmentHandler) Preview(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req segment.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contacts, total, err := h.segmentService.Preview(c.Request.Context(), workspaceID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "total": total})
}

func (h *SegmentHandler) scope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid segment id"})
		return uuid.Nil, uuid.Nil, false
	}
	return workspaceID, id, true
}

func (h *SegmentHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, segment.ErrNotFound), errors.Is(err, segment.ErrWrongTenant):
		c.JSON(http.StatusNotFound, gin.H{"error": segment.ErrNotFound.Error()})
	case errors.Is(err, segment.ErrNotStatic), errors.Is(err, segment.ErrBadCondition), errors.Is(err, segment.ErrInvalidKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
