package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/api/middleware"
	"github.com/beaconcdp/beacon/internal/core/contact"
	"github.com/beaconcdp/beacon/internal/core/filter"
	"github.com/beaconcdp/beacon/internal/core/validation"
)

type ContactHandler struct {
	contactService *contact.Service
}

func NewContactHandler(contactService *contact.Service) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Create(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req contact.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct, err := h.contactService.Create(c.Request.Context(), workspaceID, &req)
	if err != nil {
		if errors.Is(err, contact.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, contact.ErrNoIdentifier) {
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

	c.JSON(http.StatusCreated, ct)
}

func (h *ContactHandler) List(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.contactService.List(c.Request.Context(), workspaceID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ContactHandler) Search(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req contact.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.contactService.Search(c.Request.Context(), workspaceID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

type filterContactsRequest struct {
	Filters []filter.Group `json:"filters" binding:"required"`
}

// Filter runs a saved-segment style expression directly against the
// workspace's contacts.
func (h *ContactHandler) Filter(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req filterContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matched, err := h.contactService.Filter(c.Request.Context(), workspaceID, req.Filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": matched, "total": len(matched)})
}

// Fields returns the filterable field registry with the operators legal
// for each field, for building filter UIs.
func (h *ContactHandler) Fields(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	registry, err := h.contactService.Registry(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fields := make([]gin.H, 0, len(registry))
	for _, def := range registry {
		fields = append(fields, gin.H{
			"key":       def.Key,
			"label":     def.Label,
			"type":      def.Type,
			"options":   def.Options,
			"operators": filter.OperatorsForType(def.Type),
		})
	}

	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (h *ContactHandler) Get(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	ct, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ct.WorkspaceID != workspaceID {
		c.JSON(http.StatusNotFound, gin.H{"error": contact.ErrNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, ct)
}

func (h *ContactHandler) Update(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	existing, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing.WorkspaceID != workspaceID {
		c.JSON(http.StatusNotFound, gin.H{"error": contact.ErrNotFound.Error()})
		return
	}

	var req contact.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct, err := h.contactService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if validation.IsSchemaError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validation.GetSchemaErrors(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ct)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	existing, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing.WorkspaceID != workspaceID {
		c.JSON(http.StatusNotFound, gin.H{"error": contact.ErrNotFound.Error()})
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// Attribute definitions
func (h *ContactHandler) CreateAttribute(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	var req contact.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, err := h.contactService.CreateAttribute(c.Request.Context(), workspaceID, &req)
	if err != nil {
		if errors.Is(err, contact.ErrAttributeExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, def)
}

func (h *ContactHandler) ListAttributes(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	defs, err := h.contactService.ListAttributes(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if defs == nil {
		defs = []*contact.AttributeDefinition{}
	}

	c.JSON(http.StatusOK, gin.H{"attributes": defs, "total": len(defs)})
}

func (h *ContactHandler) DeleteAttribute(c *gin.Context) {
	workspaceID, ok := middleware.GetWorkspaceID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace id required"})
		return
	}

	key := c.Param("key")
	if err := h.contactService.DeleteAttribute(c.Request.Context(), workspaceID, key); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "attribute deleted"})
}
