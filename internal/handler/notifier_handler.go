// Package handler exposes the HTTP surface over gin.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/internal/service"
	appErrors "github.com/bruinwatch/bruinwatch-api/pkg/errors"
	"github.com/bruinwatch/bruinwatch-api/pkg/response"
)

type notifierService interface {
	List(ctx context.Context) ([]models.NotifierWithRun, error)
	Create(ctx context.Context, req service.CreateNotifierRequest) (*models.Notifier, error)
	Get(ctx context.Context, id string) (*models.NotifierWithRun, error)
	Update(ctx context.Context, id string, req service.UpdateNotifierRequest) (*models.NotifierWithRun, error)
	Runs(ctx context.Context, id string, limit int) ([]models.NotifierRun, error)
	Delete(ctx context.Context, id string) error
}

// NotifierHandler exposes notifier CRUD endpoints.
type NotifierHandler struct {
	service notifierService
}

// NewNotifierHandler constructs a notifier handler.
func NewNotifierHandler(svc notifierService) *NotifierHandler {
	return &NotifierHandler{service: svc}
}

// List returns every notifier with its most recent run.
func (h *NotifierHandler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notifiers": rows})
}

// Create registers a new notifier.
func (h *NotifierHandler) Create(c *gin.Context) {
	var req service.CreateNotifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Get returns one notifier with its latest run.
func (h *NotifierHandler) Get(c *gin.Context) {
	row, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row)
}

// Update toggles a notifier's active flag.
func (h *NotifierHandler) Update(c *gin.Context) {
	var req service.UpdateNotifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Runs returns a notifier's check history.
func (h *NotifierHandler) Runs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	runs, err := h.service.Runs(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"runs": runs})
}

// Delete removes a notifier.
func (h *NotifierHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true})
}
