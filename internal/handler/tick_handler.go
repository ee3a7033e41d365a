package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/pkg/response"
)

type tickService interface {
	Run(ctx context.Context) (*models.TickSummary, error)
}

// TickHandler exposes the scheduler tick trigger for Cloud Scheduler or a
// local loop.
type TickHandler struct {
	service tickService
}

// NewTickHandler constructs a tick handler.
func NewTickHandler(svc tickService) *TickHandler {
	return &TickHandler{service: svc}
}

// Tick runs one scheduler pass and returns its summary.
func (h *TickHandler) Tick(c *gin.Context) {
	summary, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
