package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/internal/service"
	appErrors "github.com/bruinwatch/bruinwatch-api/pkg/errors"
	"github.com/bruinwatch/bruinwatch-api/pkg/response"
)

type checkService interface {
	Check(ctx context.Context, req service.CheckRequest) (*models.CheckResult, error)
}

// CheckHandler exposes the one-off availability check.
type CheckHandler struct {
	service checkService
}

// NewCheckHandler constructs a check handler.
func NewCheckHandler(svc checkService) *CheckHandler {
	return &CheckHandler{service: svc}
}

// Check resolves live availability for one course.
func (h *CheckHandler) Check(c *gin.Context) {
	var req service.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
