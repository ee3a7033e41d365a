package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/bruinwatch/bruinwatch-api/pkg/config"
)

// HealthHandler reports process, scheduler and database liveness.
type HealthHandler struct {
	cfg *config.Config
	db  *sqlx.DB
}

// NewHealthHandler constructs a health handler. db may be nil in tests.
func NewHealthHandler(cfg *config.Config, db *sqlx.DB) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db}
}

// Health answers liveness probes with the environment and effective
// scheduler settings. A failing database ping degrades the report but keeps
// the endpoint at 200 so probes do not restart the process over a transient
// database outage.
func (h *HealthHandler) Health(c *gin.Context) {
	interval := int(h.cfg.SchedulerInterval() / time.Second)
	status := gin.H{
		"status":                           "ok",
		"environment":                      h.cfg.Env,
		"local_scheduler_enabled":          strconv.FormatBool(h.cfg.UseLocalScheduler()),
		"local_scheduler_interval_seconds": strconv.Itoa(interval),
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	c.JSON(http.StatusOK, status)
}
