package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/feedback-backend/internal/http/response"
	"github.com/yungbote/feedback-backend/internal/platform/apierr"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/services"
)

type DashboardHandlerDeps struct {
	Log       *logger.Logger
	Dashboard services.DashboardService
}

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandlerWithDeps(deps DashboardHandlerDeps) *DashboardHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardHandler{
		log:       log.With("handler", "DashboardHandler"),
		dashboard: deps.Dashboard,
	}
}

// reportQuery reads min_rating and refresh leniently; junk input means the defaults.
func reportQuery(c *gin.Context) services.ReportQuery {
	q := services.ReportQuery{MinRating: 1}
	if n, err := strconv.Atoi(strings.TrimSpace(c.Query("min_rating"))); err == nil {
		q.MinRating = services.ClampMinRating(n)
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("refresh"))) {
	case "1", "true", "yes":
		q.Refresh = true
	}
	return q
}

type adminPage struct {
	services.Report
	Thresholds []int
}

// GET /admin
func (h *DashboardHandler) Page(c *gin.Context) {
	rep := h.dashboard.Report(c.Request.Context(), reportQuery(c))
	c.HTML(http.StatusOK, "admin.html", adminPage{Report: rep, Thresholds: []int{1, 2, 3, 4, 5}})
}

// GET /api/admin/report
func (h *DashboardHandler) Report(c *gin.Context) {
	response.RespondOK(c, h.dashboard.Report(c.Request.Context(), reportQuery(c)))
}

// POST /api/admin/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.dashboard.Refresh(c.Request.Context()); err != nil {
		h.log.Warn("Refresh failed", "error", err)
		response.RespondAPIError(c, apierr.New(http.StatusServiceUnavailable, "store_unavailable", err))
		return
	}
	q := reportQuery(c)
	q.Refresh = false
	response.RespondOK(c, h.dashboard.Report(c.Request.Context(), q))
}
