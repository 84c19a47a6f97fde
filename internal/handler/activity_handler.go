package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/service"
	"github.com/jengzang/activity-dashboard-go/pkg/response"
)

// ActivityHandler handles HTTP requests for the activity list and imports
type ActivityHandler struct {
	dashboard *service.DashboardService
	maxImport int64
}

// NewActivityHandler creates a new activity handler; import bodies larger
// than maxImport bytes are refused
func NewActivityHandler(dashboard *service.DashboardService, maxImport int64) *ActivityHandler {
	return &ActivityHandler{
		dashboard: dashboard,
		maxImport: maxImport,
	}
}

// ListActivities handles GET /api/v1/activities
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	var page models.ActivityListFilter
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	state, err := filter.DecodeQuery(c.Request.URL.Query())
	if err != nil {
		response.FromError(c, err)
		return
	}

	result, err := h.dashboard.ListActivities(c.Request.Context(), state, page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}

// GetActivity handles GET /api/v1/activities/:id
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid activity ID")
		return
	}

	activity, err := h.dashboard.Activity(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, activity)
}

// ImportActivities handles POST /api/v1/activities/import
func (h *ActivityHandler) ImportActivities(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImport)
	acts, err := service.DecodeActivities(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "import body too large")
			return
		}
		response.FromError(c, err)
		return
	}

	result, err := h.dashboard.Import(c.Request.Context(), acts)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}
