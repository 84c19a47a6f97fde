package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/metric"
	"github.com/jengzang/activity-dashboard-go/internal/service"
	"github.com/jengzang/activity-dashboard-go/internal/stats"
	"github.com/jengzang/activity-dashboard-go/pkg/response"
)

// CategoryHandler serves the dashboard configuration
type CategoryHandler struct {
	dashboard *service.DashboardService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(dashboard *service.DashboardService) *CategoryHandler {
	return &CategoryHandler{
		dashboard: dashboard,
	}
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	stored, err := h.dashboard.SportTypes(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	catalog := h.dashboard.Catalog()
	response.Success(c, gin.H{
		"groups":        catalog.Groups(),
		"fallback":      catalog.Fallback(),
		"sport_types":   stored,
		"metrics":       metric.IDs(),
		"reducers":      stats.ReducerNames(),
		"range_fields":  filter.RangeFields,
		"binary_fields": filter.BinaryFields,
	})
}
