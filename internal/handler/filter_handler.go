package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/service"
	"github.com/jengzang/activity-dashboard-go/pkg/response"
)

// FilterRequest is the body of the filter endpoints. Dimensions maps a
// dimension name to whether it must hold (true) or must not (false);
// omitted means every dimension except the selection and hover.
type FilterRequest struct {
	State      models.FilterState `json:"state"`
	Dimensions filter.Request     `json:"dimensions"`
}

// FilterHandler handles HTTP requests evaluating and compiling filter states
type FilterHandler struct {
	dashboard *service.DashboardService
}

// NewFilterHandler creates a new filter handler
func NewFilterHandler(dashboard *service.DashboardService) *FilterHandler {
	return &FilterHandler{
		dashboard: dashboard,
	}
}

// Evaluate handles POST /api/v1/filter/evaluate
func (h *FilterHandler) Evaluate(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ids, err := h.dashboard.Evaluate(c.Request.Context(), req.State, req.Dimensions)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"ids":   ids,
		"count": len(ids),
	})
}

// Expression handles POST /api/v1/filter/expression
func (h *FilterHandler) Expression(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tree, err := h.dashboard.Expression(c.Request.Context(), req.State, req.Dimensions)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, tree)
}
