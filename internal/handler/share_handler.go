package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/service"
	"github.com/jengzang/activity-dashboard-go/pkg/response"
)

// ShareHandler handles HTTP requests for share links
type ShareHandler struct {
	share *service.ShareService
}

// NewShareHandler creates a new share handler
func NewShareHandler(share *service.ShareService) *ShareHandler {
	return &ShareHandler{
		share: share,
	}
}

// CreateShare handles POST /api/v1/share
func (h *ShareHandler) CreateShare(c *gin.Context) {
	var state models.FilterState
	if err := c.ShouldBindJSON(&state); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	link, err := h.share.Create(state)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, link)
}

// ResolveShare handles GET /api/v1/share/:token
func (h *ShareHandler) ResolveShare(c *gin.Context) {
	state, err := h.share.Resolve(c.Param("token"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"state": state,
		"query": filter.EncodeQuery(state).Encode(),
	})
}
