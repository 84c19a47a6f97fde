package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/service"
	"github.com/jengzang/activity-dashboard-go/pkg/response"
)

// StatsHandler handles HTTP requests for the dashboard charts
type StatsHandler struct {
	dashboard *service.DashboardService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(dashboard *service.DashboardService) *StatsHandler {
	return &StatsHandler{
		dashboard: dashboard,
	}
}

// GetTimeline handles GET /api/v1/stats/timeline
func (h *StatsHandler) GetTimeline(c *gin.Context) {
	var q service.TimelineQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	state, err := filter.DecodeQuery(c.Request.URL.Query())
	if err != nil {
		response.FromError(c, err)
		return
	}

	timeline, err := h.dashboard.Timeline(c.Request.Context(), state, q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, timeline)
}

// GetProgress handles GET /api/v1/stats/progress
func (h *StatsHandler) GetProgress(c *gin.Context) {
	var q service.ProgressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	state, err := filter.DecodeQuery(c.Request.URL.Query())
	if err != nil {
		response.FromError(c, err)
		return
	}

	points, err := h.dashboard.Progress(c.Request.Context(), state, q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, points)
}

// GetCalendar handles GET /api/v1/stats/calendar
func (h *StatsHandler) GetCalendar(c *gin.Context) {
	state, err := filter.DecodeQuery(c.Request.URL.Query())
	if err != nil {
		response.FromError(c, err)
		return
	}
	q := service.CalendarQuery{
		Value:  c.Query("value"),
		Reduce: c.Query("reduce"),
	}
	if raw := c.Query("clip"); raw != "" {
		if q.Clip, err = strconv.ParseFloat(raw, 64); err != nil {
			response.FromError(c, perr.WithField(perr.InvalidArgf("malformed clip %q", raw), "clip"))
			return
		}
	}
	if q.Days, err = parseDays(c.Query("days")); err != nil {
		response.FromError(c, err)
		return
	}

	cal, err := h.dashboard.Calendar(c.Request.Context(), state, q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, cal)
}

// parseDays reads a comma separated list of 2006-01-02 dates
func parseDays(raw string) ([]time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	var out []time.Time
	for _, s := range strings.Split(raw, ",") {
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
		if err != nil {
			return nil, perr.WithField(perr.InvalidArgf("malformed day %q", s), "days")
		}
		out = append(out, d)
	}
	return out, nil
}
