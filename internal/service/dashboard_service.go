package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jengzang/activity-dashboard-go/internal/calendar"
	"github.com/jengzang/activity-dashboard-go/internal/category"
	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/expr"
	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/logger"
	"github.com/jengzang/activity-dashboard-go/internal/metric"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/progress"
	"github.com/jengzang/activity-dashboard-go/internal/repository"
	"github.com/jengzang/activity-dashboard-go/internal/series"
	"github.com/jengzang/activity-dashboard-go/internal/spatial"
	"github.com/jengzang/activity-dashboard-go/internal/stats"
	"github.com/jengzang/activity-dashboard-go/internal/timebucket"
)

// ActivityStore is the persistence the dashboard reads from and imports into
type ActivityStore interface {
	List(ctx context.Context) ([]models.Activity, []repository.Skipped, error)
	Get(ctx context.Context, id int64) (*models.Activity, error)
	Count(ctx context.Context) (int64, error)
	SportTypes(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, activities []models.Activity) (int, error)
}

// DashboardService loads activities, filters them and builds the chart data
type DashboardService struct {
	store   ActivityStore
	catalog *category.Catalog
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store ActivityStore, catalog *category.Catalog) *DashboardService {
	return &DashboardService{
		store:   store,
		catalog: catalog,
	}
}

// Catalog returns the category configuration the service filters with
func (s *DashboardService) Catalog() *category.Catalog { return s.catalog }

// Activity retrieves a single stored activity by ID
func (s *DashboardService) Activity(ctx context.Context, id int64) (*models.Activity, error) {
	return s.store.Get(ctx, id)
}

// Count returns the number of stored activities
func (s *DashboardService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// SportTypes maps every stored sport type to the group it falls into
func (s *DashboardService) SportTypes(ctx context.Context) (map[string]string, error) {
	types, err := s.store.SportTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(types))
	for _, t := range types {
		out[t] = s.catalog.GroupOf(t)
	}
	return out, nil
}

func (s *DashboardService) load(ctx context.Context) ([]models.Activity, error) {
	acts, skipped, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		log := logger.Named("dashboard")
		for _, sk := range skipped {
			log.Warn().Int64("activity_id", sk.ID).Str("reason", sk.Reason).Msg("skipping malformed activity")
		}
	}
	return acts, nil
}

// DefaultRequest applies every dimension of reg except the selection and
// hover, which only highlight
func DefaultRequest(reg *filter.Registry) filter.Request {
	req := filter.AllActive(reg)
	delete(req, filter.DimSelected)
	delete(req, filter.DimHovered)
	return req
}

// prepare builds the registry for state, defaults req and loads the activities
func (s *DashboardService) prepare(ctx context.Context, state models.FilterState, req filter.Request) (*filter.Registry, filter.Request, []models.Activity, error) {
	reg, err := filter.FromState(state, s.catalog)
	if err != nil {
		return nil, nil, nil, err
	}
	if req == nil {
		req = DefaultRequest(reg)
	}
	acts, err := s.load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return reg, req, acts, nil
}

// filtered returns every loaded activity and those passing the default request
func (s *DashboardService) filtered(ctx context.Context, state models.FilterState) ([]models.Activity, []models.Activity, error) {
	reg, req, acts, err := s.prepare(ctx, state, nil)
	if err != nil {
		return nil, nil, err
	}
	ids, err := filter.Evaluate(reg, acts, req)
	if err != nil {
		return nil, nil, err
	}
	return acts, filter.Select(acts, ids), nil
}

// Evaluate returns the sorted ids of the activities matching state under req.
// A nil req applies DefaultRequest.
func (s *DashboardService) Evaluate(ctx context.Context, state models.FilterState, req filter.Request) ([]int64, error) {
	reg, req, acts, err := s.prepare(ctx, state, req)
	if err != nil {
		return nil, err
	}
	return filter.Evaluate(reg, acts, req)
}

// Expression compiles state under req into a declarative expression tree
func (s *DashboardService) Expression(ctx context.Context, state models.FilterState, req filter.Request) (expr.Node, error) {
	reg, req, acts, err := s.prepare(ctx, state, req)
	if err != nil {
		return expr.Node{}, err
	}
	return filter.Compile(reg, acts, req)
}

// ListActivities returns one sorted page of the filtered activities
func (s *DashboardService) ListActivities(ctx context.Context, state models.FilterState, page models.ActivityListFilter) (*models.ActivityListResponse, error) {
	// Validate filter
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 50
	}
	if page.PageSize > 1000 {
		page.PageSize = 1000
	}
	if page.SortBy == "" {
		page.SortBy = models.FieldStartTimestamp
	}
	key, err := s.sortKey(state, page.SortBy)
	if err != nil {
		return nil, err
	}
	if page.Order == "" {
		page.Order = "desc"
		if page.SortBy == SortProximity {
			page.Order = "asc"
		}
	}

	_, rows, err := s.filtered(ctx, state)
	if err != nil {
		return nil, err
	}
	sortActivities(rows, key, page.Order == "desc")

	total := len(rows)
	from := min((page.Page-1)*page.PageSize, total)
	to := min(from+page.PageSize, total)

	// Calculate total pages
	totalPages := int(math.Ceil(float64(total) / float64(page.PageSize)))

	return &models.ActivityListResponse{
		Data:       rows[from:to],
		Total:      int64(total),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
	}, nil
}

// SortProximity orders the list by distance of the start point from the
// centre of the state's region
const SortProximity = "proximity"

func (s *DashboardService) sortKey(state models.FilterState, sortBy string) (func(a *models.Activity) (float64, bool), error) {
	if sortBy == SortProximity {
		if state.Region == nil {
			return nil, perr.WithField(perr.InvalidArgf("sorting by proximity needs a region"), "sortBy")
		}
		rect, err := spatial.Viewport(*state.Region)
		if err != nil {
			return nil, err
		}
		center := spatial.CenterOf(rect)
		return func(a *models.Activity) (float64, bool) { return spatial.DistanceFrom(center, a.StartLatLng) }, nil
	}
	if !models.IsNumericField(sortBy) && sortBy != models.FieldID {
		return nil, perr.WithField(perr.InvalidArgf("cannot sort by %q", sortBy), "sortBy")
	}
	return func(a *models.Activity) (float64, bool) { return a.Value(sortBy) }, nil
}

// sortActivities orders by key with ties broken by id; activities without a
// key always sort last
func sortActivities(acts []models.Activity, key func(a *models.Activity) (float64, bool), desc bool) {
	sort.SliceStable(acts, func(i, j int) bool {
		vi, oki := key(&acts[i])
		vj, okj := key(&acts[j])
		if oki != okj {
			return oki
		}
		if vi != vj {
			if desc {
				return vi > vj
			}
			return vi < vj
		}
		if desc {
			return acts[i].ID > acts[j].ID
		}
		return acts[i].ID < acts[j].ID
	})
}

// TimelineQuery selects a timeline chart
type TimelineQuery struct {
	Period string `form:"period"`
	Value  string `form:"value"`
	Group  string `form:"group" binding:"omitempty,oneof=type none"`
	Reduce string `form:"reduce"`
	Window int    `form:"window" binding:"min=0"`
	Kernel string `form:"kernel"`
	// From is the period Window was chosen for; when set the window is rescaled to Period
	From string `form:"from"`
}

// Timeline is a built series with the smoothing actually applied
type Timeline struct {
	Period string               `json:"period"`
	Window int                  `json:"window"`
	Groups []string             `json:"groups"`
	Points []models.SeriesPoint `json:"points"`
}

// Timeline buckets the filtered activities, reduces each cell and smooths the result
func (s *DashboardService) Timeline(ctx context.Context, state models.FilterState, q TimelineQuery) (*Timeline, error) {
	period, err := timebucket.ParsePeriod(withDefault(q.Period, "week"))
	if err != nil {
		return nil, err
	}
	m, err := metric.Lookup(withDefault(q.Value, "distance"))
	if err != nil {
		return nil, err
	}
	reduce, err := stats.ReducerByName(withDefault(q.Reduce, "sum"))
	if err != nil {
		return nil, err
	}
	kernel, err := series.ParseKernel(q.Kernel)
	if err != nil {
		return nil, err
	}
	if q.Window < 0 {
		return nil, perr.WithField(perr.InvalidArgf("window must not be negative, got %d", q.Window), "window")
	}
	from := period
	if q.From != "" {
		if from, err = timebucket.ParsePeriod(q.From); err != nil {
			return nil, perr.WithField(err, "from")
		}
	}
	window := timebucket.RescaleWindow(q.Window, from, period)

	cfg := series.Config{Period: period, Value: m.Value, Reduce: reduce}
	if q.Group == "type" {
		cfg.Group = s.groupOf
	}

	_, rows, err := s.filtered(ctx, state)
	if err != nil {
		return nil, err
	}
	points, err := series.Build(rows, cfg)
	if err != nil {
		return nil, err
	}
	points = series.Smooth(points, window, kernel)

	return &Timeline{
		Period: period.String(),
		Window: window,
		Groups: series.Groups(points),
		Points: points,
	}, nil
}

// ProgressQuery selects a cumulative progress chart
type ProgressQuery struct {
	Period  string `form:"period"`
	Value   string `form:"value"`
	Periods int    `form:"periods" binding:"min=0"`
}

// ProgressChart holds the cumulative curves and the final total of each period
type ProgressChart struct {
	Period string                 `json:"period"`
	Points []models.ProgressPoint `json:"points"`
	Totals map[time.Time]float64  `json:"totals"`
}

// Progress returns running totals of the filtered activities per period
func (s *DashboardService) Progress(ctx context.Context, state models.FilterState, q ProgressQuery) (*ProgressChart, error) {
	period, err := timebucket.ParsePeriod(withDefault(q.Period, "year"))
	if err != nil {
		return nil, err
	}
	m, err := metric.Lookup(withDefault(q.Value, "distance"))
	if err != nil {
		return nil, err
	}
	periods := q.Periods
	if periods == 0 {
		periods = progress.DefaultPeriods
	}

	_, rows, err := s.filtered(ctx, state)
	if err != nil {
		return nil, err
	}
	points, err := progress.Cumulative(rows, progress.Config{Period: period, Value: m.Value, Periods: periods})
	if err != nil {
		return nil, err
	}
	return &ProgressChart{
		Period: period.String(),
		Points: points,
		Totals: progress.Totals(points),
	}, nil
}

// CalendarValueType colors days by their dominant group instead of a metric
const CalendarValueType = "type"

// CalendarQuery selects a calendar heatmap
type CalendarQuery struct {
	Value  string
	Reduce string
	// Clip caps the color domain at this percentile of day values; 0 uses the maximum
	Clip float64
	// Days are highlighted in addition to the days of the selected activities
	Days []time.Time
}

// Calendar is a painted heatmap
type Calendar struct {
	DomainMax float64              `json:"domain_max"`
	Days      []models.CalendarDay `json:"days"`
}

// Calendar reduces the filtered activities per day and colors each day
func (s *DashboardService) Calendar(ctx context.Context, state models.FilterState, q CalendarQuery) (*Calendar, error) {
	value := withDefault(q.Value, "count")
	cfg := calendar.Config{Group: s.groupOf}
	if value == CalendarValueType {
		cfg.Value = metric.MustLookup("count").Value
	} else {
		m, err := metric.Lookup(value)
		if err != nil {
			return nil, err
		}
		cfg.Value = m.Value
	}
	reduce, err := stats.ReducerByName(withDefault(q.Reduce, "sum"))
	if err != nil {
		return nil, err
	}
	cfg.Reduce = reduce
	if q.Clip < 0 || q.Clip > 100 {
		return nil, perr.WithField(perr.InvalidArgf("clip must be a percentile, got %v", q.Clip), "clip")
	}

	all, rows, err := s.filtered(ctx, state)
	if err != nil {
		return nil, err
	}
	days, err := calendar.Aggregate(rows, cfg)
	if err != nil {
		return nil, err
	}

	if value == CalendarValueType {
		return &Calendar{Days: calendar.GroupColors(days, s.groupColor)}, nil
	}

	domainMax := calendar.DomainMax(days)
	if q.Clip > 0 {
		domainMax = calendar.ClippedDomainMax(days, q.Clip)
	}
	selected := append([]time.Time(nil), q.Days...)
	for _, a := range filter.Select(all, state.Selected) {
		selected = append(selected, a.StartDateLocal)
	}
	return &Calendar{
		DomainMax: domainMax,
		Days:      calendar.Paint(days, selected, calendar.DefaultScale(), domainMax),
	}, nil
}

// ImportResult summarizes an import
type ImportResult struct {
	Received int `json:"received"`
	Written  int `json:"written"`
	Skipped  int `json:"skipped"`
}

// Import stores activities; records without an id or start date are skipped
func (s *DashboardService) Import(ctx context.Context, acts []models.Activity) (*ImportResult, error) {
	written, err := s.store.Upsert(ctx, acts)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Received: len(acts), Written: written, Skipped: len(acts) - written}
	logger.Named("dashboard").Info().
		Int("received", res.Received).
		Int("written", res.Written).
		Int("skipped", res.Skipped).
		Msg("imported activities")
	return res, nil
}

func (s *DashboardService) groupOf(a *models.Activity) string { return s.catalog.GroupOf(a.SportType) }

func (s *DashboardService) groupColor(id string) string {
	if id == calendar.Multiple {
		return "#555555"
	}
	return s.catalog.Color(id)
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
