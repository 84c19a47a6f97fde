// Package series turns a filtered activity collection into gap-free,
// grouped time series for charts.
package series

import (
	"sort"
	"time"

	"github.com/samber/lo"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/stats"
	"github.com/jengzang/activity-dashboard-go/internal/timebucket"
)

// Total is the group label used when no group function is configured
const Total = "total"

// Config selects the bucketing, grouping and reduction of a series
type Config struct {
	Period timebucket.Period
	// Group assigns an activity to a series; nil puts everything in Total
	Group func(a *models.Activity) string
	// Value extracts the number to reduce; activities without a value are left out of their cell
	Value func(a *models.Activity) (float64, bool)
	// Reduce collapses a cell; nil means stats.Sum
	Reduce stats.Reducer
}

type cellKey struct {
	bucket time.Time
	group  string
}

// Build buckets activities by period and group and reduces each cell.
// Every (anchor, group) pair across the extent gets a point; empty cells are 0.
// Points are ordered by bucket, then group name.
func Build(acts []models.Activity, cfg Config) ([]models.SeriesPoint, error) {
	if cfg.Value == nil {
		return nil, perr.Invariantf("series: no value function configured")
	}
	group := cfg.Group
	if group == nil {
		group = func(*models.Activity) string { return Total }
	}
	reduce := cfg.Reduce
	if reduce == nil {
		reduce = stats.Sum
	}

	valid := lo.Filter(acts, func(a models.Activity, _ int) bool { return a.Valid() })
	if len(valid) == 0 {
		return []models.SeriesPoint{}, nil
	}

	cells := make(map[cellKey][]float64)
	groups := make([]string, 0)
	start, end := valid[0].StartDateLocal, valid[0].StartDateLocal
	for i := range valid {
		a := &valid[i]
		g := group(a)
		if g == "" {
			return nil, perr.Invariantf("series: group function returned no group for activity %d", a.ID)
		}
		groups = append(groups, g)

		if a.StartDateLocal.Before(start) {
			start = a.StartDateLocal
		}
		if a.StartDateLocal.After(end) {
			end = a.StartDateLocal
		}

		key := cellKey{bucket: timebucket.Truncate(a.StartDateLocal, cfg.Period), group: g}
		if v, ok := cfg.Value(a); ok {
			cells[key] = append(cells[key], v)
		}
	}
	groups = lo.Uniq(groups)
	sort.Strings(groups)

	anchors := timebucket.Range(start, end, cfg.Period)
	out := make([]models.SeriesPoint, 0, len(anchors)*len(groups))
	for _, anchor := range anchors {
		for _, g := range groups {
			out = append(out, models.SeriesPoint{
				Bucket: anchor,
				Group:  g,
				Value:  stats.Finite(reduce(cells[cellKey{bucket: anchor, group: g}])),
			})
		}
	}
	return out, nil
}

// Groups returns the distinct group labels of a series in first-seen order
func Groups(points []models.SeriesPoint) []string {
	return lo.Uniq(lo.Map(points, func(p models.SeriesPoint, _ int) string { return p.Group }))
}
