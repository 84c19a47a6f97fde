// Package progress builds cumulative per-period curves aligned on a shared
// virtual axis so that periods can be overlaid.
package progress

import (
	"sort"
	"time"

	"github.com/samber/lo"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/timebucket"
)

// DefaultPeriods is how many periods a progress chart shows by default
const DefaultPeriods = 5

// Config selects the period and metric of a progress chart
type Config struct {
	Period timebucket.Period
	// Value extracts the increment; a missing value adds 0
	Value func(a *models.Activity) (float64, bool)
	// Periods keeps only the most recent N periods; 0 keeps all
	Periods int
	// Now marks the period containing it as current; zero marks the latest period
	Now time.Time
}

// Cumulative groups activities by period, sorts each group chronologically
// (ties by id) and emits a running total. The first point of every period is
// a seed of value 0 at the period anchor. Periods are ascending.
func Cumulative(acts []models.Activity, cfg Config) ([]models.ProgressPoint, error) {
	if cfg.Value == nil {
		return nil, perr.Invariantf("progress: no value function configured")
	}
	if cfg.Periods < 0 {
		return nil, perr.WithField(perr.InvalidArgf("periods must not be negative, got %d", cfg.Periods), "periods")
	}

	valid := lo.Filter(acts, func(a models.Activity, _ int) bool { return a.Valid() })
	byPeriod := lo.GroupBy(valid, func(a models.Activity) time.Time {
		return timebucket.Truncate(a.StartDateLocal, cfg.Period)
	})
	anchors := lo.Keys(byPeriod)
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Before(anchors[j]) })
	if cfg.Periods > 0 && len(anchors) > cfg.Periods {
		anchors = anchors[len(anchors)-cfg.Periods:]
	}
	if len(anchors) == 0 {
		return []models.ProgressPoint{}, nil
	}

	current := anchors[len(anchors)-1]
	if !cfg.Now.IsZero() {
		current = timebucket.Truncate(cfg.Now, cfg.Period)
	}

	out := make([]models.ProgressPoint, 0, len(valid)+len(anchors))
	for _, anchor := range anchors {
		group := byPeriod[anchor]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].StartDateLocal.Equal(group[j].StartDateLocal) {
				return group[i].StartDateLocal.Before(group[j].StartDateLocal)
			}
			return group[i].ID < group[j].ID
		})

		isCurrent := anchor.Equal(current)
		out = append(out, models.ProgressPoint{
			Period:      anchor,
			Date:        anchor,
			VirtualDate: timebucket.Epoch,
			Current:     isCurrent,
		})

		var total float64
		for i := range group {
			a := &group[i]
			if v, ok := cfg.Value(a); ok {
				total += v
			}
			out = append(out, models.ProgressPoint{
				Period:      anchor,
				Date:        a.StartDateLocal,
				VirtualDate: timebucket.Virtualize(a.StartDateLocal, cfg.Period),
				Value:       total,
				ActivityID:  a.ID,
				Current:     isCurrent,
			})
		}
	}
	return out, nil
}

// Totals returns the final running total of each period, keyed by anchor
func Totals(points []models.ProgressPoint) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	for _, p := range points {
		out[p.Period] = p.Value
	}
	return out
}
