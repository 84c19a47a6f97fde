// Package calendar reduces activities per UTC day and colors the days of a
// heatmap.
package calendar

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/stats"
	"github.com/jengzang/activity-dashboard-go/internal/timebucket"
)

// Multiple labels a day holding activities of more than one group
const Multiple = "Multiple"

// Config selects what a day reduces to
type Config struct {
	// Value extracts the number to reduce; activities without a value are left out
	Value func(a *models.Activity) (float64, bool)
	// Reduce collapses a day; nil means stats.Sum
	Reduce stats.Reducer
	// Group labels the day's dominant group; nil leaves Group empty
	Group func(a *models.Activity) string
}

// Aggregate groups valid activities by UTC day and reduces each day.
// Only days with activities are returned, ascending.
func Aggregate(acts []models.Activity, cfg Config) ([]models.CalendarDay, error) {
	if cfg.Value == nil {
		return nil, perr.Invariantf("calendar: no value function configured")
	}
	reduce := cfg.Reduce
	if reduce == nil {
		reduce = stats.Sum
	}

	valid := lo.Filter(acts, func(a models.Activity, _ int) bool { return a.Valid() })
	byDay := lo.GroupBy(valid, func(a models.Activity) time.Time {
		return timebucket.Truncate(a.StartDateLocal, timebucket.Day)
	})

	out := make([]models.CalendarDay, 0, len(byDay))
	for d, group := range byDay {
		values := make([]float64, 0, len(group))
		groups := make([]string, 0, len(group))
		for i := range group {
			a := &group[i]
			if v, ok := cfg.Value(a); ok {
				values = append(values, v)
			}
			if cfg.Group != nil {
				g := cfg.Group(a)
				if g == "" {
					return nil, perr.Invariantf("calendar: group function returned no group for activity %d", a.ID)
				}
				groups = append(groups, g)
			}
		}

		day := models.CalendarDay{
			Day:   d,
			Value: stats.Finite(reduce(values)),
			Count: len(group),
		}
		if cfg.Group != nil {
			day.Group = dominant(groups)
		}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func dominant(groups []string) string {
	uniq := lo.Uniq(groups)
	if len(uniq) > 1 {
		return Multiple
	}
	return uniq[0]
}

// DomainMax is the largest reduced value, the top of the color ramp
func DomainMax(days []models.CalendarDay) float64 {
	return stats.Max(lo.Map(days, func(d models.CalendarDay, _ int) float64 { return d.Value }))
}

// ClippedDomainMax is the p-th percentile of the reduced values, so a few
// outlier days do not wash out the rest of the ramp
func ClippedDomainMax(days []models.CalendarDay, p float64) float64 {
	return stats.Percentile(lo.Map(days, func(d models.CalendarDay, _ int) float64 { return d.Value }), p)
}

// Cell is a value to color. Selected days are a distinct tagged state, so a
// selection can never collide with a real reduced value.
type Cell struct {
	Value    float64
	Selected bool
}

// Scale maps cells to colors
type Scale struct {
	Base      string   // color of zero-valued days
	Highlight string   // color of selected days
	Ramp      []string // ordered low to high
}

// DefaultScale is a nine-step sequential red ramp
func DefaultScale() Scale {
	return Scale{
		Base:      "#eeeeee",
		Highlight: "#1e90ff",
		Ramp: []string{
			"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a",
			"#ef3b2c", "#cb181d", "#a50f15", "#67000d",
		},
	}
}

// Color returns Highlight for selected cells, Base for zero (or NaN) values,
// and otherwise the ramp entry at floor(min(v/domainMax, 1) * (n-1)).
// A non-positive domainMax puts every non-zero value at the top of the ramp.
func (s Scale) Color(c Cell, domainMax float64) string {
	if c.Selected {
		return s.Highlight
	}
	if c.Value == 0 || math.IsNaN(c.Value) || len(s.Ramp) == 0 {
		return s.Base
	}
	ratio := 1.0
	if domainMax > 0 {
		ratio = math.Max(0, math.Min(c.Value/domainMax, 1))
	}
	return s.Ramp[int(math.Floor(ratio*float64(len(s.Ramp)-1)))]
}

// Paint returns a copy of days with Selected and Color set. Selected days
// are given as anchors; a selected day without activities is added with a
// zero value so the highlight still shows.
func Paint(days []models.CalendarDay, selected []time.Time, scale Scale, domainMax float64) []models.CalendarDay {
	sel := make(map[time.Time]bool, len(selected))
	for _, d := range selected {
		sel[timebucket.Truncate(d, timebucket.Day)] = true
	}

	out := make([]models.CalendarDay, 0, len(days)+len(sel))
	seen := make(map[time.Time]bool, len(days))
	for _, d := range days {
		d.Selected = sel[d.Day]
		d.Color = scale.Color(Cell{Value: d.Value, Selected: d.Selected}, domainMax)
		seen[d.Day] = true
		out = append(out, d)
	}
	for d := range sel {
		if !seen[d] {
			out = append(out, models.CalendarDay{Day: d, Selected: true, Color: scale.Highlight})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// GroupColors colors days by their dominant group instead of their value
func GroupColors(days []models.CalendarDay, colorOf func(group string) string) []models.CalendarDay {
	out := make([]models.CalendarDay, len(days))
	for i, d := range days {
		d.Color = colorOf(d.Group)
		out[i] = d
	}
	return out
}
