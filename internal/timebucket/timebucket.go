// Package timebucket truncates timestamps to period anchors and maps them
// onto a shared virtual axis for cross-period overlays. All arithmetic is UTC.
package timebucket

import (
	"math"
	"strings"
	"time"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
)

// Period is a bucket granularity
type Period uint8

const (
	Day Period = iota + 1
	Week
	Month
	Year
)

// Epoch is the reference start-of-period for virtual dates. It is a Monday
// and the first day of a month and of a (leap) year, so it anchors every period.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var periodNames = map[Period]string{
	Day:   "day",
	Week:  "week",
	Month: "month",
	Year:  "year",
}

// String returns the period name
func (p Period) String() string {
	if s, ok := periodNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePeriod resolves day, week, month or year (case-insensitive)
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range periodNames {
		if name == s {
			return p, nil
		}
	}
	return 0, perr.WithField(perr.InvalidArgf("unknown period %q", s), "period")
}

// Truncate rounds t down to the start of its containing period
func Truncate(t time.Time, p Period) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch p {
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case Week:
		// Monday-start weeks
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the anchor of the period following the one containing t
func Next(t time.Time, p Period) time.Time {
	a := Truncate(t, p)
	switch p {
	case Year:
		return a.AddDate(1, 0, 0)
	case Month:
		return a.AddDate(0, 1, 0)
	case Week:
		return a.AddDate(0, 0, 7)
	default:
		return a.AddDate(0, 0, 1)
	}
}

// Range enumerates every anchor from Truncate(start) to Truncate(end)
// inclusive, ascending. It is empty only when start is after end.
func Range(start, end time.Time, p Period) []time.Time {
	if start.After(end) {
		return []time.Time{}
	}
	last := Truncate(end, p)
	var out []time.Time
	for a := Truncate(start, p); !a.After(last); a = Next(a, p) {
		out = append(out, a)
	}
	return out
}

// Offset returns how far t lies into its period
func Offset(t time.Time, p Period) time.Duration {
	return t.UTC().Sub(Truncate(t, p))
}

// Virtualize maps t onto the virtual axis: Epoch plus the offset of t within
// its period. Order within a period is preserved; equal offsets in different
// periods map to the same virtual date.
func Virtualize(t time.Time, p Period) time.Time {
	return Epoch.Add(Offset(t, p))
}

// Days is the nominal length of a period, used to rescale smoothing windows
func (p Period) Days() int {
	switch p {
	case Year:
		return 365
	case Month:
		return 30
	case Week:
		return 7
	default:
		return 1
	}
}

// MaxWindow is the largest smoothing half-width offered for the period
func (p Period) MaxWindow() int {
	switch p {
	case Year:
		return 0
	case Month:
		return 3
	case Week:
		return 12
	default:
		return 90
	}
}

// RescaleWindow converts a smoothing half-width between periods so the
// window keeps covering roughly the same span of days
func RescaleWindow(k int, from, to Period) int {
	if k <= 0 {
		return 0
	}
	scaled := int(math.Round(float64(k) * float64(from.Days()) / float64(to.Days())))
	if scaled > to.MaxWindow() {
		return to.MaxWindow()
	}
	return scaled
}
