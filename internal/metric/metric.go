// Package metric names the per-activity values charts can aggregate
package metric

import (
	"sort"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

// Metric extracts one number from an activity
type Metric struct {
	ID    string
	Label string
	Unit  string
	// Value returns false when the activity has no value for this metric
	Value func(a *models.Activity) (float64, bool)
}

func field(name string, scale float64) func(a *models.Activity) (float64, bool) {
	return func(a *models.Activity) (float64, bool) {
		v, ok := a.Value(name)
		if !ok {
			return 0, false
		}
		return v * scale, true
	}
}

var registry = map[string]Metric{
	"count": {
		ID: "count", Label: "Count",
		Value: func(*models.Activity) (float64, bool) { return 1, true },
	},
	"distance":    {ID: "distance", Label: "Distance", Unit: "m", Value: field(models.FieldDistance, 1)},
	"elevation":   {ID: "elevation", Label: "Elevation", Unit: "m", Value: field(models.FieldTotalElevationGain, 1)},
	"time":        {ID: "time", Label: "Duration", Unit: "h", Value: field(models.FieldElapsedTime, 1.0/3600)},
	"moving_time": {ID: "moving_time", Label: "Moving time", Unit: "h", Value: field(models.FieldMovingTime, 1.0/3600)},
	"heartrate":   {ID: "heartrate", Label: "Heart rate", Unit: "bpm", Value: field(models.FieldAverageHeartrate, 1)},
	"power":       {ID: "power", Label: "Power", Unit: "W", Value: field(models.FieldAverageWatts, 1)},
	"kilojoules":  {ID: "kilojoules", Label: "Energy", Unit: "kJ", Value: field(models.FieldKilojoules, 1)},
	"speed":       {ID: "speed", Label: "Speed", Unit: "km/h", Value: field(models.FieldAverageSpeed, 3.6)},
}

// Lookup returns a metric by id
func Lookup(id string) (Metric, error) {
	m, ok := registry[id]
	if !ok {
		return Metric{}, perr.WithField(perr.InvalidArgf("unknown metric %q", id), "value")
	}
	return m, nil
}

// IDs returns every metric id, sorted
func IDs() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MustLookup is Lookup for ids known at compile time
func MustLookup(id string) Metric {
	m, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return m
}
