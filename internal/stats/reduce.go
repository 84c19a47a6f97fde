package stats

import (
	"math"
	"sort"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
)

// Reducer collapses a (possibly empty) group of values to one number.
// Every reducer returns 0 for an empty group.
type Reducer func(values []float64) float64

var reducers = map[string]Reducer{
	"sum":    Sum,
	"mean":   Mean,
	"avg":    Mean,
	"count":  func(values []float64) float64 { return float64(len(values)) },
	"max":    Max,
	"min":    Min,
	"median": Median,
}

// ReducerByName returns a named reducer
func ReducerByName(name string) (Reducer, error) {
	r, ok := reducers[name]
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("unknown reducer %q", name), "reduce")
	}
	return r, nil
}

// ReducerNames returns the accepted reducer names, sorted
func ReducerNames() []string {
	out := make([]string, 0, len(reducers))
	for name := range reducers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Finite maps NaN and ±Inf to 0 so chart data never carries them
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
