package series

import (
	"math"
	"strings"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/stats"
)

// Kernel weights the neighbours of a rolling window
type Kernel uint8

const (
	Mean Kernel = iota
	Gaussian
)

// ParseKernel resolves "mean" (also "" and "rolling") or "gaussian"
func ParseKernel(s string) (Kernel, error) {
	switch strings.ToLower(s) {
	case "", "mean", "rolling":
		return Mean, nil
	case "gaussian":
		return Gaussian, nil
	}
	return 0, perr.WithField(perr.InvalidArgf("unknown kernel %q", s), "kernel")
}

func (k Kernel) String() string {
	if k == Gaussian {
		return "gaussian"
	}
	return "mean"
}

// Smooth replaces each value with the weighted mean of the 2k+1 surrounding
// points of the same group. Windows are clamped at the series ends. The
// result is a new slice with the same points in the same order; k <= 0
// returns an identical copy.
func Smooth(points []models.SeriesPoint, k int, kernel Kernel) []models.SeriesPoint {
	out := make([]models.SeriesPoint, len(points))
	copy(out, points)
	if k <= 0 || len(points) == 0 {
		return out
	}

	// positions of each group's points, in series order
	positions := make(map[string][]int)
	longest := 0
	for i, p := range points {
		positions[p.Group] = append(positions[p.Group], i)
		longest = max(longest, len(positions[p.Group]))
	}

	// no window reaches further than the longest group
	reach := min(k, longest-1)
	weights := kernelWeights(reach, float64(k)/2, kernel)
	for _, idx := range positions {
		for j, pos := range idx {
			from := max(0, j-k)
			to := min(len(idx)-1, j+k)
			values := make([]float64, 0, to-from+1)
			w := make([]float64, 0, to-from+1)
			for n := from; n <= to; n++ {
				values = append(values, points[idx[n]].Value)
				w = append(w, weights[n-j+reach])
			}
			out[pos].Value = stats.Finite(stats.WeightedMean(values, w))
		}
	}
	return out
}

// kernelWeights returns 2*reach+1 weights indexed by distance+reach
func kernelWeights(reach int, sigma float64, kernel Kernel) []float64 {
	w := make([]float64, 2*reach+1)
	for d := -reach; d <= reach; d++ {
		if kernel == Gaussian {
			w[d+reach] = math.Exp(-float64(d) * float64(d) / (2 * sigma * sigma))
		} else {
			w[d+reach] = 1
		}
	}
	return w
}
