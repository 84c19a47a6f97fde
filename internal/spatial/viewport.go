package spatial

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

// Viewport converts a map bounding box into an s2 rectangle.
// A box whose west edge lies east of its east edge crosses the antimeridian.
func Viewport(b models.BBox) (s2.Rect, error) {
	// written as negated bounds so NaN fails too
	if !(b.South >= -90 && b.North <= 90 && b.South <= b.North) {
		return s2.EmptyRect(), perr.WithField(perr.InvalidArgf("invalid latitude span [%v, %v]", b.South, b.North), "region")
	}
	if !(b.West >= -180 && b.West <= 180 && b.East >= -180 && b.East <= 180) {
		return s2.EmptyRect(), perr.WithField(perr.InvalidArgf("invalid longitude span [%v, %v]", b.West, b.East), "region")
	}

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: (s1.Angle(b.South) * s1.Degree).Radians(),
			Hi: (s1.Angle(b.North) * s1.Degree).Radians(),
		},
		Lng: s1.IntervalFromEndpoints(
			(s1.Angle(b.West) * s1.Degree).Radians(),
			(s1.Angle(b.East) * s1.Degree).Radians(),
		),
	}
	return rect, nil
}

// Contains reports whether a [lat, lng] point lies inside rect
func Contains(rect s2.Rect, latlng [2]float64) bool {
	return rect.ContainsLatLng(s2.LatLngFromDegrees(latlng[0], latlng[1]))
}

// CenterOf returns the [lat, lng] centre of the rectangle
func CenterOf(rect s2.Rect) [2]float64 {
	c := rect.Center()
	return [2]float64{c.Lat.Degrees(), c.Lng.Degrees()}
}
