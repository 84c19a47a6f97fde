package filter

import (
	"sort"

	"github.com/samber/lo"

	"github.com/jengzang/activity-dashboard-go/internal/category"
	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/spatial"
)

// Dimension names. Range dimensions are named after their numeric field and
// binary dimensions after their flag.
const (
	DimSportGroup = "sport_group"
	DimSportType  = "sport_type"
	DimDate       = "date"
	DimSearch     = "search"
	DimSelected   = "selected"
	DimHovered    = "hovered"
	DimRegion     = "region"
)

// RangeFields are the numeric fields with their own range dimension, sorted.
// The local start timestamp is constrained through the date dimension.
var RangeFields = func() []string {
	out := lo.Without(models.NumericFields, models.FieldStartTimestamp)
	sort.Strings(out)
	return out
}()

// BinaryFields are the flags with a tri-state dimension, sorted
var BinaryFields = func() []string {
	out := append([]string(nil), models.BinaryFields...)
	sort.Strings(out)
	return out
}()

// FromState builds a registry holding one static source per dimension of
// state, in a fixed order: sport_group, sport_type (only with overrides),
// date, range fields, search, binary flags, selected, hovered, region
// (only when set).
func FromState(state models.FilterState, cat *category.Catalog) (*Registry, error) {
	if err := Validate(state, cat); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	add := func(name string, p Predicate) {
		// names are constants and unique, Register cannot fail here
		_ = reg.Register(name, Static{P: p})
	}

	add(DimSportGroup, sportGroup(state, cat))
	if len(state.SportTypes) > 0 {
		add(DimSportType, sportType(state, cat))
	}
	add(DimDate, dateRange(state.DateRange))
	for _, f := range RangeFields {
		r := state.Values[f]
		add(f, Range{Field: f, Min: r.Min, Max: r.Max})
	}
	add(DimSearch, NewText(state.Search))
	for _, f := range BinaryFields {
		add(f, Binary{Field: f, Want: state.Binary[f]})
	}
	add(DimSelected, NewIDSet(state.Selected))
	hovered := IDSet{IDs: []int64{}, Single: true}
	if state.Hovered != nil {
		hovered.IDs = []int64{*state.Hovered}
	}
	add(DimHovered, hovered)
	if state.Region != nil {
		rect, err := spatial.Viewport(*state.Region)
		if err != nil {
			return nil, err
		}
		add(DimRegion, Region{Rect: rect})
	}
	return reg, nil
}

// Validate rejects states naming unknown groups or fields, non-finite or
// inverted ranges and malformed regions
func Validate(state models.FilterState, cat *category.Catalog) error {
	for id := range state.SportGroups {
		if _, ok := cat.Group(id); !ok {
			return perr.WithField(perr.InvalidArgf("unknown sport group %q", id), DimSportGroup)
		}
	}
	for field, r := range state.Values {
		if field == models.FieldStartTimestamp {
			return perr.WithField(perr.InvalidArgf("constrain %q through the date range", field), field)
		}
		if !models.IsNumericField(field) {
			return perr.WithField(perr.InvalidArgf("unknown numeric field %q", field), field)
		}
		if (r.Min != nil && !finite(*r.Min)) || (r.Max != nil && !finite(*r.Max)) {
			return perr.WithField(perr.InvalidArgf("range for %q has a non-finite bound", field), field)
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return perr.WithField(perr.InvalidArgf("range for %q has min %v above max %v", field, *r.Min, *r.Max), field)
		}
	}
	for field := range state.Binary {
		if !models.IsBinaryField(field) {
			return perr.WithField(perr.InvalidArgf("unknown flag %q", field), field)
		}
	}
	if b := state.Region; b != nil {
		if _, err := spatial.Viewport(*b); err != nil {
			return err
		}
	}
	d := state.DateRange
	if d.Start != nil && d.End != nil && d.Start.After(*d.End) {
		return perr.WithField(perr.InvalidArgf("date range starts after it ends"), DimDate)
	}
	return nil
}

// ActiveGroups resolves which groups are on: the state's map when given,
// where missing groups are off, otherwise the configured defaults
func ActiveGroups(state models.FilterState, cat *category.Catalog) map[string]bool {
	if state.SportGroups == nil {
		return cat.DefaultActive()
	}
	out := make(map[string]bool, len(cat.IDs()))
	for _, id := range cat.IDs() {
		out[id] = state.SportGroups[id]
	}
	return out
}

// sportGroup includes the tags of every active group plus tags switched on
// individually; unknown tags follow the fallback group
func sportGroup(state models.FilterState, cat *category.Catalog) Category {
	active := ActiveGroups(state, cat)
	var include []string
	for _, g := range cat.Groups() {
		if active[g.ID] {
			include = append(include, g.Aliases...)
		}
	}
	for tag, on := range state.SportTypes {
		if on {
			include = append(include, tag)
		}
	}
	return NewCategory(include, cat.Aliases(), active[cat.Fallback()])
}

// sportType excludes tags switched off individually and lets everything else through
func sportType(state models.FilterState, cat *category.Catalog) Category {
	known := append(cat.Aliases(), lo.Keys(state.SportTypes)...)
	off := lo.PickBy(state.SportTypes, func(_ string, on bool) bool { return !on })
	include := lo.Without(known, lo.Keys(off)...)
	return NewCategory(include, known, true)
}

func dateRange(d models.DateRange) Range {
	r := Range{Field: models.FieldStartTimestamp}
	if d.Start != nil {
		r.Min = models.Float(float64(d.Start.Unix()))
	}
	if d.End != nil {
		r.Max = models.Float(float64(d.End.Unix()))
	}
	return r
}
