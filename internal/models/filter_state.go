package models

import "time"

// Range is an optional [min, max] constraint; a nil bound is open
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsOpen reports whether the range constrains nothing
func (r Range) IsOpen() bool { return r.Min == nil && r.Max == nil }

// DateRange is an optional start/end constraint on the local start date
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsOpen reports whether the date range constrains nothing
func (d DateRange) IsOpen() bool { return d.Start == nil && d.End == nil }

// BBox is a map viewport in degrees
type BBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// FilterState is the serializable aggregate of every filter parameter.
// It is treated as an immutable value: changes produce a new FilterState.
type FilterState struct {
	SportGroups map[string]bool  `json:"sport_groups,omitempty"` // group id -> active
	SportTypes  map[string]bool  `json:"sport_types,omitempty"`  // per-tag override
	DateRange   DateRange        `json:"date_range"`
	Values      map[string]Range `json:"values,omitempty"` // numeric field -> range
	Search      string           `json:"search,omitempty"`
	Binary      map[string]*bool `json:"binary,omitempty"` // field -> nil (any), true, false
	Selected    []int64          `json:"selected,omitempty"`
	Hovered     *int64           `json:"hovered,omitempty"`
	Region      *BBox            `json:"region,omitempty"`
}

// Clone returns a deep copy so callers can derive a new state without aliasing
func (s FilterState) Clone() FilterState {
	out := s
	if s.SportGroups != nil {
		out.SportGroups = make(map[string]bool, len(s.SportGroups))
		for k, v := range s.SportGroups {
			out.SportGroups[k] = v
		}
	}
	if s.SportTypes != nil {
		out.SportTypes = make(map[string]bool, len(s.SportTypes))
		for k, v := range s.SportTypes {
			out.SportTypes[k] = v
		}
	}
	if s.Values != nil {
		out.Values = make(map[string]Range, len(s.Values))
		for k, v := range s.Values {
			out.Values[k] = v
		}
	}
	if s.Binary != nil {
		out.Binary = make(map[string]*bool, len(s.Binary))
		for k, v := range s.Binary {
			out.Binary[k] = v
		}
	}
	if s.Selected != nil {
		out.Selected = append([]int64(nil), s.Selected...)
	}
	if s.Hovered != nil {
		h := *s.Hovered
		out.Hovered = &h
	}
	if s.Region != nil {
		r := *s.Region
		out.Region = &r
	}
	return out
}

// ActivityListFilter represents pagination and sort parameters for the list view
type ActivityListFilter struct {
	SortBy   string `form:"sortBy"` // id, any numeric field, or proximity (needs a region)
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
