package models

import "time"

// SeriesPoint is one (bucket, group) cell of a time series
type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Group  string    `json:"group"`
	Value  float64   `json:"value"`
}

// ProgressPoint is one step of a cumulative progress curve
type ProgressPoint struct {
	Period      time.Time `json:"period"`                // period anchor
	Date        time.Time `json:"date"`                  // real local start date
	VirtualDate time.Time `json:"virtual_date"`          // overlay axis position
	Value       float64   `json:"value"`                 // running total
	ActivityID  int64     `json:"activity_id,omitempty"` // 0 for the seed point
	Current     bool      `json:"current"`               // belongs to the latest period
}

// CalendarDay is one reduced day of the calendar heatmap
type CalendarDay struct {
	Day      time.Time `json:"day"`
	Value    float64   `json:"value"`
	Group    string    `json:"group,omitempty"` // dominant group or "Multiple"
	Count    int       `json:"count"`
	Selected bool      `json:"selected,omitempty"`
	Color    string    `json:"color"`
}

// ActivityListResponse is a page of the filtered list view
type ActivityListResponse struct {
	Data       []Activity `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
