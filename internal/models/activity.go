package models

import "time"

// Activity is one recorded ride/run/ski activity. Nullable metrics are pointers.
type Activity struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	SportType      string    `json:"sport_type" db:"sport_type"`
	StartDate      time.Time `json:"start_date" db:"start_date"`             // absolute (UTC)
	StartDateLocal time.Time `json:"start_date_local" db:"start_date_local"` // local wall time encoded as UTC
	Timezone       string    `json:"timezone,omitempty" db:"timezone"`

	// Metrics
	Distance           *float64 `json:"distance,omitempty" db:"distance"`                         // Meters
	MovingTime         *float64 `json:"moving_time,omitempty" db:"moving_time"`                   // Seconds
	ElapsedTime        *float64 `json:"elapsed_time,omitempty" db:"elapsed_time"`                 // Seconds
	TotalElevationGain *float64 `json:"total_elevation_gain,omitempty" db:"total_elevation_gain"` // Meters
	ElevHigh           *float64 `json:"elev_high,omitempty" db:"elev_high"`
	ElevLow            *float64 `json:"elev_low,omitempty" db:"elev_low"`
	AverageSpeed       *float64 `json:"average_speed,omitempty" db:"average_speed"` // m/s
	MaxSpeed           *float64 `json:"max_speed,omitempty" db:"max_speed"`
	AverageHeartrate   *float64 `json:"average_heartrate,omitempty" db:"average_heartrate"` // bpm
	MaxHeartrate       *float64 `json:"max_heartrate,omitempty" db:"max_heartrate"`
	AverageWatts       *float64 `json:"average_watts,omitempty" db:"average_watts"`
	Kilojoules         *float64 `json:"kilojoules,omitempty" db:"kilojoules"`

	// Flags
	Commute bool `json:"commute" db:"commute"`
	Trainer bool `json:"trainer" db:"trainer"`
	Manual  bool `json:"manual" db:"manual"`
	Private bool `json:"private" db:"private"`
	Flagged bool `json:"flagged" db:"flagged"`

	StartLatLng *[2]float64 `json:"start_latlng,omitempty" db:"start_latlng"` // [lat, lng]
}

// Activity property names shared by predicates, expressions and the URL codec
const (
	FieldID                 = "id"
	FieldSportType          = "sport_type"
	FieldName               = "name"
	FieldStartTimestamp     = "start_date_local_timestamp"
	FieldDistance           = "distance"
	FieldMovingTime         = "moving_time"
	FieldElapsedTime        = "elapsed_time"
	FieldTotalElevationGain = "total_elevation_gain"
	FieldElevHigh           = "elev_high"
	FieldElevLow            = "elev_low"
	FieldAverageSpeed       = "average_speed"
	FieldMaxSpeed           = "max_speed"
	FieldAverageHeartrate   = "average_heartrate"
	FieldMaxHeartrate       = "max_heartrate"
	FieldAverageWatts       = "average_watts"
	FieldKilojoules         = "kilojoules"
	FieldCommute            = "commute"
	FieldTrainer            = "trainer"
	FieldManual             = "manual"
	FieldPrivate            = "private"
	FieldFlagged            = "flagged"
)

// NumericFields lists the fields a range dimension may constrain
var NumericFields = []string{
	FieldStartTimestamp,
	FieldDistance,
	FieldMovingTime,
	FieldElapsedTime,
	FieldTotalElevationGain,
	FieldElevHigh,
	FieldElevLow,
	FieldAverageSpeed,
	FieldMaxSpeed,
	FieldAverageHeartrate,
	FieldMaxHeartrate,
	FieldAverageWatts,
	FieldKilojoules,
}

// BinaryFields lists the fields a tri-state binary dimension may constrain
var BinaryFields = []string{FieldCommute, FieldTrainer, FieldManual, FieldPrivate, FieldFlagged}

// Valid reports whether the record can take part in aggregation
func (a *Activity) Valid() bool {
	return a != nil && a.ID > 0 && !a.StartDateLocal.IsZero()
}

// Value returns a numeric field; ok is false for null metrics and unknown fields
func (a *Activity) Value(field string) (float64, bool) {
	var p *float64
	switch field {
	case FieldID:
		return float64(a.ID), true
	case FieldStartTimestamp:
		if a.StartDateLocal.IsZero() {
			return 0, false
		}
		return float64(a.StartDateLocal.Unix()), true
	case FieldDistance:
		p = a.Distance
	case FieldMovingTime:
		p = a.MovingTime
	case FieldElapsedTime:
		p = a.ElapsedTime
	case FieldTotalElevationGain:
		p = a.TotalElevationGain
	case FieldElevHigh:
		p = a.ElevHigh
	case FieldElevLow:
		p = a.ElevLow
	case FieldAverageSpeed:
		p = a.AverageSpeed
	case FieldMaxSpeed:
		p = a.MaxSpeed
	case FieldAverageHeartrate:
		p = a.AverageHeartrate
	case FieldMaxHeartrate:
		p = a.MaxHeartrate
	case FieldAverageWatts:
		p = a.AverageWatts
	case FieldKilojoules:
		p = a.Kilojoules
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Bool returns a boolean flag; ok is false for unknown fields
func (a *Activity) Bool(field string) (bool, bool) {
	switch field {
	case FieldCommute:
		return a.Commute, true
	case FieldTrainer:
		return a.Trainer, true
	case FieldManual:
		return a.Manual, true
	case FieldPrivate:
		return a.Private, true
	case FieldFlagged:
		return a.Flagged, true
	}
	return false, false
}

// Property returns any field as a loosely typed value, the shape a map layer sees
func (a *Activity) Property(field string) (any, bool) {
	switch field {
	case FieldSportType:
		return a.SportType, true
	case FieldName:
		return a.Name, true
	}
	if b, ok := a.Bool(field); ok {
		return b, true
	}
	if v, ok := a.Value(field); ok {
		return v, true
	}
	return nil, false
}

// IsNumericField reports whether field can be range filtered
func IsNumericField(field string) bool {
	for _, f := range NumericFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsPropertyField reports whether Property can resolve field
func IsPropertyField(field string) bool {
	switch field {
	case FieldID, FieldSportType, FieldName, FieldStartTimestamp:
		return true
	}
	return IsNumericField(field) || IsBinaryField(field)
}

// IsBinaryField reports whether field can be binary filtered
func IsBinaryField(field string) bool {
	for _, f := range BinaryFields {
		if f == field {
			return true
		}
	}
	return false
}

// Float is a helper for building nullable metrics
func Float(v float64) *float64 { return &v }
