package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/activity-dashboard-go/internal/database"
	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

const activityColumns = `id, name, sport_type, start_date, start_date_local, timezone,
	distance, moving_time, elapsed_time, total_elevation_gain, elev_high, elev_low,
	average_speed, max_speed, average_heartrate, max_heartrate, average_watts, kilojoules,
	commute, trainer, manual, private, flagged, start_lat, start_lng`

// Skipped describes a stored row that could not be turned into an Activity
type Skipped struct {
	ID     int64
	Reason string
}

// ActivityRepository handles database operations for activities
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns every well-formed activity ordered by local start date and id.
// Rows that cannot be decoded are reported in skipped instead of failing the load.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, []Skipped, error) {
	query := `SELECT ` + activityColumns + ` FROM activities ORDER BY start_date_local ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeDB, "failed to query activities")
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	var skipped []Skipped
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			var bad *rowError
			if errors.As(err, &bad) {
				skipped = append(skipped, Skipped{ID: bad.id, Reason: bad.reason})
				continue
			}
			return nil, nil, perr.Wrap(err, perr.ErrorCodeDB, "failed to scan activity")
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeDB, "failed to iterate activities")
	}

	return activities, skipped, nil
}

// Get retrieves a single activity by ID
func (r *ActivityRepository) Get(ctx context.Context, id int64) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`

	a, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, perr.NotFoundf("activity %d not found", id)
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "failed to get activity %d", id)
	}
	return &a, nil
}

// Count returns the number of stored activities
func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&total); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "failed to count activities")
	}
	return total, nil
}

// SportTypes returns the distinct stored sport types
func (r *ActivityRepository) SportTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT sport_type FROM activities ORDER BY sport_type")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "failed to query sport types")
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "failed to scan sport type")
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// Upsert inserts or replaces activities in one transaction. Invalid records
// (no id or no start date) are not written; the number written is returned.
func (r *ActivityRepository) Upsert(ctx context.Context, activities []models.Activity) (int, error) {
	written := 0
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO activities (`+activityColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, sport_type = excluded.sport_type,
				start_date = excluded.start_date, start_date_local = excluded.start_date_local,
				timezone = excluded.timezone, distance = excluded.distance,
				moving_time = excluded.moving_time, elapsed_time = excluded.elapsed_time,
				total_elevation_gain = excluded.total_elevation_gain,
				elev_high = excluded.elev_high, elev_low = excluded.elev_low,
				average_speed = excluded.average_speed, max_speed = excluded.max_speed,
				average_heartrate = excluded.average_heartrate, max_heartrate = excluded.max_heartrate,
				average_watts = excluded.average_watts, kilojoules = excluded.kilojoules,
				commute = excluded.commute, trainer = excluded.trainer, manual = excluded.manual,
				private = excluded.private, flagged = excluded.flagged,
				start_lat = excluded.start_lat, start_lng = excluded.start_lng,
				updated_at = datetime('now')`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i := range activities {
			a := &activities[i]
			if !a.Valid() {
				continue
			}
			var lat, lng *float64
			if a.StartLatLng != nil {
				lat, lng = &a.StartLatLng[0], &a.StartLatLng[1]
			}
			startDate := a.StartDate
			if startDate.IsZero() {
				startDate = a.StartDateLocal
			}
			_, err := stmt.ExecContext(ctx,
				a.ID, a.Name, a.SportType,
				startDate.UTC().Format(time.RFC3339), a.StartDateLocal.UTC().Format(time.RFC3339), a.Timezone,
				a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain, a.ElevHigh, a.ElevLow,
				a.AverageSpeed, a.MaxSpeed, a.AverageHeartrate, a.MaxHeartrate, a.AverageWatts, a.Kilojoules,
				a.Commute, a.Trainer, a.Manual, a.Private, a.Flagged, lat, lng,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert activity %d: %w", a.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "failed to store activities")
	}
	return written, nil
}

// rowError marks a row whose content is malformed, as opposed to a driver failure
type rowError struct {
	id     int64
	reason string
}

func (e *rowError) Error() string { return fmt.Sprintf("activity %d: %s", e.id, e.reason) }

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (models.Activity, error) {
	var (
		a                    models.Activity
		startDate, startLoc  sql.NullString
		lat, lng             sql.NullFloat64
		distance, moving     sql.NullFloat64
		elapsed, elevGain    sql.NullFloat64
		elevHigh, elevLow    sql.NullFloat64
		avgSpeed, maxSpeed   sql.NullFloat64
		avgHR, maxHR         sql.NullFloat64
		avgWatts, kilojoules sql.NullFloat64
	)
	err := s.Scan(
		&a.ID, &a.Name, &a.SportType, &startDate, &startLoc, &a.Timezone,
		&distance, &moving, &elapsed, &elevGain, &elevHigh, &elevLow,
		&avgSpeed, &maxSpeed, &avgHR, &maxHR, &avgWatts, &kilojoules,
		&a.Commute, &a.Trainer, &a.Manual, &a.Private, &a.Flagged, &lat, &lng,
	)
	if err != nil {
		return a, err
	}

	if a.ID <= 0 {
		return a, &rowError{id: a.ID, reason: "missing id"}
	}
	local, err := time.Parse(time.RFC3339, startLoc.String)
	if err != nil {
		return a, &rowError{id: a.ID, reason: fmt.Sprintf("unparsable start_date_local %q", startLoc.String)}
	}
	a.StartDateLocal = local.UTC()
	if t, err := time.Parse(time.RFC3339, startDate.String); err == nil {
		a.StartDate = t.UTC()
	}

	a.Distance = nullable(distance)
	a.MovingTime = nullable(moving)
	a.ElapsedTime = nullable(elapsed)
	a.TotalElevationGain = nullable(elevGain)
	a.ElevHigh = nullable(elevHigh)
	a.ElevLow = nullable(elevLow)
	a.AverageSpeed = nullable(avgSpeed)
	a.MaxSpeed = nullable(maxSpeed)
	a.AverageHeartrate = nullable(avgHR)
	a.MaxHeartrate = nullable(maxHR)
	a.AverageWatts = nullable(avgWatts)
	a.Kilojoules = nullable(kilojoules)
	if lat.Valid && lng.Valid {
		a.StartLatLng = &[2]float64{lat.Float64, lng.Float64}
	}
	return a, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
