package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jengzang/activity-dashboard-go/internal/calendar"
	"github.com/jengzang/activity-dashboard-go/internal/category"
	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/expr"
	"github.com/jengzang/activity-dashboard-go/internal/filter"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/repository"
)

type memStore struct {
	acts    []models.Activity
	skipped []repository.Skipped
	err     error
}

func (m *memStore) List(context.Context) ([]models.Activity, []repository.Skipped, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return append([]models.Activity(nil), m.acts...), m.skipped, nil
}

func (m *memStore) Get(_ context.Context, id int64) (*models.Activity, error) {
	for i := range m.acts {
		if m.acts[i].ID == id {
			a := m.acts[i]
			return &a, nil
		}
	}
	return nil, perr.NotFoundf("activity %d not found", id)
}

func (m *memStore) Count(context.Context) (int64, error) { return int64(len(m.acts)), nil }

func (m *memStore) SportTypes(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, a := range m.acts {
		if !seen[a.SportType] {
			seen[a.SportType] = true
			out = append(out, a.SportType)
		}
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, acts []models.Activity) (int, error) {
	n := 0
	for _, a := range acts {
		if a.Valid() {
			m.acts = append(m.acts, a)
			n++
		}
	}
	return n, nil
}

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 9, 0, 0, 0, time.UTC)
}

func act(id int64, sport string, start time.Time, km float64) models.Activity {
	return models.Activity{ID: id, Name: sport, SportType: sport, StartDateLocal: start, Distance: models.Float(km * 1000)}
}

func newService(acts ...models.Activity) *DashboardService {
	return NewDashboardService(&memStore{acts: acts}, category.MustDefault())
}

func fixture() []models.Activity {
	return []models.Activity{
		act(1, "Run", day(1, 1), 5),
		act(2, "Ride", day(1, 1), 20),
		act(3, "Run", day(1, 3), 10),
		act(4, "Hike", day(2, 5), 8),
		act(5, "Ride", day(2, 6), 40),
	}
}

func TestEvaluateDefaultsIgnoreSelection(t *testing.T) {
	svc := newService(fixture()...)
	state := models.FilterState{Selected: []int64{1}}

	ids, err := svc.Evaluate(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("default request should ignore the selection, got %v", ids)
	}

	ids, err = svc.Evaluate(context.Background(), state, filter.Request{filter.DimSelected: true})
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("selected = %v, %v", ids, err)
	}

	_, err = svc.Evaluate(context.Background(), state, filter.Request{"nope": true})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("unknown dimension err = %v", err)
	}
}

func TestExpression(t *testing.T) {
	svc := newService(fixture()...)
	n, err := svc.Expression(context.Background(), models.FilterState{}, filter.Request{filter.DimSelected: true})
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	want := expr.All(expr.In(models.FieldID, nil))
	if !expr.Equal(n, want) {
		t.Fatalf("Expression = %s, want %s", n, want)
	}
}

func TestListActivities(t *testing.T) {
	svc := newService(fixture()...)
	ctx := context.Background()

	res, err := svc.ListActivities(ctx, models.FilterState{}, models.ActivityListFilter{SortBy: models.FieldDistance, PageSize: 2, Page: 1})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if res.Total != 5 || res.TotalPages != 3 || len(res.Data) != 2 {
		t.Fatalf("page = %+v", res)
	}
	if res.Data[0].ID != 5 || res.Data[1].ID != 2 {
		t.Fatalf("order = %d, %d", res.Data[0].ID, res.Data[1].ID)
	}

	res, err = svc.ListActivities(ctx, models.FilterState{}, models.ActivityListFilter{Page: 9})
	if err != nil || len(res.Data) != 0 || res.Total != 5 {
		t.Fatalf("past the end = %+v, %v", res, err)
	}

	_, err = svc.ListActivities(ctx, models.FilterState{}, models.ActivityListFilter{SortBy: models.FieldName})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("sort by name err = %v", err)
	}
}

func TestSortActivitiesMissingValuesLast(t *testing.T) {
	acts := []models.Activity{
		{ID: 1, StartDateLocal: day(1, 1)},
		act(2, "Run", day(1, 2), 3),
		act(3, "Run", day(1, 3), 7),
	}
	for _, desc := range []bool{true, false} {
		rows := append([]models.Activity(nil), acts...)
		sortActivities(rows, func(a *models.Activity) (float64, bool) { return a.Value(models.FieldDistance) }, desc)
		if rows[2].ID != 1 {
			t.Fatalf("desc=%v: activity without distance should be last, got %d", desc, rows[2].ID)
		}
	}
}

func TestListByProximity(t *testing.T) {
	near := act(1, "Run", day(1, 1), 5)
	near.StartLatLng = &[2]float64{47.37, 8.54}
	far := act(2, "Run", day(1, 2), 5)
	far.StartLatLng = &[2]float64{47.50, 8.70}
	nowhere := act(3, "Run", day(1, 3), 5)
	svc := newService(far, nowhere, near)

	region := &models.BBox{South: 47.0, West: 8.0, North: 47.74, East: 9.08}
	// the region predicate is applied, so the activity without coordinates drops out
	res, err := svc.ListActivities(context.Background(), models.FilterState{Region: region}, models.ActivityListFilter{SortBy: SortProximity})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(res.Data) != 2 || res.Data[0].ID != 1 || res.Data[1].ID != 2 {
		t.Fatalf("proximity order = %+v", res.Data)
	}

	_, err = svc.ListActivities(context.Background(), models.FilterState{}, models.ActivityListFilter{SortBy: SortProximity})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("proximity without region err = %v", err)
	}
}

func TestTimeline(t *testing.T) {
	svc := newService(fixture()...)
	tl, err := svc.Timeline(context.Background(), models.FilterState{}, TimelineQuery{Period: "month", Group: "type"})
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if tl.Period != "month" || tl.Window != 0 {
		t.Fatalf("timeline = %+v", tl)
	}
	// two months, one point per group each
	if len(tl.Points) != 2*len(tl.Groups) {
		t.Fatalf("points = %d for groups %v", len(tl.Points), tl.Groups)
	}
	var janRun float64
	for _, p := range tl.Points {
		if p.Bucket.Month() == time.January && p.Group == category.GroupRun {
			janRun = p.Value
		}
	}
	if janRun != 15000 {
		t.Fatalf("january run distance = %v", janRun)
	}
}

func TestTimelineRescalesWindow(t *testing.T) {
	svc := newService(fixture()...)
	tl, err := svc.Timeline(context.Background(), models.FilterState{}, TimelineQuery{Period: "week", Window: 28, From: "day"})
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if tl.Window != 4 {
		t.Fatalf("window = %d, want 4", tl.Window)
	}

	tl, err = svc.Timeline(context.Background(), models.FilterState{}, TimelineQuery{Period: "month", Window: 10})
	if err != nil || tl.Window != 3 {
		t.Fatalf("window should clamp to 3, got %+v, %v", tl, err)
	}
}

func TestTimelineRejectsBadQuery(t *testing.T) {
	svc := newService(fixture()...)
	bad := []TimelineQuery{
		{Period: "fortnight"},
		{Value: "joy"},
		{Reduce: "product"},
		{Kernel: "box"},
		{From: "decade", Window: 1},
	}
	for _, q := range bad {
		if _, err := svc.Timeline(context.Background(), models.FilterState{}, q); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Errorf("Timeline(%+v) err = %v", q, err)
		}
	}
}

func TestProgress(t *testing.T) {
	svc := newService(fixture()...)
	chart, err := svc.Progress(context.Background(), models.FilterState{}, ProgressQuery{Period: "month", Value: "count"})
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	points := chart.Points
	// two seeds plus five activities
	if len(points) != 7 {
		t.Fatalf("points = %d", len(points))
	}
	last := points[len(points)-1]
	if !last.Current || last.Value != 2 {
		t.Fatalf("last point = %+v", last)
	}
	if points[0].Current {
		t.Fatalf("january should not be current")
	}
	if chart.Period != "month" || len(chart.Totals) != 2 || chart.Totals[last.Period] != 2 {
		t.Fatalf("chart = %s %v", chart.Period, chart.Totals)
	}
}

func TestCalendar(t *testing.T) {
	svc := newService(fixture()...)
	ctx := context.Background()

	cal, err := svc.Calendar(ctx, models.FilterState{Selected: []int64{3}}, CalendarQuery{Value: "distance", Days: []time.Time{day(3, 1)}})
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if cal.DomainMax != 40000 {
		t.Fatalf("domain max = %v", cal.DomainMax)
	}
	// four activity days plus the highlighted empty day
	if len(cal.Days) != 5 {
		t.Fatalf("days = %+v", cal.Days)
	}
	scale := calendar.DefaultScale()
	for _, d := range cal.Days {
		switch {
		case d.Day.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), d.Day.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)):
			if !d.Selected || d.Color != scale.Highlight {
				t.Errorf("%v should be highlighted: %+v", d.Day, d)
			}
		case d.Day.Equal(time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC)):
			if d.Color != scale.Ramp[len(scale.Ramp)-1] {
				t.Errorf("busiest day color = %s", d.Color)
			}
		}
	}

	types, err := svc.Calendar(ctx, models.FilterState{}, CalendarQuery{Value: CalendarValueType})
	if err != nil {
		t.Fatalf("Calendar type: %v", err)
	}
	if types.Days[0].Group != calendar.Multiple || types.Days[0].Count != 2 {
		t.Fatalf("mixed day = %+v", types.Days[0])
	}
	if types.Days[1].Group != category.GroupRun || types.Days[1].Color != svc.Catalog().Color(category.GroupRun) {
		t.Fatalf("run day = %+v", types.Days[1])
	}

	if _, err := svc.Calendar(ctx, models.FilterState{}, CalendarQuery{Clip: 120}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("clip err = %v", err)
	}
}

func TestImport(t *testing.T) {
	svc := newService()
	acts, err := DecodeActivities(strings.NewReader(`[
		{"id": 1, "sport_type": "Run", "start_date_local": "2024-01-01T08:00:00Z", "distance": 5000},
		{"id": 0, "sport_type": "Run", "start_date_local": "2024-01-01T08:00:00Z"}
	]`))
	if err != nil {
		t.Fatalf("DecodeActivities: %v", err)
	}
	res, err := svc.Import(context.Background(), acts)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Received != 2 || res.Written != 1 || res.Skipped != 1 {
		t.Fatalf("import = %+v", res)
	}

	if _, err := DecodeActivities(strings.NewReader(`{"id": 1}`)); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("object err = %v", err)
	}
}

func TestStoreLookups(t *testing.T) {
	svc := newService(append(fixture(), act(6, "Kitesurf", day(3, 1), 1))...)
	ctx := context.Background()

	a, err := svc.Activity(ctx, 4)
	if err != nil || a.SportType != "Hike" {
		t.Fatalf("Activity = %+v, %v", a, err)
	}
	if _, err := svc.Activity(ctx, 99); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing activity err = %v", err)
	}
	if n, err := svc.Count(ctx); err != nil || n != 6 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	types, err := svc.SportTypes(ctx)
	if err != nil {
		t.Fatalf("SportTypes: %v", err)
	}
	if types["Hike"] != category.GroupTrailHike || types["Kitesurf"] != category.GroupMisc {
		t.Fatalf("SportTypes = %v", types)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := NewDashboardService(&memStore{err: boom}, category.MustDefault())
	if _, err := svc.Evaluate(context.Background(), models.FilterState{}, nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
