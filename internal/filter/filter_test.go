package filter

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/jengzang/activity-dashboard-go/internal/category"
	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/expr"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

func at(d int) time.Time { return time.Date(2024, time.January, d, 8, 0, 0, 0, time.UTC) }

func boolp(b bool) *bool { return &b }

func fixture() []models.Activity {
	return []models.Activity{
		{ID: 1, Name: "Morning Run", SportType: "Run", StartDateLocal: at(1), Distance: models.Float(5000)},
		{ID: 2, Name: "Lake loop", SportType: "Ride", StartDateLocal: at(2), Distance: models.Float(20000), Commute: true,
			StartLatLng: &[2]float64{47.37, 8.54}},
		{ID: 3, Name: "Strength", SportType: "WeightTraining", StartDateLocal: at(3)},
		{ID: 4, Name: "Kite", SportType: "Paragliding", StartDateLocal: at(4), Distance: models.Float(1000)},
		{ID: 5, Name: "LAKE swim", SportType: "Swim", StartDateLocal: at(5), Distance: models.Float(1500),
			StartLatLng: &[2]float64{48.85, 2.35}},
		{ID: 0, Name: "broken", SportType: "Run", StartDateLocal: at(6)},
	}
}

func onlyGroup(id string) map[string]bool {
	out := map[string]bool{}
	for _, g := range category.MustDefault().IDs() {
		out[g] = g == id
	}
	return out
}

func mustEvaluate(t *testing.T, state models.FilterState, req Request) []int64 {
	t.Helper()
	reg, err := FromState(state, category.MustDefault())
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	ids, err := Evaluate(reg, fixture(), req)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return ids
}

func TestEvaluateSingleGroup(t *testing.T) {
	acts := []models.Activity{
		{ID: 1, SportType: "Run", StartDateLocal: at(1), Distance: models.Float(5000)},
		{ID: 2, SportType: "Ride", StartDateLocal: at(2), Distance: models.Float(20000)},
	}
	reg, err := FromState(models.FilterState{SportGroups: onlyGroup(category.GroupRun)}, category.MustDefault())
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	ids, err := Evaluate(reg, acts, Request{DimSportGroup: true})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{1}) {
		t.Fatalf("Evaluate = %v, want [1]", ids)
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name  string
		state models.FilterState
		req   Request
		want  []int64
	}{
		{"nothing requested", models.FilterState{}, Request{}, []int64{1, 2, 3, 4, 5}},
		{"defaults", models.FilterState{}, Request{DimSportGroup: true}, []int64{1, 2, 3, 4, 5}},
		{"inactive group", models.FilterState{SportGroups: onlyGroup(category.GroupRide)}, Request{DimSportGroup: false}, []int64{1, 3, 4, 5}},
		{"misc follows unknown tags", models.FilterState{SportGroups: onlyGroup(category.GroupMisc)}, Request{DimSportGroup: true}, []int64{3, 4, 5}},
		{"misc off drops unknown tags", models.FilterState{SportGroups: map[string]bool{category.GroupRun: true}}, Request{DimSportGroup: true}, []int64{1}},
		{"type override off", models.FilterState{SportTypes: map[string]bool{"Swim": false}}, Request{DimSportGroup: true, DimSportType: true}, []int64{1, 2, 3, 4}},
		{"type override on", models.FilterState{SportGroups: onlyGroup(category.GroupRun), SportTypes: map[string]bool{"Ride": true}}, Request{DimSportGroup: true}, []int64{1, 2}},
		{"open range", models.FilterState{}, Request{models.FieldDistance: true}, []int64{1, 2, 3, 4, 5}},
		{"open range negated", models.FilterState{}, Request{models.FieldDistance: false}, []int64{}},
		{"range", models.FilterState{Values: map[string]models.Range{models.FieldDistance: {Min: models.Float(1200)}}}, Request{models.FieldDistance: true}, []int64{1, 2, 5}},
		{"range negated keeps nulls", models.FilterState{Values: map[string]models.Range{models.FieldDistance: {Min: models.Float(1200)}}}, Request{models.FieldDistance: false}, []int64{3, 4}},
		{"zero width range", models.FilterState{Values: map[string]models.Range{models.FieldDistance: {Min: models.Float(1500), Max: models.Float(1500)}}}, Request{models.FieldDistance: true}, []int64{5}},
		{"search folds case", models.FilterState{Search: "lake"}, Request{DimSearch: true}, []int64{2, 5}},
		{"binary", models.FilterState{Binary: map[string]*bool{models.FieldCommute: boolp(true)}}, Request{models.FieldCommute: true}, []int64{2}},
		{"binary false", models.FilterState{Binary: map[string]*bool{models.FieldCommute: boolp(false)}}, Request{models.FieldCommute: true}, []int64{1, 3, 4, 5}},
		{"selected", models.FilterState{Selected: []int64{4, 2, 2, 99}}, Request{DimSelected: true}, []int64{2, 4}},
		{"empty selection", models.FilterState{}, Request{DimSelected: true}, []int64{}},
		{"not hovered", models.FilterState{Hovered: func() *int64 { id := int64(3); return &id }()}, Request{DimHovered: false}, []int64{1, 2, 4, 5}},
		{"date", models.FilterState{DateRange: models.DateRange{Start: func() *time.Time { d := at(2); return &d }()}}, Request{DimDate: true}, []int64{2, 3, 4, 5}},
		{"region", models.FilterState{Region: &models.BBox{South: 46, West: 6, North: 48, East: 10}}, Request{DimRegion: true}, []int64{2}},
		{"combined", models.FilterState{Search: "lake", SportGroups: onlyGroup(category.GroupRide)}, Request{DimSearch: true, DimSportGroup: false}, []int64{5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := mustEvaluate(t, c.state, c.req)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("Evaluate = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEvaluateDegenerate(t *testing.T) {
	reg, _ := FromState(models.FilterState{}, category.MustDefault())
	ids, err := Evaluate(reg, nil, AllActive(reg))
	if err != nil || ids == nil || len(ids) != 0 {
		t.Fatalf("Evaluate(nil) = %v, %v", ids, err)
	}

	_, err = Evaluate(reg, fixture(), Request{"heart": true, "zz": false})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestEvaluateIsSubsetAndDeterministic(t *testing.T) {
	reg, _ := FromState(models.FilterState{Search: "a"}, category.MustDefault())
	acts := fixture()
	req := Request{DimSearch: true, DimSportGroup: true}
	a, _ := Evaluate(reg, acts, req)
	b, _ := Evaluate(reg, acts, req)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Evaluate not deterministic: %v vs %v", a, b)
	}
	all := map[int64]bool{}
	for _, act := range acts {
		all[act.ID] = true
	}
	for _, id := range a {
		if !all[id] {
			t.Fatalf("id %d not in input", id)
		}
	}
	a[0] = -7
	if c, _ := Evaluate(reg, acts, req); c[0] == -7 {
		t.Fatalf("results share memory")
	}
}

// the compiled tree must accept exactly the activities Evaluate returns
func TestCompileAgreesWithEvaluate(t *testing.T) {
	hovered := int64(2)
	state := models.FilterState{
		SportGroups: onlyGroup(category.GroupMisc),
		SportTypes:  map[string]bool{"Swim": false, "Ride": true},
		Values:      map[string]models.Range{models.FieldDistance: {Min: models.Float(1200), Max: models.Float(30000)}},
		Search:      "LAKE",
		Binary:      map[string]*bool{models.FieldCommute: boolp(true)},
		Selected:    []int64{1, 5},
		Hovered:     &hovered,
		Region:      &models.BBox{South: 40, West: 0, North: 50, East: 10},
	}
	reg, err := FromState(state, category.MustDefault())
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	acts := fixture()

	var requests []Request
	for _, name := range reg.Names() {
		requests = append(requests, Request{name: true}, Request{name: false})
	}
	requests = append(requests, AllActive(reg), Request{DimSportGroup: false, models.FieldDistance: false, DimSearch: true})

	for _, req := range requests {
		ids, err := Evaluate(reg, acts, req)
		if err != nil {
			t.Fatalf("Evaluate(%v): %v", req, err)
		}
		tree, err := Compile(reg, acts, req)
		if err != nil {
			t.Fatalf("Compile(%v): %v", req, err)
		}
		var fromTree []int64
		for i := range acts {
			a := &acts[i]
			if a.Valid() && expr.Eval(tree, a.Property) {
				fromTree = append(fromTree, a.ID)
			}
		}
		if len(fromTree) == 0 && len(ids) == 0 {
			continue
		}
		if !reflect.DeepEqual(fromTree, ids) {
			t.Errorf("request %v: tree %s accepts %v, Evaluate returned %v", req, tree, fromTree, ids)
		}
	}
}

func TestCompileShapes(t *testing.T) {
	hovered := int64(9)
	state := models.FilterState{
		SportGroups: map[string]bool{category.GroupRun: true},
		Values:      map[string]models.Range{models.FieldDistance: {Max: models.Float(10)}},
		Hovered:     &hovered,
	}
	reg, _ := FromState(state, category.MustDefault())

	cases := []struct {
		req  Request
		want string
	}{
		{Request{}, `["all"]`},
		{Request{DimSportGroup: true}, `["all",["in","sport_type",["Run","VirtualRun"]]]`},
		{Request{DimSportGroup: false}, `["all",["!in","sport_type",["Run","VirtualRun"]]]`},
		{Request{models.FieldDistance: true}, `["all",["all",["has","distance"],["<=","distance",10]]]`},
		{Request{models.FieldDistance: false}, `["all",["any",["!has","distance"],[">","distance",10]]]`},
		{Request{models.FieldElevHigh: true}, `["all",["all"]]`},
		{Request{models.FieldCommute: true}, `["all",["all"]]`},
		{Request{DimHovered: true}, `["all",["==","id",9]]`},
		{Request{DimSelected: true}, `["all",["in","id",[]]]`},
	}
	for _, c := range cases {
		tree, err := Compile(reg, fixture(), c.req)
		if err != nil {
			t.Fatalf("Compile(%v): %v", c.req, err)
		}
		b, _ := json.Marshal(tree)
		if string(b) != c.want {
			t.Errorf("Compile(%v) = %s, want %s", c.req, b, c.want)
		}
	}

	a, _ := Compile(reg, fixture(), AllActive(reg))
	b, _ := Compile(reg, fixture(), AllActive(reg))
	if !expr.Equal(a, b) {
		t.Fatalf("Compile not stable")
	}
}

func TestCompileMiscShape(t *testing.T) {
	reg, _ := FromState(models.FilterState{SportGroups: onlyGroup(category.GroupMisc)}, category.MustDefault())
	tree, err := Compile(reg, nil, Request{DimSportGroup: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	node := tree.Children[0]
	if node.Op != expr.OpAny || len(node.Children) != 2 {
		t.Fatalf("misc tree = %s", node)
	}
	if node.Children[0].Op != expr.OpIn || node.Children[1].Op != expr.OpNotIn {
		t.Fatalf("misc tree = %s", node)
	}
	if n := len(node.Children[1].Value.([]any)); n != len(category.MustDefault().Aliases()) {
		t.Fatalf("known list has %d tags", n)
	}
}

func TestCompileRejectsUnresolvableFields(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("vo2", Static{P: Range{Field: "vo2max", Min: models.Float(40)}}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := Compile(reg, fixture(), Request{"vo2": true}); !perr.IsCode(err, perr.ErrorCodeInvariant) {
		t.Fatalf("err = %v", err)
	}
}

func TestFromStateOrderAndValidation(t *testing.T) {
	reg, err := FromState(models.FilterState{
		SportTypes: map[string]bool{"Ride": false},
		Region:     &models.BBox{South: 0, West: 0, North: 1, East: 1},
	}, category.MustDefault())
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	names := reg.Names()
	if names[0] != DimSportGroup || names[1] != DimSportType || names[2] != DimDate || names[3] != RangeFields[0] {
		t.Fatalf("Names = %v", names)
	}
	if names[len(names)-1] != DimRegion || names[len(names)-2] != DimHovered {
		t.Fatalf("Names = %v", names)
	}

	reg, _ = FromState(models.FilterState{}, category.MustDefault())
	for _, n := range reg.Names() {
		if n == DimSportType || n == DimRegion {
			t.Fatalf("%s registered without state", n)
		}
	}

	bad := []models.FilterState{
		{SportGroups: map[string]bool{"curling": true}},
		{Values: map[string]models.Range{"vo2": {}}},
		{Values: map[string]models.Range{models.FieldDistance: {Min: models.Float(2), Max: models.Float(1)}}},
		{Values: map[string]models.Range{models.FieldStartTimestamp: {}}},
		{Binary: map[string]*bool{"distance": boolp(true)}},
		{Region: &models.BBox{South: 10, North: 0}},
		{Values: map[string]models.Range{models.FieldDistance: {Min: models.Float(math.NaN())}}},
		{Values: map[string]models.Range{models.FieldDistance: {Max: models.Float(math.Inf(1))}}},
		{Region: &models.BBox{South: math.NaN(), North: 1, West: 0, East: 1}},
	}
	for i, s := range bad {
		if _, err := FromState(s, category.MustDefault()); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}
