// Package filter holds the predicate model, the dimension registry, the
// evaluator that recomputes the surviving id set, and the compiler that
// turns the same state into an expression tree.
package filter

import (
	"sort"
	"strings"

	"github.com/golang/geo/s2"
	"golang.org/x/text/cases"

	"github.com/jengzang/activity-dashboard-go/internal/expr"
	"github.com/jengzang/activity-dashboard-go/internal/models"
	"github.com/jengzang/activity-dashboard-go/internal/spatial"
)

// Kind tags the variant of a predicate
type Kind string

const (
	KindCategory Kind = "category"
	KindRange    Kind = "range"
	KindText     Kind = "text"
	KindBinary   Kind = "binary"
	KindIDSet    Kind = "idset"
	KindRegion   Kind = "region"
)

// Predicate is a pure test over one activity, tagged with its variant.
// Expr returns the equivalent expression tree; variants that cannot be
// written with the leaf operators materialize the matching ids of acts.
type Predicate interface {
	Kind() Kind
	Match(a *models.Activity) bool
	Expr(acts []models.Activity) expr.Node
}

// Category matches a sport-type tag against a set of tags. With Unknown set,
// tags outside Known match as well, which is how the fallback group follows
// unrecognized tags.
type Category struct {
	Field   string
	Include []string
	Known   []string
	Unknown bool
}

// NewCategory sorts and dedupes the tag lists
func NewCategory(include, known []string, unknown bool) Category {
	return Category{
		Field:   models.FieldSportType,
		Include: sortedSet(include),
		Known:   sortedSet(known),
		Unknown: unknown,
	}
}

func (Category) Kind() Kind { return KindCategory }

func (c Category) Match(a *models.Activity) bool {
	if contains(c.Include, a.SportType) {
		return true
	}
	return c.Unknown && !contains(c.Known, a.SportType)
}

func (c Category) Expr([]models.Activity) expr.Node {
	in := expr.In(c.Field, expr.Strings(c.Include))
	if !c.Unknown {
		return in
	}
	return expr.Any(in, expr.NotIn(c.Field, expr.Strings(c.Known)))
}

// Range bounds a numeric field. A nil bound is open; with both bounds nil
// every activity matches. A null value fails any constrained range.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

func (Range) Kind() Kind { return KindRange }

// IsOpen reports whether the range constrains nothing
func (r Range) IsOpen() bool { return r.Min == nil && r.Max == nil }

func (r Range) Match(a *models.Activity) bool {
	if r.IsOpen() {
		return true
	}
	v, ok := a.Value(r.Field)
	if !ok {
		return false
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r Range) Expr([]models.Activity) expr.Node {
	if r.IsOpen() {
		return expr.All()
	}
	children := []expr.Node{expr.Has(r.Field)}
	if r.Min != nil {
		children = append(children, expr.Ge(r.Field, *r.Min))
	}
	if r.Max != nil {
		children = append(children, expr.Le(r.Field, *r.Max))
	}
	return expr.All(children...)
}

// Text matches activities whose name contains the query, ignoring case.
// A Text is not safe for concurrent use.
type Text struct {
	Query  string
	folded string
	fold   cases.Caser
}

// NewText prepares a case-folded query
func NewText(query string) Text {
	q := strings.TrimSpace(query)
	fold := cases.Fold()
	return Text{Query: q, folded: fold.String(q), fold: fold}
}

func (Text) Kind() Kind { return KindText }

func (t Text) Match(a *models.Activity) bool {
	if t.folded == "" {
		return true
	}
	return strings.Contains(t.fold.String(a.Name), t.folded)
}

func (t Text) Expr(acts []models.Activity) expr.Node {
	if t.folded == "" {
		return expr.All()
	}
	return materialize(t, acts)
}

// Binary is a tri-state flag constraint: nil means either value
type Binary struct {
	Field string
	Want  *bool
}

func (Binary) Kind() Kind { return KindBinary }

func (b Binary) Match(a *models.Activity) bool {
	if b.Want == nil {
		return true
	}
	v, _ := a.Bool(b.Field)
	return v == *b.Want
}

func (b Binary) Expr([]models.Activity) expr.Node {
	if b.Want == nil {
		return expr.All()
	}
	return expr.Eq(b.Field, *b.Want)
}

// IDSet matches activity ids. An empty set matches nothing. Single renders
// a one-element set as an equality, the shape used for the hovered activity.
type IDSet struct {
	IDs    []int64
	Single bool
}

// NewIDSet sorts and dedupes ids
func NewIDSet(ids []int64) IDSet {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, id := range out {
		if i == 0 || id != out[n-1] {
			out[n] = id
			n++
		}
	}
	return IDSet{IDs: out[:n]}
}

func (IDSet) Kind() Kind { return KindIDSet }

func (s IDSet) Match(a *models.Activity) bool {
	i := sort.Search(len(s.IDs), func(i int) bool { return s.IDs[i] >= a.ID })
	return i < len(s.IDs) && s.IDs[i] == a.ID
}

func (s IDSet) Expr([]models.Activity) expr.Node {
	if s.Single && len(s.IDs) == 1 {
		return expr.Eq(models.FieldID, s.IDs[0])
	}
	return expr.In(models.FieldID, expr.Int64s(s.IDs))
}

// Region matches activities whose start point lies in a map viewport
type Region struct {
	Rect s2.Rect
}

func (Region) Kind() Kind { return KindRegion }

func (r Region) Match(a *models.Activity) bool {
	return a.StartLatLng != nil && spatial.Contains(r.Rect, *a.StartLatLng)
}

func (r Region) Expr(acts []models.Activity) expr.Node {
	return materialize(r, acts)
}

// materialize writes p as an id membership over the valid activities it matches
func materialize(p Predicate, acts []models.Activity) expr.Node {
	ids := make([]int64, 0)
	for i := range acts {
		if acts[i].Valid() && p.Match(&acts[i]) {
			ids = append(ids, acts[i].ID)
		}
	}
	return NewIDSet(ids).Expr(nil)
}

func sortedSet(ss []string) []string {
	out := append([]string{}, ss...)
	sort.Strings(out)
	n := 0
	for i, s := range out {
		if i == 0 || s != out[n-1] {
			out[n] = s
			n++
		}
	}
	return out[:n]
}

func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}
