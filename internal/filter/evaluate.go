package filter

import (
	"sort"
	"strings"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
	"github.com/jengzang/activity-dashboard-go/internal/expr"
	"github.com/jengzang/activity-dashboard-go/internal/models"
)

// Request names the dimensions to apply. true requires the predicate to
// hold, false requires its negation. Dimensions not named are ignored.
type Request map[string]bool

// AllActive requests every registered dimension as present
func AllActive(reg *Registry) Request {
	req := make(Request, reg.Len())
	for _, name := range reg.Names() {
		req[name] = true
	}
	return req
}

type resolved struct {
	name   string
	pred   Predicate
	active bool
}

// resolve orders a request by registration order and rejects unknown names
func resolve(reg *Registry, req Request) ([]resolved, error) {
	var unknown []string
	for name := range req {
		if _, ok := reg.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, perr.WithField(
			perr.InvalidArgf("unknown filter dimensions: %s", strings.Join(unknown, ", ")),
			"dimensions",
		)
	}

	out := make([]resolved, 0, len(req))
	for _, name := range reg.Names() {
		active, ok := req[name]
		if !ok {
			continue
		}
		p, err := reg.Predicate(name)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved{name: name, pred: p, active: active})
	}
	return out, nil
}

// Evaluate returns the ascending ids of the valid activities for which every
// requested dimension holds (or, for inactive requests, does not hold).
// The result is always a fresh slice and never nil.
func Evaluate(reg *Registry, acts []models.Activity, req Request) ([]int64, error) {
	dims, err := resolve(reg, req)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(acts))
	for i := range acts {
		a := &acts[i]
		if !a.Valid() {
			continue
		}
		if matchAll(dims, a) {
			ids = append(ids, a.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return dedupe(ids), nil
}

func matchAll(dims []resolved, a *models.Activity) bool {
	for _, d := range dims {
		if d.pred.Match(a) != d.active {
			return false
		}
	}
	return true
}

// Compile returns all(...) over one sub-expression per requested dimension in
// registration order, negating the sub-expressions of inactive requests.
// acts is the collection text and region dimensions are materialized against.
func Compile(reg *Registry, acts []models.Activity, req Request) (expr.Node, error) {
	dims, err := resolve(reg, req)
	if err != nil {
		return expr.Node{}, err
	}
	children := make([]expr.Node, 0, len(dims))
	for _, d := range dims {
		n := d.pred.Expr(acts)
		if !d.active {
			n = expr.Negate(n)
		}
		children = append(children, n)
	}
	tree := expr.All(children...)
	for _, f := range tree.Fields() {
		if !models.IsPropertyField(f) {
			return expr.Node{}, perr.Invariantf("compiled expression references unknown field %q", f)
		}
	}
	return tree, nil
}

// Select returns the activities whose id is in ids (ascending), preserving
// the order of acts
func Select(acts []models.Activity, ids []int64) []models.Activity {
	set := NewIDSet(ids)
	out := make([]models.Activity, 0, len(ids))
	for i := range acts {
		if acts[i].Valid() && set.Match(&acts[i]) {
			out = append(out, acts[i])
		}
	}
	return out
}

func dedupe(ids []int64) []int64 {
	n := 0
	for i, id := range ids {
		if i == 0 || id != ids[n-1] {
			ids[n] = id
			n++
		}
	}
	return ids[:n]
}
