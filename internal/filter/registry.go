package filter

import (
	"sort"

	"github.com/samber/lo"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
)

// Source supplies the current predicate of one dimension
type Source interface {
	Predicate() Predicate
}

// Notifier is implemented by sources that announce parameter changes
type Notifier interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Static is a source whose predicate never changes
type Static struct{ P Predicate }

func (s Static) Predicate() Predicate { return s.P }

// Var is a source whose predicate is replaced wholesale by Set; every Set
// notifies subscribers. Not safe for concurrent use.
type Var struct {
	p    Predicate
	subs map[int]func()
	next int
}

// NewVar returns a Var holding p
func NewVar(p Predicate) *Var { return &Var{p: p, subs: map[int]func(){}} }

func (v *Var) Predicate() Predicate { return v.p }

// Set swaps the predicate and notifies subscribers
func (v *Var) Set(p Predicate) {
	v.p = p
	for _, id := range sortedKeys(v.subs) {
		v.subs[id]()
	}
}

func (v *Var) Subscribe(fn func()) func() {
	id := v.next
	v.next++
	v.subs[id] = fn
	return func() { delete(v.subs, id) }
}

// Registry is an ordered map from dimension name to predicate source.
// Iteration follows registration order. Not safe for concurrent use.
type Registry struct {
	names     []string
	sources   map[string]Source
	detach    map[string]func()
	listeners map[int]func(name string)
	next      int
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sources:   map[string]Source{},
		detach:    map[string]func(){},
		listeners: map[int]func(string){},
	}
}

// Register attaches src under name. Registering an existing name replaces
// its source in place, keeping its position, and counts as a change.
func (r *Registry) Register(name string, src Source) error {
	if name == "" {
		return perr.InvalidArgf("dimension name must not be empty")
	}
	if src == nil {
		return perr.WithField(perr.InvalidArgf("dimension %q has no source", name), name)
	}

	_, replacing := r.sources[name]
	if replacing {
		r.detach[name]()
	} else {
		r.names = append(r.names, name)
	}
	r.sources[name] = src
	r.detach[name] = func() {}
	if n, ok := src.(Notifier); ok {
		r.detach[name] = n.Subscribe(func() { r.notify(name) })
	}
	if replacing {
		r.notify(name)
	}
	return nil
}

// Unregister removes a dimension; unknown names are ignored
func (r *Registry) Unregister(name string) {
	if _, ok := r.sources[name]; !ok {
		return
	}
	r.detach[name]()
	delete(r.detach, name)
	delete(r.sources, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i:i], r.names[i+1:]...)
			break
		}
	}
	r.notify(name)
}

// Names returns dimension names in registration order
func (r *Registry) Names() []string { return append([]string(nil), r.names...) }

// Len returns the number of dimensions
func (r *Registry) Len() int { return len(r.names) }

// Lookup returns the source of a dimension
func (r *Registry) Lookup(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// Predicate returns the current predicate of a dimension
func (r *Registry) Predicate(name string) (Predicate, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("unknown filter dimension %q", name), name)
	}
	p := src.Predicate()
	if p == nil {
		return nil, perr.Invariantf("dimension %q has no predicate", name)
	}
	return p, nil
}

// Subscribe registers fn to be called with the dimension name whenever a
// dimension is replaced, removed or its source announces a change
func (r *Registry) Subscribe(fn func(name string)) func() {
	id := r.next
	r.next++
	r.listeners[id] = fn
	return func() { delete(r.listeners, id) }
}

func (r *Registry) notify(name string) {
	for _, id := range sortedKeys(r.listeners) {
		r.listeners[id](name)
	}
}

// sortedKeys orders subscriber ids so notifications follow subscription order
func sortedKeys[V any](m map[int]V) []int {
	keys := lo.Keys(m)
	sort.Ints(keys)
	return keys
}
