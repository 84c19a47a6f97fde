// Package expr is the boolean expression tree handed to declarative
// renderers (map-layer style filters). Leaves use a fixed set of operators,
// each with a total negation counterpart; composites are all/any.
package expr

import (
	"fmt"
	"reflect"
	"sort"
)

// Op is a leaf operator or a composite connective
type Op uint8

const (
	OpInvalid Op = iota
	OpEq
	OpNe
	OpLt
	OpGe
	OpLe
	OpGt
	OpIn
	OpNotIn
	OpHas
	OpNotHas

	// Connectives
	OpAll
	OpAny
)

var opNames = map[Op]string{
	OpEq:     "==",
	OpNe:     "!=",
	OpLt:     "<",
	OpGe:     ">=",
	OpLe:     "<=",
	OpGt:     ">",
	OpIn:     "in",
	OpNotIn:  "!in",
	OpHas:    "has",
	OpNotHas: "!has",
	OpAll:    "all",
	OpAny:    "any",
}

var opByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// negation maps every operator to its counterpart. Connectives flip under De Morgan.
var negation = map[Op]Op{
	OpEq:     OpNe,
	OpNe:     OpEq,
	OpLt:     OpGe,
	OpGe:     OpLt,
	OpLe:     OpGt,
	OpGt:     OpLe,
	OpIn:     OpNotIn,
	OpNotIn:  OpIn,
	OpHas:    OpNotHas,
	OpNotHas: OpHas,
	OpAll:    OpAny,
	OpAny:    OpAll,
}

func init() {
	if err := checkNegation(opNames, negation); err != nil {
		panic(err)
	}
}

// checkNegation verifies the table is total and involutive over names
func checkNegation(names map[Op]string, table map[Op]Op) error {
	for op := range names {
		n, ok := table[op]
		if !ok {
			return fmt.Errorf("expr: operator %q has no negation", names[op])
		}
		if back, ok := table[n]; !ok || back != op {
			return fmt.Errorf("expr: negation of %q is not involutive", names[op])
		}
	}
	return nil
}

// String returns the operator token
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// IsComposite reports whether o is a connective
func (o Op) IsComposite() bool { return o == OpAll || o == OpAny }

// ParseOp resolves an operator token
func ParseOp(s string) (Op, bool) {
	op, ok := opByName[s]
	return op, ok
}

// Node is one expression tree node. Leaves carry Field and, except for
// has/!has, Value (a slice of values for in/!in). Composites carry Children.
// Nodes are values: functions in this package never mutate their inputs.
type Node struct {
	Op       Op
	Field    string
	Value    any
	Children []Node
}

// All is the conjunction of children; with no children it is always true
func All(children ...Node) Node { return Node{Op: OpAll, Children: nonNil(children)} }

// Any is the disjunction of children; with no children it is always false
func Any(children ...Node) Node { return Node{Op: OpAny, Children: nonNil(children)} }

// Leaf constructors

func Eq(field string, v any) Node { return Node{Op: OpEq, Field: field, Value: v} }

func Ne(field string, v any) Node { return Node{Op: OpNe, Field: field, Value: v} }

func Lt(field string, v any) Node { return Node{Op: OpLt, Field: field, Value: v} }

func Le(field string, v any) Node { return Node{Op: OpLe, Field: field, Value: v} }

func Gt(field string, v any) Node { return Node{Op: OpGt, Field: field, Value: v} }

func Ge(field string, v any) Node { return Node{Op: OpGe, Field: field, Value: v} }

func Has(field string) Node { return Node{Op: OpHas, Field: field} }

func NotHas(field string) Node { return Node{Op: OpNotHas, Field: field} }

func In(field string, vs []any) Node {
	return Node{Op: OpIn, Field: field, Value: nonNilValues(vs)}
}

func NotIn(field string, vs []any) Node {
	return Node{Op: OpNotIn, Field: field, Value: nonNilValues(vs)}
}

// Strings converts a string list into in/!in operands
func Strings(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Int64s converts an id list into in/!in operands
func Int64s(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// Negate returns the structural negation of n. Leaves swap their operator
// through the negation table; composites flip their connective and negate
// every child. Negate(Negate(n)) is structurally equal to n.
// An operator outside the table is a programming error and panics.
func Negate(n Node) Node {
	op, ok := negation[n.Op]
	if !ok {
		panic(fmt.Sprintf("expr: no negation for operator %v", n.Op))
	}
	out := Node{Op: op, Field: n.Field, Value: n.Value}
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = Negate(c)
		}
	}
	return out
}

// Equal reports structural equality
func Equal(a, b Node) bool { return reflect.DeepEqual(a, b) }

// Fields returns the distinct fields referenced by n, sorted
func (n Node) Fields() []string {
	seen := map[string]struct{}{}
	var walk func(Node)
	walk = func(x Node) {
		if x.Field != "" {
			seen[x.Field] = struct{}{}
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	walk(n)
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func nonNil(children []Node) []Node {
	if children == nil {
		return []Node{}
	}
	return children
}

func nonNilValues(vs []any) []any {
	if vs == nil {
		return []any{}
	}
	return vs
}
