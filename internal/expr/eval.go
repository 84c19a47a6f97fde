package expr

// Getter resolves a field of the record under test; ok is false when the
// field is absent (null metric)
type Getter func(field string) (any, bool)

// Eval interprets n against one record the way a map-layer filter would.
// Ordering operators fail on absent fields; != and !in succeed on them.
func Eval(n Node, get Getter) bool {
	switch n.Op {
	case OpAll:
		for _, c := range n.Children {
			if !Eval(c, get) {
				return false
			}
		}
		return true
	case OpAny:
		for _, c := range n.Children {
			if Eval(c, get) {
				return true
			}
		}
		return false
	case OpHas:
		_, ok := get(n.Field)
		return ok
	case OpNotHas:
		_, ok := get(n.Field)
		return !ok
	case OpEq:
		v, ok := get(n.Field)
		return ok && same(v, n.Value)
	case OpNe:
		v, ok := get(n.Field)
		return !ok || !same(v, n.Value)
	case OpIn:
		v, ok := get(n.Field)
		return ok && member(v, n.Value)
	case OpNotIn:
		v, ok := get(n.Field)
		return !ok || !member(v, n.Value)
	case OpLt, OpLe, OpGt, OpGe:
		v, ok := get(n.Field)
		if !ok {
			return false
		}
		return compare(n.Op, v, n.Value)
	}
	return false
}

func member(v any, list any) bool {
	items, _ := list.([]any)
	for _, item := range items {
		if same(v, item) {
			return true
		}
	}
	return false
}

func same(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return a == b
}

func compare(op Op, a, b any) bool {
	fa, ok := number(a)
	if !ok {
		sa, okA := a.(string)
		sb, okB := b.(string)
		if !okA || !okB {
			return false
		}
		switch op {
		case OpLt:
			return sa < sb
		case OpLe:
			return sa <= sb
		case OpGt:
			return sa > sb
		default:
			return sa >= sb
		}
	}
	fb, ok := number(b)
	if !ok {
		return false
	}
	switch op {
	case OpLt:
		return fa < fb
	case OpLe:
		return fa <= fb
	case OpGt:
		return fa > fb
	default:
		return fa >= fb
	}
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
