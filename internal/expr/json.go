package expr

import (
	"encoding/json"

	perr "github.com/jengzang/activity-dashboard-go/internal/errors"
)

// MarshalJSON encodes the node in array form: ["in","sport_type",["Ride"]],
// ["has","distance"], ["all",child...]
func (n Node) MarshalJSON() ([]byte, error) {
	name, ok := opNames[n.Op]
	if !ok {
		return nil, perr.Invariantf("cannot encode operator %v", n.Op)
	}
	switch {
	case n.Op.IsComposite():
		arr := make([]any, 0, len(n.Children)+1)
		arr = append(arr, name)
		for _, c := range n.Children {
			arr = append(arr, c)
		}
		return json.Marshal(arr)
	case n.Op == OpHas || n.Op == OpNotHas:
		return json.Marshal([]any{name, n.Field})
	default:
		return json.Marshal([]any{name, n.Field, n.Value})
	}
}

// UnmarshalJSON decodes the array form. Numbers decode as float64.
func (n *Node) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "expression must be an array")
	}
	if len(parts) == 0 {
		return perr.InvalidArgf("empty expression")
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "expression operator must be a string")
	}
	op, ok := ParseOp(name)
	if !ok {
		return perr.InvalidArgf("unknown operator %q", name)
	}

	out := Node{Op: op}
	if op.IsComposite() {
		out.Children = make([]Node, len(parts)-1)
		for i, raw := range parts[1:] {
			if err := json.Unmarshal(raw, &out.Children[i]); err != nil {
				return err
			}
		}
		*n = out
		return nil
	}

	want := 3
	if op == OpHas || op == OpNotHas {
		want = 2
	}
	if len(parts) != want {
		return perr.InvalidArgf("operator %q takes %d operands, got %d", name, want-1, len(parts)-1)
	}
	if err := json.Unmarshal(parts[1], &out.Field); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "expression field must be a string")
	}
	if want == 3 {
		if err := json.Unmarshal(parts[2], &out.Value); err != nil {
			return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid expression operand")
		}
		if op == OpIn || op == OpNotIn {
			if _, isList := out.Value.([]any); !isList {
				return perr.InvalidArgf("operator %q takes a list operand", name)
			}
		}
	}
	*n = out
	return nil
}

// String renders the node as JSON, for logs and test failures
func (n Node) String() string {
	b, err := json.Marshal(n)
	if err != nil {
		return "<invalid expression>"
	}
	return string(b)
}
