package metadata

// FieldRule is one node of a visibility/branching rule tree. A node may carry
// a leaf condition (Field with EqualsValue and/or NotEqualsValue), AND
// children, OR children, any mix of these, or nothing at all.
type FieldRule struct {
	Field          string       `json:"field,omitempty" yaml:"field,omitempty"`
	EqualsValue    string       `json:"equalsValue,omitempty" yaml:"equalsValue,omitempty"`
	NotEqualsValue string       `json:"notEqualsValue,omitempty" yaml:"notEqualsValue,omitempty"`
	And            []*FieldRule `json:"and,omitempty" yaml:"and,omitempty"`
	Or             []*FieldRule `json:"or,omitempty" yaml:"or,omitempty"`
}

// Equals builds a leaf rule "field == value".
func Equals(field, value string) *FieldRule {
	return &FieldRule{Field: field, EqualsValue: value}
}

// NotEquals builds a leaf rule "field != value".
func NotEquals(field, value string) *FieldRule {
	return &FieldRule{Field: field, NotEqualsValue: value}
}

// ReferencedFields returns the distinct field ids the tree reads, in
// depth-first order. Shared subtrees are visited once.
func (r *FieldRule) ReferencedFields() []string {
	var out []string
	seenField := map[string]bool{}
	seenNode := map[*FieldRule]bool{}
	var walk func(n *FieldRule)
	walk = func(n *FieldRule) {
		if n == nil || seenNode[n] {
			return
		}
		seenNode[n] = true
		if n.Field != "" && !seenField[n.Field] {
			seenField[n.Field] = true
			out = append(out, n.Field)
		}
		for _, c := range n.And {
			walk(c)
		}
		for _, c := range n.Or {
			walk(c)
		}
	}
	walk(r)
	return out
}
