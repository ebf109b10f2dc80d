package engine

import "formrules/internal/metadata"

// Operator is a filter comparison.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpLike     Operator = "like"
	OpContains Operator = "contains"
)

// FieldFilter is one typed predicate over a reply field, awaiting execution
// by a query layer.
type FieldFilter struct {
	Field    string
	Value    any
	Type     metadata.StoreDataType
	Operator Operator
}

// FilterSet is an ordered, read-only collection of filters. A nil set has
// no filters.
type FilterSet struct {
	filters []FieldFilter
}

// NewFilterSet copies filters; later changes to the caller's slice are not seen.
func NewFilterSet(filters []FieldFilter) *FilterSet {
	cp := make([]FieldFilter, len(filters))
	copy(cp, filters)
	return &FilterSet{filters: cp}
}

// ForType returns the filters of the given storage type in their original
// relative order. Each call returns a new slice.
func (s *FilterSet) ForType(t metadata.StoreDataType) []FieldFilter {
	if s == nil {
		return nil
	}
	var out []FieldFilter
	for _, f := range s.filters {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}

// All returns every filter in order.
func (s *FilterSet) All() []FieldFilter {
	if s == nil {
		return nil
	}
	cp := make([]FieldFilter, len(s.filters))
	copy(cp, s.filters)
	return cp
}

func (s *FilterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.filters)
}
