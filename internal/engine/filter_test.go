package engine

import (
	"reflect"
	"testing"

	"formrules/internal/metadata"
)

func sampleFilters() []FieldFilter {
	return []FieldFilter{
		{Field: "name", Value: "Ann", Type: metadata.StoreString, Operator: OpEq},
		{Field: "age", Value: float64(18), Type: metadata.StoreNumber, Operator: OpGte},
		{Field: "city", Value: "Utrecht", Type: metadata.StoreString, Operator: OpNeq},
		{Field: "active", Value: true, Type: metadata.StoreBoolean, Operator: OpEq},
		{Field: "age", Value: float64(65), Type: metadata.StoreNumber, Operator: OpLt},
		{Field: "skills", Value: "go", Type: metadata.StoreList, Operator: OpContains},
	}
}

func TestFilterSet_ForTypePreservesOrder(t *testing.T) {
	set := NewFilterSet(sampleFilters())

	strs := set.ForType(metadata.StoreString)
	if len(strs) != 2 || strs[0].Field != "name" || strs[1].Field != "city" {
		t.Fatalf("unexpected string bucket: %v", strs)
	}
	nums := set.ForType(metadata.StoreNumber)
	if len(nums) != 2 || nums[0].Operator != OpGte || nums[1].Operator != OpLt {
		t.Fatalf("unexpected number bucket: %v", nums)
	}
	if got := set.ForType(metadata.StoreNone); len(got) != 0 {
		t.Fatalf("expected empty NONE bucket, got %v", got)
	}

	total := 0
	for _, st := range metadata.StoreDataTypes() {
		total += len(set.ForType(st))
	}
	if total != set.Len() {
		t.Fatalf("buckets cover %d filters, set has %d", total, set.Len())
	}
}

func TestFilterSet_Idempotent(t *testing.T) {
	set := NewFilterSet(sampleFilters())
	first := set.ForType(metadata.StoreNumber)
	first[0].Field = "mutated"
	second := set.ForType(metadata.StoreNumber)
	if second[0].Field != "age" {
		t.Fatalf("expected ForType to return a fresh slice, got %v", second)
	}
	if !reflect.DeepEqual(set.ForType(metadata.StoreList), set.ForType(metadata.StoreList)) {
		t.Fatal("expected repeated calls to agree")
	}
}

func TestFilterSet_CopiesInput(t *testing.T) {
	in := sampleFilters()
	set := NewFilterSet(in)
	in[0].Field = "changed"
	if set.All()[0].Field != "name" {
		t.Fatal("expected set to be unaffected by caller mutation")
	}
	if NewFilterSet(nil).Len() != 0 {
		t.Fatal("expected empty set")
	}
}

func TestFilterSet_NilIsEmpty(t *testing.T) {
	var s *FilterSet
	if s.Len() != 0 || s.All() != nil || s.ForType(metadata.StoreString) != nil {
		t.Fatal("expected nil filter set to behave as empty")
	}
}
