package engine

import (
	"testing"

	"formrules/internal/metadata"
)

func TestFilterProgram_Match(t *testing.T) {
	prog, err := CompileFilterSet(NewFilterSet(sampleFilters()))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	match := map[string]any{
		"name":   "Ann",
		"age":    float64(30),
		"city":   "Leiden",
		"active": true,
		"skills": []any{"sql", "go"},
	}
	ok, err := prog.Match(match)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !ok {
		t.Fatalf("expected reply to match %s", prog.Source())
	}

	tests := []struct {
		name   string
		change func(map[string]any)
	}{
		{"name differs", func(m map[string]any) { m["name"] = "Bob" }},
		{"too young", func(m map[string]any) { m["age"] = 12 }},
		{"too old", func(m map[string]any) { m["age"] = "70" }},
		{"excluded city", func(m map[string]any) { m["city"] = "Utrecht" }},
		{"inactive", func(m map[string]any) { m["active"] = "false" }},
		{"missing skill", func(m map[string]any) { m["skills"] = []string{"sql"} }},
		{"missing age", func(m map[string]any) { delete(m, "age") }},
		{"non-numeric age", func(m map[string]any) { m["age"] = "thirty" }},
		{"missing city", func(m map[string]any) { delete(m, "city") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := make(map[string]any, len(match))
			for k, v := range match {
				values[k] = v
			}
			tt.change(values)
			ok, err := prog.Match(values)
			if err != nil {
				t.Fatalf("match: %v", err)
			}
			if ok {
				t.Fatalf("expected no match for %v", values)
			}
		})
	}
}

func TestFilterProgram_StringOperators(t *testing.T) {
	set := NewFilterSet([]FieldFilter{
		{Field: "email", Value: "%@example.com", Type: metadata.StoreString, Operator: OpLike},
		{Field: "code", Value: []any{"A1", "B2"}, Type: metadata.StoreString, Operator: OpIn},
		{Field: "tier", Value: []any{"free"}, Type: metadata.StoreString, Operator: OpNotIn},
		{Field: "note", Value: "urgent", Type: metadata.StoreString, Operator: OpContains},
		{Field: "date", Value: "2024-01-01", Type: metadata.StoreString, Operator: OpGte},
	})
	prog, err := CompileFilterSet(set)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	values := map[string]any{
		"email": "ann@example.com",
		"code":  "B2",
		"tier":  "pro",
		"note":  "very urgent please",
		"date":  "2024-06-30",
	}
	ok, err := prog.Match(values)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !ok {
		t.Fatalf("expected match for %s", prog.Source())
	}

	values["email"] = "ann@example.com.evil"
	if ok, _ := prog.Match(values); ok {
		t.Fatal("expected anchored LIKE pattern to reject suffix")
	}
}

func TestFilterProgram_Empty(t *testing.T) {
	prog, err := CompileFilterSet(NewFilterSet(nil))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ok, err := prog.Match(nil)
	if err != nil || !ok {
		t.Fatalf("expected empty set to match, got %v %v", ok, err)
	}
}

func TestFilterProgram_Errors(t *testing.T) {
	_, err := CompileFilterSet(NewFilterSet([]FieldFilter{
		{Field: "x", Value: "1", Type: metadata.StoreNone, Operator: OpEq},
	}))
	if err == nil {
		t.Fatal("expected error for NONE filter")
	}
	_, err = CompileFilterSet(NewFilterSet([]FieldFilter{
		{Field: "x", Value: true, Type: metadata.StoreBoolean, Operator: OpLike},
	}))
	if err == nil {
		t.Fatal("expected error for unsupported operator")
	}
}

func TestLikeToRegex(t *testing.T) {
	if got := likeToRegex("a_c%.txt"); got != `(?s)^a.c.*\.txt$` {
		t.Fatalf("unexpected regex: %s", got)
	}
}
