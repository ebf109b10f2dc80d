package metadata

import (
	"encoding/json"
	"testing"

	"formrules/internal/instrument"
)

func TestClassify_AllFieldTypes(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		want      StoreDataType
	}{
		{FieldText, StoreString},
		{FieldMemo, StoreString},
		{FieldHidden, StoreString},
		{FieldEmail, StoreString},
		{FieldSelect, StoreString},
		{FieldMultiSelect, StoreString},
		{FieldRadio, StoreString},
		{FieldTable, StoreString},
		{FieldTime, StoreString},
		{FieldDate, StoreString},
		{FieldDateWithoutTime, StoreString},
		{FieldAutocomplete, StoreString},
		{FieldMultiAutocomplete, StoreString},
		{FieldFile, StoreString},
		{FieldToggle, StoreBoolean},
		{FieldChecklist, StoreList},
		{FieldNumber, StoreNumber},
		{FieldHTML, StoreNone},
		{FieldLogo, StoreNone},
		{FieldSection, StoreNone},
		{FieldLabel, StoreNone},
		{FieldSubmit, StoreNone},
	}
	if len(tests) != len(FieldTypes()) {
		t.Fatalf("table covers %d types, enumeration has %d", len(tests), len(FieldTypes()))
	}

	diags := &instrument.Collector{}
	c := NewClassifier(diags)
	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			if got := c.Classify(tt.fieldType); got != tt.want {
				t.Fatalf("Classify(%s) = %s, want %s", tt.fieldType, got, tt.want)
			}
			// deterministic
			if got := c.Classify(tt.fieldType); got != tt.want {
				t.Fatalf("second Classify(%s) = %s, want %s", tt.fieldType, got, tt.want)
			}
		})
	}
	if diags.Len() != 0 {
		t.Fatalf("expected no diagnostics for known types, got %v", diags.Diagnostics())
	}
}

func TestClassify_UnknownReportsAndReturnsNone(t *testing.T) {
	diags := &instrument.Collector{}
	c := NewClassifier(diags)

	if got := c.Classify("slider"); got != StoreNone {
		t.Fatalf("expected NONE for unknown type, got %s", got)
	}
	if got := c.Classify(""); got != StoreNone {
		t.Fatalf("expected NONE for empty type, got %s", got)
	}

	got := diags.Diagnostics()
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(got))
	}
	if got[0].Component != "classifier" || got[0].Fields["type"] != "slider" {
		t.Fatalf("unexpected diagnostic: %+v", got[0])
	}
	if got[1].Message != "missing field type" {
		t.Fatalf("expected missing field type message, got %q", got[1].Message)
	}
}

func TestClassify_NilReporter(t *testing.T) {
	c := NewClassifier(nil)
	if got := c.Classify("nope"); got != StoreNone {
		t.Fatalf("expected NONE, got %s", got)
	}
}

func TestStoreDataType_Text(t *testing.T) {
	for _, st := range StoreDataTypes() {
		parsed, err := ParseStoreDataType(st.String())
		if err != nil {
			t.Fatalf("parse %s: %v", st, err)
		}
		if parsed != st {
			t.Fatalf("expected %s, got %s", st, parsed)
		}
	}
	if _, err := ParseStoreDataType("DECIMAL"); err == nil {
		t.Fatal("expected error for unknown store type")
	}
	if StoreDataType(42).String() != "StoreDataType(42)" {
		t.Fatalf("unexpected out-of-range string: %s", StoreDataType(42))
	}

	b, err := json.Marshal(map[string]StoreDataType{"age": StoreNumber})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"age":"NUMBER"}` {
		t.Fatalf("unexpected json: %s", b)
	}
}
