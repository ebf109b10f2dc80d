package metadata

import (
	"fmt"
	"regexp"
)

var fieldIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)

type Form struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name,omitempty" yaml:"name,omitempty"`
	Version int     `json:"version,omitempty" yaml:"version,omitempty"`
	Fields  []Field `json:"fields" yaml:"fields"`
}

// GetField returns a pointer to the field with the given id, or nil.
func (f *Form) GetField(id string) *Field {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i]
		}
	}
	return nil
}

// StoreTypes classifies every field of the form.
func (f *Form) StoreTypes(c *Classifier) map[string]StoreDataType {
	types := make(map[string]StoreDataType, len(f.Fields))
	for _, fld := range f.Fields {
		types[fld.ID] = c.Classify(fld.Type)
	}
	return types
}

// StoredFields returns fields whose answers are stored, i.e. not StoreNone.
// Presentational fields (html, logo, section, label, submit) are excluded.
func (f *Form) StoredFields(c *Classifier) []Field {
	var fields []Field
	for _, fld := range f.Fields {
		if c.Classify(fld.Type) == StoreNone {
			continue
		}
		fields = append(fields, fld)
	}
	return fields
}

// Validate checks the structural constraints of a form definition: an id,
// unique well-formed field ids, and visibility rules that only reference
// fields of this form.
func (f *Form) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("form id is required")
	}
	seen := make(map[string]bool, len(f.Fields))
	for i, fld := range f.Fields {
		if !fieldIDPattern.MatchString(fld.ID) {
			return fmt.Errorf("form %s: field #%d has invalid id %q", f.ID, i, fld.ID)
		}
		if seen[fld.ID] {
			return fmt.Errorf("form %s: duplicate field id %q", f.ID, fld.ID)
		}
		seen[fld.ID] = true
	}
	for _, fld := range f.Fields {
		if fld.VisibleWhen == nil {
			continue
		}
		for _, ref := range fld.VisibleWhen.ReferencedFields() {
			if !seen[ref] {
				return fmt.Errorf("form %s: field %s visibility references unknown field %q", f.ID, fld.ID, ref)
			}
		}
	}
	return nil
}
