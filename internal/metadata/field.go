package metadata

// FieldType is the declared kind of a form field.
type FieldType string

const (
	FieldText              FieldType = "text"
	FieldMemo              FieldType = "memo"
	FieldHidden            FieldType = "hidden"
	FieldEmail             FieldType = "email"
	FieldSelect            FieldType = "select"
	FieldMultiSelect       FieldType = "multiselect"
	FieldRadio             FieldType = "radio"
	FieldTable             FieldType = "table"
	FieldTime              FieldType = "time"
	FieldDate              FieldType = "date"
	FieldDateWithoutTime   FieldType = "date_without_time"
	FieldAutocomplete      FieldType = "autocomplete"
	FieldMultiAutocomplete FieldType = "multi_autocomplete"
	FieldFile              FieldType = "file"
	FieldToggle            FieldType = "toggle"
	FieldChecklist         FieldType = "checklist"
	FieldNumber            FieldType = "number"
	FieldHTML              FieldType = "html"
	FieldLogo              FieldType = "logo"
	FieldSection           FieldType = "section"
	FieldLabel             FieldType = "label"
	FieldSubmit            FieldType = "submit"
)

// FieldTypes returns every known field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldText, FieldMemo, FieldHidden, FieldEmail,
		FieldSelect, FieldMultiSelect, FieldRadio, FieldTable,
		FieldTime, FieldDate, FieldDateWithoutTime,
		FieldAutocomplete, FieldMultiAutocomplete, FieldFile,
		FieldToggle, FieldChecklist, FieldNumber,
		FieldHTML, FieldLogo, FieldSection, FieldLabel, FieldSubmit,
	}
}

type Field struct {
	ID          string     `json:"id" yaml:"id"`
	Type        FieldType  `json:"type" yaml:"type"`
	Label       string     `json:"label,omitempty" yaml:"label,omitempty"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []string   `json:"options,omitempty" yaml:"options,omitempty"`
	VisibleWhen *FieldRule `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"` // nil means always visible
}
