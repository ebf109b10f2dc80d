package metadata

import (
	"fmt"
	"strings"

	"formrules/internal/instrument"
)

// StoreDataType is the storage primitive a field's answers are kept as.
type StoreDataType int

const (
	StoreNone StoreDataType = iota
	StoreString
	StoreNumber
	StoreBoolean
	StoreList
)

var storeDataTypeNames = [...]string{
	StoreNone:    "NONE",
	StoreString:  "STRING",
	StoreNumber:  "NUMBER",
	StoreBoolean: "BOOLEAN",
	StoreList:    "LIST",
}

// StoreDataTypes returns the enumeration in declaration order.
func StoreDataTypes() []StoreDataType {
	return []StoreDataType{StoreNone, StoreString, StoreNumber, StoreBoolean, StoreList}
}

func (t StoreDataType) String() string {
	if t < 0 || int(t) >= len(storeDataTypeNames) {
		return fmt.Sprintf("StoreDataType(%d)", int(t))
	}
	return storeDataTypeNames[t]
}

// ParseStoreDataType accepts the upper or lower case name.
func ParseStoreDataType(s string) (StoreDataType, error) {
	for i, name := range storeDataTypeNames {
		if strings.EqualFold(s, name) {
			return StoreDataType(i), nil
		}
	}
	return StoreNone, fmt.Errorf("unknown store data type %q", s)
}

func (t StoreDataType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *StoreDataType) UnmarshalText(b []byte) error {
	v, err := ParseStoreDataType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

var storeTypeByField = map[FieldType]StoreDataType{
	FieldText:              StoreString,
	FieldMemo:              StoreString,
	FieldHidden:            StoreString,
	FieldEmail:             StoreString,
	FieldSelect:            StoreString,
	FieldMultiSelect:       StoreString,
	FieldRadio:             StoreString,
	FieldTable:             StoreString,
	FieldTime:              StoreString,
	FieldDate:              StoreString,
	FieldDateWithoutTime:   StoreString,
	FieldAutocomplete:      StoreString,
	FieldMultiAutocomplete: StoreString,
	FieldFile:              StoreString,
	FieldToggle:            StoreBoolean,
	FieldChecklist:         StoreList,
	FieldNumber:            StoreNumber,
	FieldHTML:              StoreNone,
	FieldLogo:              StoreNone,
	FieldSection:           StoreNone,
	FieldLabel:             StoreNone,
	FieldSubmit:            StoreNone,
}

// Classifier maps declared field types to storage types. Unknown types are
// reported and classified as StoreNone.
type Classifier struct {
	reporter instrument.Reporter
}

func NewClassifier(reporter instrument.Reporter) *Classifier {
	if reporter == nil {
		reporter = instrument.NoopReporter{}
	}
	return &Classifier{reporter: reporter}
}

func (c *Classifier) Classify(t FieldType) StoreDataType {
	if st, ok := storeTypeByField[t]; ok {
		return st
	}
	msg := "unresolved field type"
	if t == "" {
		msg = "missing field type"
	}
	c.reporter.Report(instrument.Diagnostic{
		Component: "classifier",
		Message:   msg,
		Fields:    map[string]any{"type": string(t)},
	})
	return StoreNone
}
