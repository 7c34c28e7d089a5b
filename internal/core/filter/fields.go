package filter

// FieldType is the semantic type of a filterable field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeArray   FieldType = "array"
)

// FieldOption is one legal value for an enum field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldValidation carries advisory constraints for UI-side validation.
// The evaluator itself does not enforce them.
type FieldValidation struct {
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
}

// FieldDefinition describes one filterable field. Key must match the
// property name on the records being filtered.
type FieldDefinition struct {
	Key        string           `json:"key"`
	Label      string           `json:"label"`
	Type       FieldType        `json:"type"`
	Options    []FieldOption    `json:"options,omitempty"`
	Validation *FieldValidation `json:"validation,omitempty"`
}

// Registry is the set of field definitions a filter expression is
// evaluated against. A missing key is not an error; the evaluator falls
// back to string comparison for unknown fields.
type Registry []FieldDefinition

// Lookup returns the definition for key, if one exists.
func (r Registry) Lookup(key string) (FieldDefinition, bool) {
	for _, def := range r {
		if def.Key == key {
			return def, true
		}
	}
	return FieldDefinition{}, false
}
