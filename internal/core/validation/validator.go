package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type SchemaErrors struct {
	Errors []FieldError `json:"errors"`
}

func (e *SchemaErrors) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validator checks arbitrary JSON documents (contact attributes, agent
// settings) against JSON schemas.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(data map[string]interface{}, schema map[string]interface{}) error {
	if len(schema) == 0 {
		// No schema defined, allow any data
		return nil
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return err
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(dataJSON),
	)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var fieldErrors []FieldError
		for _, desc := range result.Errors() {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   desc.Field(),
				Message: desc.Description(),
			})
		}
		return &SchemaErrors{Errors: fieldErrors}
	}

	return nil
}

// ValidatePartial validates a partial update: the required constraint is
// dropped so merge payloads may omit fields.
func (v *Validator) ValidatePartial(data map[string]interface{}, schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}

	partialSchema := make(map[string]interface{})
	for k, val := range schema {
		if k != "required" {
			partialSchema[k] = val
		}
	}

	return v.Validate(data, partialSchema)
}

func IsSchemaError(err error) bool {
	var se *SchemaErrors
	return errors.As(err, &se)
}

func GetSchemaErrors(err error) *SchemaErrors {
	var se *SchemaErrors
	if errors.As(err, &se) {
		return se
	}
	return nil
}
