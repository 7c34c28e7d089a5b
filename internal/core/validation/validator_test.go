package validation

import "testing"

var contactSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"plan":  map[string]interface{}{"type": "string", "enum": []interface{}{"free", "pro"}},
		"score": map[string]interface{}{"type": "number"},
	},
	"required": []interface{}{"plan"},
}

func TestValidateAcceptsConformingData(t *testing.T) {
	v := NewValidator()
	data := map[string]interface{}{"plan": "pro", "score": 42.0}

	if err := v.Validate(data, contactSchema); err != nil {
		t.Errorf("expected valid data to pass, got %v", err)
	}
}

func TestValidateRejectsBadEnum(t *testing.T) {
	v := NewValidator()
	data := map[string]interface{}{"plan": "enterprise"}

	err := v.Validate(data, contactSchema)
	if err == nil {
		t.Fatal("expected validation error for out-of-enum value")
	}
	if !IsSchemaError(err) {
		t.Errorf("expected a SchemaErrors, got %T", err)
	}
	if se := GetSchemaErrors(err); se == nil || len(se.Errors) == 0 {
		t.Error("expected field-level error details")
	}
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	v := NewValidator()
	data := map[string]interface{}{"score": 1.0}

	if err := v.Validate(data, contactSchema); err == nil {
		t.Error("expected error when required field is missing")
	}
}

func TestValidatePartialDropsRequired(t *testing.T) {
	v := NewValidator()
	data := map[string]interface{}{"score": 1.0}

	if err := v.ValidatePartial(data, contactSchema); err != nil {
		t.Errorf("partial validation should not enforce required, got %v", err)
	}
}

func TestValidateNoSchemaAllowsAnything(t *testing.T) {
	v := NewValidator()
	data := map[string]interface{}{"anything": true}

	if err := v.Validate(data, nil); err != nil {
		t.Errorf("nil schema should allow any data, got %v", err)
	}
}

func TestIsSchemaErrorOnOtherError(t *testing.T) {
	if IsSchemaError(errTest) {
		t.Error("plain errors should not be schema errors")
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }
