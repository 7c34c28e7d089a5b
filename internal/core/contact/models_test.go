package contact

import (
	"testing"
	"time"

	"github.com/beaconcdp/beacon/internal/core/filter"
)

func TestRecordMergesAttributes(t *testing.T) {
	c := &Contact{
		Phone:     "+15550000001",
		FirstName: "Alice",
		Tags:      []string{"vip"},
		Attributes: map[string]interface{}{
			"plan":       "pro",
			"first_name": "shadowed",
		},
		Subscribed: true,
		CreatedAt:  time.Now(),
	}

	rec := c.Record()

	if rec["plan"] != "pro" {
		t.Errorf("custom attribute not merged: %v", rec["plan"])
	}
	// Built-in fields win over attribute keys.
	if rec["first_name"] != "Alice" {
		t.Errorf("built-in field shadowed by attribute: %v", rec["first_name"])
	}
	if rec["subscribed"] != true {
		t.Errorf("subscribed = %v", rec["subscribed"])
	}
}

func TestFieldRegistryMergesDefinitions(t *testing.T) {
	defs := []*AttributeDefinition{
		{Key: "plan", Label: "Plan", Type: filter.FieldTypeEnum, Options: []filter.FieldOption{
			{Value: "free", Label: "Free"},
			{Value: "pro", Label: "Pro"},
		}},
		{Key: "points", Label: "Points", Type: filter.FieldTypeNumber, Required: true},
	}

	registry := FieldRegistry(defs)

	if len(registry) != len(BuiltinFields)+2 {
		t.Fatalf("registry size = %d", len(registry))
	}

	plan, ok := registry.Lookup("plan")
	if !ok {
		t.Fatal("plan not in registry")
	}
	if plan.Type != filter.FieldTypeEnum || len(plan.Options) != 2 {
		t.Errorf("plan definition wrong: %+v", plan)
	}

	points, ok := registry.Lookup("points")
	if !ok {
		t.Fatal("points not in registry")
	}
	if points.Validation == nil || !points.Validation.Required {
		t.Error("required flag not carried into registry")
	}

	if _, ok := registry.Lookup("phone"); !ok {
		t.Error("built-in fields missing from merged registry")
	}
}

func TestAttributeSchema(t *testing.T) {
	defs := []*AttributeDefinition{
		{Key: "plan", Type: filter.FieldTypeEnum, Required: true, Options: []filter.FieldOption{
			{Value: "free"}, {Value: "pro"},
		}},
		{Key: "points", Type: filter.FieldTypeNumber},
		{Key: "tags_extra", Type: filter.FieldTypeArray},
	}

	schema := AttributeSchema(defs)
	if schema == nil {
		t.Fatal("schema is nil")
	}

	properties := schema["properties"].(map[string]interface{})
	if len(properties) != 3 {
		t.Errorf("expected 3 properties, got %d", len(properties))
	}

	plan := properties["plan"].(map[string]interface{})
	enum := plan["enum"].([]interface{})
	if len(enum) != 2 {
		t.Errorf("enum values = %v", enum)
	}

	required := schema["required"].([]interface{})
	if len(required) != 1 || required[0] != "plan" {
		t.Errorf("required = %v", required)
	}
}

func TestAttributeSchemaEmpty(t *testing.T) {
	if schema := AttributeSchema(nil); schema != nil {
		t.Errorf("empty definitions should yield nil schema, got %v", schema)
	}
}

// A contact record evaluated against the merged registry exercises the
// whole path a dynamic segment takes.
func TestRecordAgainstMergedRegistry(t *testing.T) {
	defs := []*AttributeDefinition{
		{Key: "plan", Type: filter.FieldTypeEnum, Options: []filter.FieldOption{{Value: "pro"}}},
	}
	registry := FieldRegistry(defs)

	c := &Contact{
		FirstName:  "Alice",
		Subscribed: true,
		Tags:       []string{"VIP"},
		Attributes: map[string]interface{}{"plan": "pro"},
	}

	groups := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "plan", Operator: filter.OpEquals, Value: "PRO"},
			{Field: "subscribed", Operator: filter.OpIsTrue},
			{Field: "tags", Operator: filter.OpIncludes, Value: "vip"},
		},
	}}

	if !filter.Evaluate(groups, c.Record(), registry) {
		t.Error("contact should match the combined expression")
	}
}
