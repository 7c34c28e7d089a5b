package filter

import (
	"reflect"
	"testing"
)

func TestApplyEndToEnd(t *testing.T) {
	records := []Record{
		{"name": "Alice", "status": "active"},
		{"name": "Bob", "status": "inactive"},
	}
	groups := []Group{
		{Conditions: []Condition{{Field: "status", Operator: OpEquals, Value: "active"}}},
	}

	got := Apply(records, groups, testFields)
	if len(got) != 1 || got[0]["name"] != "Alice" {
		t.Errorf("expected only Alice, got %v", got)
	}
}

func TestApplyOrAcrossGroups(t *testing.T) {
	records := []Record{
		{"name": "Alice", "status": "active"},
		{"name": "Bob", "status": "inactive"},
	}
	groups := []Group{
		{Conditions: []Condition{{Field: "status", Operator: OpEquals, Value: "active"}}},
		{Conditions: []Condition{{Field: "name", Operator: OpContains, Value: "Bob"}}},
	}

	got := Apply(records, groups, testFields)
	if len(got) != 2 {
		t.Errorf("expected both records to match, got %d", len(got))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	records := []Record{
		{"name": "Alice", "status": "active"},
		{"name": "Bob", "status": "inactive"},
		{"name": "Carol", "status": "active"},
	}
	groups := []Group{
		{Conditions: []Condition{{Field: "status", Operator: OpEquals, Value: "active"}}},
	}

	once := Apply(records, groups, testFields)
	twice := Apply(once, groups, testFields)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering an already-filtered set should be a no-op: %v vs %v", once, twice)
	}
}

func TestApplyEmptyExpressionReturnsAll(t *testing.T) {
	records := []Record{{"name": "a"}, {"name": "b"}}
	got := Apply(records, nil, testFields)
	if len(got) != len(records) {
		t.Errorf("empty expression should keep all records, got %d", len(got))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := []Record{{"name": "Alice"}, {"name": "Bob"}}
	Apply(records, []Group{
		{Conditions: []Condition{{Field: "name", Operator: OpEquals, Value: "alice"}}},
	}, testFields)

	if len(records) != 2 || records[0]["name"] != "Alice" || records[1]["name"] != "Bob" {
		t.Error("Apply must not mutate the input slice")
	}
}
