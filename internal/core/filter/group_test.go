package filter

import "testing"

func TestEmptyGroupMatchesEverything(t *testing.T) {
	rec := Record{"name": "alice"}
	if !EvaluateGroup(Group{}, rec, testFields) {
		t.Error("group with zero conditions should vacuously match")
	}
}

func TestEmptyExpressionMatchesEverything(t *testing.T) {
	rec := Record{"name": "alice"}
	if !Evaluate(nil, rec, testFields) {
		t.Error("expression with zero groups should match any record")
	}
}

func TestGroupAndSemantics(t *testing.T) {
	rec := Record{"name": "alice", "status": "active"}

	both := Group{Conditions: []Condition{
		{Field: "name", Operator: OpEquals, Value: "alice"},
		{Field: "status", Operator: OpEquals, Value: "active"},
	}}
	if !EvaluateGroup(both, rec, testFields) {
		t.Error("group should match when every condition matches")
	}

	oneFails := Group{Conditions: []Condition{
		{Field: "name", Operator: OpEquals, Value: "alice"},
		{Field: "status", Operator: OpEquals, Value: "inactive"},
	}}
	if EvaluateGroup(oneFails, rec, testFields) {
		t.Error("group should not match when any condition fails")
	}
}

func TestMidEditConditionsAreSkipped(t *testing.T) {
	rec := Record{"name": "alice"}

	g := Group{Conditions: []Condition{
		{Field: "", Operator: OpEquals, Value: "x"},
		{Field: "name", Operator: "", Value: "x"},
		{Field: "name", Operator: OpEquals, Value: "alice"},
	}}
	if !EvaluateGroup(g, rec, testFields) {
		t.Error("conditions missing field or operator should be skipped, not fail the group")
	}
}

func TestExpressionOrComposition(t *testing.T) {
	g1 := Group{Conditions: []Condition{{Field: "status", Operator: OpEquals, Value: "active"}}}
	g2 := Group{Conditions: []Condition{{Field: "name", Operator: OpContains, Value: "bob"}}}
	groups := []Group{g1, g2}

	records := []Record{
		{"name": "Alice", "status": "active"},
		{"name": "Bob", "status": "inactive"},
		{"name": "Carol", "status": "inactive"},
	}

	// Evaluate(groups) must equal EvaluateGroup(g1) || EvaluateGroup(g2).
	for _, rec := range records {
		want := EvaluateGroup(g1, rec, testFields) || EvaluateGroup(g2, rec, testFields)
		if got := Evaluate(groups, rec, testFields); got != want {
			t.Errorf("record %v: Evaluate=%v, or-of-groups=%v", rec, got, want)
		}
	}

	if Evaluate(groups, records[2], testFields) {
		t.Error("Carol matches neither group and should be excluded")
	}
}
