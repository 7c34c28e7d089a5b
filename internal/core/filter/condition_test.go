package filter

import (
	"testing"
	"time"
)

var testFields = Registry{
	{Key: "name", Label: "Name", Type: FieldTypeString},
	{Key: "score", Label: "Score", Type: FieldTypeNumber},
	{Key: "created", Label: "Created", Type: FieldTypeDate},
	{Key: "subscribed", Label: "Subscribed", Type: FieldTypeBoolean},
	{Key: "status", Label: "Status", Type: FieldTypeEnum, Options: []FieldOption{
		{Value: "active", Label: "Active"},
		{Value: "inactive", Label: "Inactive"},
	}},
	{Key: "tags", Label: "Tags", Type: FieldTypeArray},
}

func TestStringComparisons(t *testing.T) {
	rec := Record{"name": "bob"}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"equals case-insensitive", Condition{Field: "name", Operator: OpEquals, Value: "Bob"}, true},
		{"equals mismatch", Condition{Field: "name", Operator: OpEquals, Value: "alice"}, false},
		{"not_equals", Condition{Field: "name", Operator: OpNotEquals, Value: "alice"}, true},
		{"contains", Condition{Field: "name", Operator: OpContains, Value: "OB"}, true},
		{"not_contains", Condition{Field: "name", Operator: OpNotContains, Value: "zz"}, true},
		{"starts_with", Condition{Field: "name", Operator: OpStartsWith, Value: "BO"}, true},
		{"ends_with", Condition{Field: "name", Operator: OpEndsWith, Value: "ob"}, true},
		{"is_not_empty", Condition{Field: "name", Operator: OpIsNotEmpty}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCondition(tt.cond, rec, testFields); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringIsEmptyTrimsWhitespace(t *testing.T) {
	rec := Record{"name": "   "}
	cond := Condition{Field: "name", Operator: OpIsEmpty}
	if !EvaluateCondition(cond, rec, testFields) {
		t.Error("whitespace-only value should be empty")
	}
}

func TestNumberComparisons(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		cond Condition
		want bool
	}{
		{"equals", Record{"score": 10.0}, Condition{Field: "score", Operator: OpEquals, Value: 10}, true},
		{"equals string coercion", Record{"score": "10"}, Condition{Field: "score", Operator: OpEquals, Value: 10}, true},
		{"greater_than", Record{"score": 11.0}, Condition{Field: "score", Operator: OpGreaterThan, Value: 10}, true},
		{"greater_than false", Record{"score": 9.0}, Condition{Field: "score", Operator: OpGreaterThan, Value: 10}, false},
		{"less_than", Record{"score": 9.0}, Condition{Field: "score", Operator: OpLessThan, Value: 10}, true},
		{"greater_equal boundary", Record{"score": 10.0}, Condition{Field: "score", Operator: OpGreaterEqual, Value: 10}, true},
		{"less_equal boundary", Record{"score": 10.0}, Condition{Field: "score", Operator: OpLessEqual, Value: 10}, true},
		{"unparsable record value", Record{"score": "abc"}, Condition{Field: "score", Operator: OpGreaterThan, Value: 10}, false},
		{"unparsable condition value", Record{"score": 10.0}, Condition{Field: "score", Operator: OpGreaterThan, Value: "abc"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCondition(tt.cond, tt.rec, testFields); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumberZeroIsNotEmpty(t *testing.T) {
	rec := Record{"score": 0}
	if !EvaluateCondition(Condition{Field: "score", Operator: OpIsNotEmpty, Value: ""}, rec, testFields) {
		t.Error("zero should be a valid, non-empty number")
	}
	if EvaluateCondition(Condition{Field: "score", Operator: OpIsEmpty}, rec, testFields) {
		t.Error("zero should not report empty")
	}
}

func TestNumberMissingIsEmpty(t *testing.T) {
	rec := Record{}
	if !EvaluateCondition(Condition{Field: "score", Operator: OpIsEmpty}, rec, testFields) {
		t.Error("missing value should report empty")
	}
}

func TestDateBefore(t *testing.T) {
	cond := Condition{Field: "created", Operator: OpBefore, Value: "2024-06-01"}

	if !EvaluateCondition(cond, Record{"created": "2024-05-31"}, testFields) {
		t.Error("2024-05-31 should be before 2024-06-01")
	}
	// Same calendar day is not before.
	if EvaluateCondition(cond, Record{"created": "2024-06-01"}, testFields) {
		t.Error("2024-06-01 should not be before 2024-06-01")
	}
}

func TestDateEqualsDayGranularity(t *testing.T) {
	rec := Record{"created": "2024-06-01T15:30:00Z"}
	cond := Condition{Field: "created", Operator: OpEquals, Value: "2024-06-01"}
	if !EvaluateCondition(cond, rec, testFields) {
		t.Error("equals should compare at day granularity, not timestamp")
	}
}

func TestDateBetween(t *testing.T) {
	cond := Condition{
		Field:    "created",
		Operator: OpBetween,
		Value:    []any{"2024-06-01", "2024-06-30"},
	}

	tests := []struct {
		created string
		want    bool
	}{
		{"2024-06-15", true},
		{"2024-06-01", true},
		{"2024-06-30", true},
		{"2024-05-31", false},
		{"2024-07-01", false},
	}
	for _, tt := range tests {
		got := EvaluateCondition(cond, Record{"created": tt.created}, testFields)
		if got != tt.want {
			t.Errorf("between for %s: got %v, want %v", tt.created, got, tt.want)
		}
	}
}

func TestDateInLast(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -2)
	old := time.Now().AddDate(0, 0, -30)
	cond := Condition{Field: "created", Operator: OpInLast, Value: 7}

	if !EvaluateCondition(cond, Record{"created": recent}, testFields) {
		t.Error("2 days ago should be in the last 7 days")
	}
	if EvaluateCondition(cond, Record{"created": old}, testFields) {
		t.Error("30 days ago should not be in the last 7 days")
	}
}

func TestDateInNext(t *testing.T) {
	soon := time.Now().AddDate(0, 0, 3)
	past := time.Now().AddDate(0, 0, -1)
	cond := Condition{Field: "created", Operator: OpInNext, Value: 7}

	if !EvaluateCondition(cond, Record{"created": soon}, testFields) {
		t.Error("3 days ahead should be in the next 7 days")
	}
	if EvaluateCondition(cond, Record{"created": past}, testFields) {
		t.Error("yesterday should not be in the next 7 days")
	}
}

func TestDateUnparsableResolvesFalse(t *testing.T) {
	rec := Record{"created": "not a date"}
	for _, op := range []Operator{OpEquals, OpBefore, OpAfter} {
		if EvaluateCondition(Condition{Field: "created", Operator: op, Value: "2024-06-01"}, rec, testFields) {
			t.Errorf("%s on unparsable date should be false", op)
		}
	}
	if !EvaluateCondition(Condition{Field: "created", Operator: OpIsEmpty}, rec, testFields) {
		t.Error("unparsable date should report empty")
	}
}

func TestBooleanTruthiness(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		op   Operator
		want bool
	}{
		{"true is_true", Record{"subscribed": true}, OpIsTrue, true},
		{"false is_false", Record{"subscribed": false}, OpIsFalse, true},
		{"missing is_false", Record{}, OpIsFalse, true},
		{"string true", Record{"subscribed": "true"}, OpIsTrue, true},
		{"string false", Record{"subscribed": "false"}, OpIsFalse, true},
		{"nonzero number", Record{"subscribed": 1.0}, OpIsTrue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Condition value is ignored for boolean fields.
			cond := Condition{Field: "subscribed", Operator: tt.op, Value: "ignored"}
			if got := EvaluateCondition(cond, tt.rec, testFields); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrayIncludesExcludes(t *testing.T) {
	rec := Record{"tags": []any{"vip", "Beta"}}

	if !EvaluateCondition(Condition{Field: "tags", Operator: OpIncludes, Value: "beta"}, rec, testFields) {
		t.Error("includes should match case-insensitively")
	}
	if !EvaluateCondition(Condition{Field: "tags", Operator: OpExcludes, Value: "churned"}, rec, testFields) {
		t.Error("excludes should match when value is absent")
	}
	if !EvaluateCondition(Condition{Field: "tags", Operator: OpIsNotEmpty}, rec, testFields) {
		t.Error("non-empty array should report not empty")
	}
}

func TestArrayNonArrayFallback(t *testing.T) {
	rec := Record{"tags": "not-an-array"}

	if !EvaluateCondition(Condition{Field: "tags", Operator: OpIsEmpty}, rec, testFields) {
		t.Error("non-array value should behave as empty array")
	}
	for _, op := range []Operator{OpIncludes, OpExcludes, OpIsNotEmpty} {
		if EvaluateCondition(Condition{Field: "tags", Operator: op, Value: "vip"}, rec, testFields) {
			t.Errorf("%s on non-array should be false", op)
		}
	}
}

func TestEnumComparisons(t *testing.T) {
	rec := Record{"status": "Active"}
	if !EvaluateCondition(Condition{Field: "status", Operator: OpEquals, Value: "active"}, rec, testFields) {
		t.Error("enum equals should be case-insensitive")
	}
}

func TestMissingFieldDefinitionFallsBackToString(t *testing.T) {
	rec := Record{"nickname": "Ace"}
	cond := Condition{Field: "nickname", Operator: OpEquals, Value: "ace"}
	if !EvaluateCondition(cond, rec, testFields) {
		t.Error("unknown field should be compared as a string")
	}
}

func TestValueTypeOverride(t *testing.T) {
	rec := Record{"points": "42"}
	cond := Condition{Field: "points", Operator: OpGreaterThan, Value: 40, ValueType: FieldTypeNumber}
	if !EvaluateCondition(cond, rec, testFields) {
		t.Error("value_type override should force numeric comparison")
	}
}

func TestUnknownOperatorFailsClosed(t *testing.T) {
	rec := Record{"score": 10.0}
	// contains is not a number operator
	cond := Condition{Field: "score", Operator: OpContains, Value: "1"}
	if EvaluateCondition(cond, rec, testFields) {
		t.Error("mismatched operator should evaluate to false, not match")
	}
}

func TestConditionDoesNotMutateRecord(t *testing.T) {
	rec := Record{"name": "Bob", "score": 5.0}
	EvaluateCondition(Condition{Field: "name", Operator: OpEquals, Value: "bob"}, rec, testFields)

	if rec["name"] != "Bob" || rec["score"] != 5.0 {
		t.Error("evaluation must not mutate the record")
	}
}
