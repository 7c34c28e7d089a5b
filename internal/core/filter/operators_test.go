package filter

import "testing"

func TestOperatorsForType(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		want      []Operator
	}{
		{FieldTypeString, []Operator{OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpIsEmpty, OpIsNotEmpty}},
		{FieldTypeNumber, []Operator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual, OpIsEmpty, OpIsNotEmpty}},
		{FieldTypeDate, []Operator{OpEquals, OpNotEquals, OpBefore, OpAfter, OpBetween, OpInLast, OpInNext, OpIsEmpty, OpIsNotEmpty}},
		{FieldTypeBoolean, []Operator{OpIsTrue, OpIsFalse}},
		{FieldTypeEnum, []Operator{OpEquals, OpNotEquals, OpIsEmpty, OpIsNotEmpty}},
		{FieldTypeArray, []Operator{OpIncludes, OpExcludes, OpIsEmpty, OpIsNotEmpty}},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			got := OperatorsForType(tt.fieldType)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d operators, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("operator %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOperatorsForUnknownTypeFallsBackToString(t *testing.T) {
	got := OperatorsForType(FieldType("geo"))
	want := OperatorsForType(FieldTypeString)
	if len(got) != len(want) {
		t.Errorf("unknown type should use the string operator set")
	}
}

func TestValidOperator(t *testing.T) {
	if !ValidOperator(FieldTypeString, OpContains) {
		t.Error("contains should be valid for strings")
	}
	if ValidOperator(FieldTypeBoolean, OpContains) {
		t.Error("contains should not be valid for booleans")
	}
	if !ValidOperator(FieldTypeDate, OpBetween) {
		t.Error("between should be valid for dates")
	}
}

func TestOperatorsForTypeReturnsCopy(t *testing.T) {
	ops := OperatorsForType(FieldTypeString)
	ops[0] = Operator("mutated")

	if OperatorsForType(FieldTypeString)[0] != OpEquals {
		t.Error("callers must not be able to mutate the catalog")
	}
}

func TestRegistryLookup(t *testing.T) {
	def, ok := testFields.Lookup("status")
	if !ok {
		t.Fatal("expected status field to exist")
	}
	if def.Type != FieldTypeEnum {
		t.Errorf("status type: got %q, want enum", def.Type)
	}
	if len(def.Options) != 2 {
		t.Errorf("status options: got %d, want 2", len(def.Options))
	}

	if _, ok := testFields.Lookup("missing"); ok {
		t.Error("lookup of unknown key should report absence")
	}
}
