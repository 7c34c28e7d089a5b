package filter

// Operator is a comparison operator in a filter condition.
type Operator string

const (
	OpEquals       Operator = "equals"
	OpNotEquals    Operator = "not_equals"
	OpContains     Operator = "contains"
	OpNotContains  Operator = "not_contains"
	OpStartsWith   Operator = "starts_with"
	OpEndsWith     Operator = "ends_with"
	OpIsEmpty      Operator = "is_empty"
	OpIsNotEmpty   Operator = "is_not_empty"
	OpGreaterThan  Operator = "greater_than"
	OpLessThan     Operator = "less_than"
	OpGreaterEqual Operator = "greater_equal"
	OpLessEqual    Operator = "less_equal"
	OpBefore       Operator = "before"
	OpAfter        Operator = "after"
	OpBetween      Operator = "between"
	OpInLast       Operator = "in_last"
	OpInNext       Operator = "in_next"
	OpIsTrue       Operator = "is_true"
	OpIsFalse      Operator = "is_false"
	OpIncludes     Operator = "includes"
	OpExcludes     Operator = "excludes"
)

// operatorCatalog maps each field type to its legal operators, in the
// order they should appear in operator pickers.
var operatorCatalog = map[FieldType][]Operator{
	FieldTypeString: {
		OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpStartsWith, OpEndsWith, OpIsEmpty, OpIsNotEmpty,
	},
	FieldTypeNumber: {
		OpEquals, OpNotEquals, OpGreaterThan, OpLessThan,
		OpGreaterEqual, OpLessEqual, OpIsEmpty, OpIsNotEmpty,
	},
	FieldTypeDate: {
		OpEquals, OpNotEquals, OpBefore, OpAfter,
		OpBetween, OpInLast, OpInNext, OpIsEmpty, OpIsNotEmpty,
	},
	FieldTypeBoolean: {
		OpIsTrue, OpIsFalse,
	},
	FieldTypeEnum: {
		OpEquals, OpNotEquals, OpIsEmpty, OpIsNotEmpty,
	},
	FieldTypeArray: {
		OpIncludes, OpExcludes, OpIsEmpty, OpIsNotEmpty,
	},
}

// OperatorsForType returns the legal operators for a field type. Unknown
// types get the string operator set, matching the evaluator's fallback.
func OperatorsForType(t FieldType) []Operator {
	ops, ok := operatorCatalog[t]
	if !ok {
		ops = operatorCatalog[FieldTypeString]
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// ValidOperator reports whether op is legal for field type t.
func ValidOperator(t FieldType, op Operator) bool {
	ops, ok := operatorCatalog[t]
	if !ok {
		ops = operatorCatalog[FieldTypeString]
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}
