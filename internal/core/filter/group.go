package filter

// GroupLogic is reserved for OR-within-group support. Evaluation today is
// always AND across a group's conditions.
type GroupLogic string

const (
	LogicAnd GroupLogic = "and"
	LogicOr  GroupLogic = "or"
)

// Group is an AND-combination of conditions. A filter expression is a
// slice of groups combined with OR: a record matches when at least one
// group matches.
type Group struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Logic      GroupLogic  `json:"logic,omitempty"`
	Conditions []Condition `json:"conditions"`
}

// EvaluateGroup reports whether every condition in the group matches the
// record. An empty group vacuously matches, so a freshly added group does
// not exclude all records. Conditions missing a field or operator are
// mid-edit UI rows and are skipped.
func EvaluateGroup(g Group, rec Record, fields Registry) bool {
	for _, cond := range g.Conditions {
		if cond.Field == "" || cond.Operator == "" {
			continue
		}
		if !EvaluateCondition(cond, rec, fields) {
			return false
		}
	}
	return true
}

// Evaluate reports whether the record matches the full expression: OR
// across groups. An empty expression matches everything.
func Evaluate(groups []Group, rec Record, fields Registry) bool {
	if len(groups) == 0 {
		return true
	}
	for _, g := range groups {
		if EvaluateGroup(g, rec, fields) {
			return true
		}
	}
	return false
}
