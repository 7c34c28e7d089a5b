package filter

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one row being filtered. Values come straight from JSON or
// database scans, so every comparator coerces defensively.
type Record map[string]any

// Condition is one atomic predicate: field, operator, value.
type Condition struct {
	Field    string    `json:"field"`
	Operator Operator  `json:"operator"`
	Value    any       `json:"value,omitempty"`
	// ValueType overrides the field's declared type when the field has no
	// definition in the registry.
	ValueType FieldType `json:"value_type,omitempty"`
}

// EvaluateCondition evaluates one condition against a record. It never
// panics: a failure inside a single condition is logged and treated as a
// non-match, so one malformed condition cannot abort the rest of the
// expression.
func EvaluateCondition(cond Condition, rec Record, fields Registry) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("filter: condition on field %q recovered: %v", cond.Field, r)
			matched = false
		}
	}()

	value := rec[cond.Field]

	switch effectiveType(cond, fields) {
	case FieldTypeNumber:
		return compareNumber(cond.Operator, value, cond.Value)
	case FieldTypeDate:
		return compareDate(cond.Operator, value, cond.Value)
	case FieldTypeBoolean:
		return compareBoolean(cond.Operator, value)
	case FieldTypeArray:
		return compareArray(cond.Operator, value, cond.Value)
	default:
		// string, enum, and anything unrecognized
		return compareString(cond.Operator, value, cond.Value)
	}
}

// effectiveType resolves the type a condition is evaluated under: the
// field's registry definition wins, then the condition's own ValueType,
// then string.
func effectiveType(cond Condition, fields Registry) FieldType {
	if def, ok := fields.Lookup(cond.Field); ok {
		return def.Type
	}
	if cond.ValueType != "" {
		return cond.ValueType
	}
	return FieldTypeString
}

func compareString(op Operator, recordValue, condValue any) bool {
	got := strings.ToLower(coerceString(recordValue))
	want := strings.ToLower(coerceString(condValue))

	switch op {
	case OpEquals:
		return got == want
	case OpNotEquals:
		return got != want
	case OpContains:
		return strings.Contains(got, want)
	case OpNotContains:
		return !strings.Contains(got, want)
	case OpStartsWith:
		return strings.HasPrefix(got, want)
	case OpEndsWith:
		return strings.HasSuffix(got, want)
	case OpIsEmpty:
		return strings.TrimSpace(got) == ""
	case OpIsNotEmpty:
		return strings.TrimSpace(got) != ""
	default:
		warnOperator(op, FieldTypeString)
		return false
	}
}

func compareNumber(op Operator, recordValue, condValue any) bool {
	got, gotOK := coerceNumber(recordValue)

	// Emptiness means absent or unparsable, never zero.
	switch op {
	case OpIsEmpty:
		return !gotOK
	case OpIsNotEmpty:
		return gotOK
	}

	want, wantOK := coerceNumber(condValue)
	if !gotOK || !wantOK {
		return false
	}

	switch op {
	case OpEquals:
		return got == want
	case OpNotEquals:
		return got != want
	case OpGreaterThan:
		return got > want
	case OpLessThan:
		return got < want
	case OpGreaterEqual:
		return got >= want
	case OpLessEqual:
		return got <= want
	default:
		warnOperator(op, FieldTypeNumber)
		return false
	}
}

func compareDate(op Operator, recordValue, condValue any) bool {
	got, gotOK := coerceTime(recordValue)

	switch op {
	case OpIsEmpty:
		return !gotOK
	case OpIsNotEmpty:
		return gotOK
	}
	if !gotOK {
		return false
	}

	switch op {
	case OpEquals, OpNotEquals:
		want, ok := coerceTime(condValue)
		if !ok {
			return false
		}
		// Calendar-day granularity, not timestamp equality.
		same := truncateToDay(got).Equal(truncateToDay(want))
		if op == OpEquals {
			return same
		}
		return !same
	case OpBefore:
		want, ok := coerceTime(condValue)
		return ok && truncateToDay(got).Before(truncateToDay(want))
	case OpAfter:
		want, ok := coerceTime(condValue)
		return ok && truncateToDay(got).After(truncateToDay(want))
	case OpBetween:
		from, to, ok := coerceTimeRange(condValue)
		if !ok {
			return false
		}
		day := truncateToDay(got)
		return !day.Before(truncateToDay(from)) && !day.After(truncateToDay(to))
	case OpInLast:
		days, ok := coerceNumber(condValue)
		if !ok {
			return false
		}
		now := time.Now()
		cutoff := now.AddDate(0, 0, -int(days))
		return !got.Before(cutoff) && !got.After(now)
	case OpInNext:
		days, ok := coerceNumber(condValue)
		if !ok {
			return false
		}
		now := time.Now()
		cutoff := now.AddDate(0, 0, int(days))
		return !got.Before(now) && !got.After(cutoff)
	default:
		warnOperator(op, FieldTypeDate)
		return false
	}
}

// compareBoolean tests the record value only; the condition's value field
// is carried by is_true / is_false in the operator itself.
func compareBoolean(op Operator, recordValue any) bool {
	truthy := coerceBool(recordValue)

	switch op {
	case OpIsTrue:
		return truthy
	case OpIsFalse:
		return !truthy
	default:
		warnOperator(op, FieldTypeBoolean)
		return false
	}
}

func compareArray(op Operator, recordValue, condValue any) bool {
	items, isArray := coerceStringSlice(recordValue)
	if !isArray {
		// A non-array record value behaves as the empty array.
		return op == OpIsEmpty
	}

	switch op {
	case OpIsEmpty:
		return len(items) == 0
	case OpIsNotEmpty:
		return len(items) > 0
	case OpIncludes, OpExcludes:
		wanted, isMany := coerceStringSlice(condValue)
		if !isMany {
			wanted = []string{coerceString(condValue)}
		}
		found := false
		for _, w := range wanted {
			if containsFold(items, w) {
				found = true
				break
			}
		}
		if op == OpIncludes {
			return found
		}
		return !found
	default:
		warnOperator(op, FieldTypeArray)
		return false
	}
}

func containsFold(items []string, want string) bool {
	for _, item := range items {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}

func warnOperator(op Operator, t FieldType) {
	log.Printf("filter: operator %q is not valid for %s fields, treating as no match", op, t)
}

// Coercion helpers

func coerceString(v any) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(v)), 64)
		return f, err == nil && !math.IsNaN(f)
	}
}

// dateLayouts are tried in order when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		return time.Unix(int64(t), 0), true
	case int64:
		return time.Unix(t, 0), true
	default:
		return time.Time{}, false
	}
}

// coerceTimeRange accepts a two-element slice of date values for between.
func coerceTimeRange(v any) (from, to time.Time, ok bool) {
	var parts []any
	switch r := v.(type) {
	case []any:
		parts = r
	case []string:
		for _, s := range r {
			parts = append(parts, s)
		}
	default:
		return time.Time{}, time.Time{}, false
	}
	if len(parts) < 2 {
		return time.Time{}, time.Time{}, false
	}
	from, fromOK := coerceTime(parts[0])
	to, toOK := coerceTime(parts[1])
	return from, to, fromOK && toOK
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
		return strings.TrimSpace(b) != ""
	case float64:
		return b != 0
	case int:
		return b != 0
	default:
		return true
	}
}

// coerceStringSlice reports whether v is array-shaped and, if so, its
// elements as strings.
func coerceStringSlice(v any) ([]string, bool) {
	switch arr := v.(type) {
	case []string:
		return arr, true
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			out = append(out, coerceString(item))
		}
		return out, true
	default:
		return nil, false
	}
}
