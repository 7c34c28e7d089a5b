package filter

// Apply filters an in-memory slice of records against an expression,
// returning the matching subset. It never mutates its inputs. This is a
// linear scan intended for client-facing result sets of bounded size, not
// a query planner.
func Apply(records []Record, groups []Group, fields Registry) []Record {
	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if Evaluate(groups, rec, fields) {
			matched = append(matched, rec)
		}
	}
	return matched
}
