package resource

import "strings"

// Matches reports whether any of the given fields contains term as a
// case-insensitive substring. An empty term matches every record.
func Matches(r Record, fields []string, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, name := range fields {
		if strings.Contains(strings.ToLower(r.String(name)), needle) {
			return true
		}
	}
	return false
}

// Filter returns the records matching term, preserving their order. The
// input slice is not modified.
func Filter(records []Record, fields []string, term string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if Matches(r, fields, term) {
			out = append(out, r.Clone())
		}
	}
	return out
}
