package app

import "strings"

const maxTracedQueryLength = 512

// Collapses whitespace so multi-line queries read as one span attribute,
// truncated to keep export payloads bounded.
func formatDBQueryForTrace(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	normalized := strings.Join(fields, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
