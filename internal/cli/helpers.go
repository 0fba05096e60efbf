package cli

// truncate shortens s to max bytes with an ellipsis. Callers pass
// normalized artifact names, which are ASCII.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
