package form

// Missing returns the required fields whose value is absent or empty, in required order.
// The rule is the same for every kind: no text, no selected option, or no date.
func Missing(required []string, values Values) []string {
	var missing []string
	for _, name := range required {
		v, ok := values[name]
		if !ok || v == nil || v.IsEmpty() {
			missing = append(missing, name)
		}
	}
	return missing
}

// ErrorFlags turns a missing-field list into per-field flags
func ErrorFlags(missing []string) map[string]bool {
	flags := make(map[string]bool, len(missing))
	for _, name := range missing {
		flags[name] = true
	}
	return flags
}
