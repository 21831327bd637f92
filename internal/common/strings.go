package common

// TruncateRunes returns s cut to at most limit runes. Truncation happens on
// rune boundaries so multibyte characters are never split.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
