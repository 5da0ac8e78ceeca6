package llm

import "strings"

// ExtractJSONObject returns the substring spanning the first '{' through the
// last '}' of text. Models often wrap their JSON in prose or code fences; this
// recovers the object without trying to validate it.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
