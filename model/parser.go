package model

import (
	"errors"
	"strings"
)

// ExtractJSON pulls the outermost JSON object out of a model response.
// Providers wrap JSON in prose or markdown fences often enough that the
// raw content cannot be unmarshalled directly.
func ExtractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start == -1 || end == -1 || end <= start {
		return s, errors.New("no valid json found")
	}

	return s[start : end+1], nil
}
