// Package analyzer holds read-only introspection over JSON values and raw text.
package analyzer

import (
	"strings"

	"github.com/mcncl/jsonsync/internal/models"
)

// Position is a 1-based line/column location in a text.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// TypeOf returns the type name of v: "null", "array", "object", "string",
// "number" or "boolean".
func TypeOf(v models.Value) string {
	return v.Kind().String()
}

// IsJSONString reports whether s looks like serialized JSON, i.e. its trimmed
// form is wrapped in {} or []. It does not parse; callers still have to.
func IsJSONString(s string) bool {
	trimmed := strings.TrimSpace(s)
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}

// LineCol converts a character index into a 1-based line and column by
// counting the newlines strictly before index. Out-of-range indexes are
// clamped to the text.
func LineCol(text string, index int) Position {
	pos := Position{Line: 1, Col: 1}
	i := 0
	for _, r := range text {
		if i >= index {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Col = 1
		} else {
			pos.Col++
		}
		i++
	}
	return pos
}
