package mutate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/parser"
)

// ParsePath reads a path written either as dotted text or as a JSON array.
//
//	users.0.name      dotted; all-digit segments are indexes
//	users[0].name     bracketed indexes
//	a\.b.c            a backslash escapes a literal dot
//	["a.b", 0, "c"]   JSON array of strings and non-negative integers
//
// The empty string and "$" are the root.
func ParsePath(s string) (models.Path, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "$" {
		return models.Path{}, nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if value, err := parser.ParseString(s); err == nil {
			return pathFromJSON(value)
		}
	}
	return parseDotted(s)
}

func pathFromJSON(value models.Value) (models.Path, error) {
	items := value.AsArray()
	path := make(models.Path, 0, len(items))
	for i, item := range items {
		switch item.Kind() {
		case models.KindString:
			path = append(path, models.Key(item.AsString()))
		case models.KindNumber:
			idx, err := strconv.Atoi(item.AsNumber().String())
			if err != nil || idx < 0 {
				return nil, errors.NewInputError(fmt.Sprintf("path element %d is not a non-negative integer: %s", i, item.AsNumber()), err)
			}
			path = append(path, models.Index(idx))
		default:
			return nil, errors.NewInputError(fmt.Sprintf("path element %d must be a string or integer, got %s", i, item.Kind()), nil)
		}
	}
	return path, nil
}

func parseDotted(s string) (models.Path, error) {
	var path models.Path
	var segment strings.Builder
	pending := false

	flush := func() {
		if !pending {
			return
		}
		text := segment.String()
		if idx, err := strconv.Atoi(text); err == nil && idx >= 0 && isDigits(text) {
			path = append(path, models.Index(idx))
		} else {
			path = append(path, models.Key(text))
		}
		segment.Reset()
		pending = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			segment.WriteByte(s[i])
			pending = true
		case c == '.':
			flush()
		case c == '[':
			flush()
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, errors.NewInputError(fmt.Sprintf("unclosed '[' in path %q", s), nil)
			}
			inner := s[i+1 : i+end]
			idx, err := strconv.Atoi(inner)
			if err != nil || idx < 0 {
				return nil, errors.NewInputError(fmt.Sprintf("invalid index [%s] in path %q", inner, s), err)
			}
			path = append(path, models.Index(idx))
			i += end
		default:
			segment.WriteByte(c)
			pending = true
		}
	}
	flush()
	return path, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
