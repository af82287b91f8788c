// Package extract finds the JSON fragment inside text that carries noise
// around it, such as a log line or a string that was escaped one time too many.
package extract

import (
	"regexp"
	"strings"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/parser"
)

// DefaultMaxInputBytes bounds the input size for the bracket-scan fallback.
const DefaultMaxInputBytes = 1 << 20

// candidateRegex matches the shortest {...} or [...] span at each position.
var candidateRegex = regexp.MustCompile(`(?s)\{.*?\}|\[.*?\]`)

// Extractor locates parsable JSON fragments.
type Extractor struct {
	maxInputBytes int
}

// NewExtractor creates an Extractor. maxInputBytes <= 0 uses DefaultMaxInputBytes.
func NewExtractor(maxInputBytes int) *Extractor {
	if maxInputBytes <= 0 {
		maxInputBytes = DefaultMaxInputBytes
	}
	return &Extractor{maxInputBytes: maxInputBytes}
}

// CoreJSON uses a default Extractor.
func CoreJSON(raw string) (string, bool) {
	return NewExtractor(0).CoreJSON(raw)
}

// CoreJSON returns the first substring of raw that is valid JSON. It tries, in
// order: the whole input; the shortest {...}/[...] spans in document order;
// a balanced-bracket scan from each opening brace, then each opening bracket.
// The scan is skipped for inputs larger than the extractor's limit.
func (e *Extractor) CoreJSON(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if parser.Valid(raw) {
		return raw, true
	}

	for _, candidate := range candidateRegex.FindAllString(raw, -1) {
		if parser.Valid(candidate) {
			return candidate, true
		}
	}

	if len(raw) > e.maxInputBytes {
		return "", false
	}
	for _, open := range []byte{'{', '['} {
		if fragment, ok := scanBalanced(raw, open); ok {
			return fragment, true
		}
	}
	return "", false
}

// FromEscaped removes one layer of string escaping from text and extracts the
// JSON fragment from the result. Text that is not a valid escaped string is
// searched as is.
func (e *Extractor) FromEscaped(text string) (string, error) {
	unescaped, err := parser.Unescape(strings.TrimSpace(text))
	if err != nil {
		unescaped = text
	}
	if fragment, ok := e.CoreJSON(unescaped); ok {
		return fragment, nil
	}
	return "", errors.NewInputError("no parsable JSON fragment in input", errors.ErrNoJSONFound)
}

// scanBalanced tries each occurrence of open from left to right, walks to its
// matching closer while skipping string contents, and returns the first
// balanced span that parses.
func scanBalanced(raw string, open byte) (string, bool) {
	for start := strings.IndexByte(raw, open); start >= 0; {
		if end := matchClose(raw, start); end > start {
			if candidate := raw[start : end+1]; parser.Valid(candidate) {
				return candidate, true
			}
		}
		next := strings.IndexByte(raw[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchClose returns the index of the bracket closing raw[start], or -1 when
// brackets are unbalanced or mismatched.
func matchClose(raw string, start int) int {
	var stack []byte
	inString, escaped := false, false

	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
