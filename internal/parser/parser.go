package parser

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	stderrors "errors" // Standard errors package
	"github.com/mcncl/jsonsync/internal/analyzer"
	"github.com/mcncl/jsonsync/internal/errors" // Custom errors package
	"github.com/mcncl/jsonsync/internal/models"
)

// ParseError is a strict parse failure. Offset is the character (not byte)
// index of the offending input, or -1 when the decoder did not report one.
type ParseError struct {
	Message string
	Offset  int
	Line    int
	Col     int
}

// Error implements error interface
func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return e.Message
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Col)
}

// Unwrap lets callers match any ParseError with errors.ErrInvalidJSON
func (e *ParseError) Unwrap() error {
	return errors.ErrInvalidJSON
}

// ParseString strictly parses text as a single JSON value, keeping object key
// order. Leading and trailing whitespace is allowed; trailing data is not.
func ParseString(text string) (models.Value, error) {
	if strings.TrimSpace(text) == "" {
		return models.Value{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}

	// Validate in one pass first so syntax errors carry encoding/json's offset
	// for the whole input, including anything after the first value.
	var probe interface{}
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return models.Value{}, errors.NewParsingError("JSON syntax error", newParseError(text, err))
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber() // Keep numeric literals as written

	value, err := decodeValue(decoder)
	if err != nil {
		return models.Value{}, errors.NewParsingError("failed to decode JSON", err)
	}
	return value, nil
}

// Valid reports whether text is exactly one strict JSON value.
func Valid(text string) bool {
	return json.Valid([]byte(text))
}

// ParseStringLiteral decodes text as a JSON string literal such as "a\"b".
// ok is false when text is valid JSON of another kind or not valid at all.
func ParseStringLiteral(text string) (string, bool) {
	// json.Unmarshal treats null as a no-op for strings, so require a quote.
	if !strings.HasPrefix(strings.TrimSpace(text), `"`) {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return "", false
	}
	return s, true
}

// Unescape removes one layer of JSON string escaping. text may already be a
// quoted literal; otherwise it is wrapped in quotes before decoding.
func Unescape(text string) (string, error) {
	if s, ok := ParseStringLiteral(text); ok {
		return s, nil
	}
	s, ok := ParseStringLiteral(`"` + text + `"`)
	if !ok {
		return "", errors.NewEscapeError(errors.ErrInvalidJSON)
	}
	return s, nil
}

func decodeValue(decoder *json.Decoder) (models.Value, error) {
	tok, err := decoder.Token()
	if err != nil {
		return models.Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		}
		return models.Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return models.String(t), nil
	case json.Number:
		return models.Number(t), nil
	case bool:
		return models.Bool(t), nil
	case nil:
		return models.Null(), nil
	}
	return models.Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(decoder *json.Decoder) (models.Value, error) {
	obj := models.NewObject()
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return models.Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return models.Value{}, fmt.Errorf("object key is %T, not a string", keyTok)
		}
		value, err := decodeValue(decoder)
		if err != nil {
			return models.Value{}, err
		}
		obj.Set(key, value)
	}
	// Consume the closing brace
	if _, err := decoder.Token(); err != nil {
		return models.Value{}, err
	}
	return models.ObjectValue(obj), nil
}

func decodeArray(decoder *json.Decoder) (models.Value, error) {
	items := []models.Value{}
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return models.Value{}, err
		}
		items = append(items, value)
	}
	// Consume the closing bracket
	if _, err := decoder.Token(); err != nil {
		return models.Value{}, err
	}
	return models.Array(items...), nil
}

// newParseError converts a decoder failure into a ParseError with a character
// offset and line/column when encoding/json reported a byte offset.
func newParseError(text string, err error) *ParseError {
	var syntaxError *json.SyntaxError
	if !stderrors.As(err, &syntaxError) {
		return &ParseError{Message: err.Error(), Offset: -1}
	}

	// SyntaxError.Offset counts the bytes read, including the offending one.
	byteIdx := int(syntaxError.Offset) - 1
	if byteIdx < 0 {
		byteIdx = 0
	}
	if byteIdx > len(text) {
		byteIdx = len(text)
	}
	offset := utf8.RuneCountInString(text[:byteIdx])
	pos := analyzer.LineCol(text, offset)

	return &ParseError{
		Message: syntaxError.Error(),
		Offset:  offset,
		Line:    pos.Line,
		Col:     pos.Col,
	}
}
