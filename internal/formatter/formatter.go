package formatter

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mcncl/jsonsync/internal/models"
)

// DefaultIndent is the indentation used for the formatted JSON view.
const DefaultIndent = "  "

// Formatter is responsible for turning JSON values back into text: the
// indented JSON view, the minified form and the escaped-string view.
type Formatter struct {
	indent string
}

// NewFormatter creates a new Formatter instance with two-space indentation
func NewFormatter() *Formatter {
	return &Formatter{indent: DefaultIndent}
}

// NewFormatterWithIndent creates a Formatter using indent for each nesting level.
// An empty indent falls back to DefaultIndent.
func NewFormatterWithIndent(indent string) *Formatter {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Formatter{indent: indent}
}

// Format returns v as indented JSON. Empty containers render as {} and [].
func (f *Formatter) Format(v models.Value) string {
	var buf bytes.Buffer
	f.write(&buf, v, 0, true)
	return buf.String()
}

// Minify returns v as compact JSON with no insignificant whitespace.
func (f *Formatter) Minify(v models.Value) string {
	var buf bytes.Buffer
	f.write(&buf, v, 0, false)
	return buf.String()
}

// Escape returns the escaped-string view of v: its minified text encoded as a
// JSON string literal, without the surrounding quotes.
func (f *Formatter) Escape(v models.Value) string {
	return EscapeText(f.Minify(v))
}

// EscapeText encodes s as the body of a JSON string literal (no surrounding quotes).
func EscapeText(s string) string {
	quoted := quote(s)
	return quoted[1 : len(quoted)-1]
}

func (f *Formatter) write(buf *bytes.Buffer, v models.Value, depth int, pretty bool) {
	switch v.Kind() {
	case models.KindNull:
		buf.WriteString("null")
	case models.KindBool:
		if v.AsBool() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case models.KindNumber:
		buf.WriteString(v.AsNumber().String())
	case models.KindString:
		buf.WriteString(quote(v.AsString()))
	case models.KindObject:
		members := v.AsObject().Members()
		if len(members) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				buf.WriteByte(',')
			}
			f.newline(buf, depth+1, pretty)
			buf.WriteString(quote(m.Key))
			buf.WriteByte(':')
			if pretty {
				buf.WriteByte(' ')
			}
			f.write(buf, m.Value, depth+1, pretty)
		}
		f.newline(buf, depth, pretty)
		buf.WriteByte('}')
	case models.KindArray:
		items := v.AsArray()
		if len(items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			f.newline(buf, depth+1, pretty)
			f.write(buf, item, depth+1, pretty)
		}
		f.newline(buf, depth, pretty)
		buf.WriteByte(']')
	}
}

func (f *Formatter) newline(buf *bytes.Buffer, depth int, pretty bool) {
	if !pretty {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(f.indent, depth))
}

// quote encodes s as a JSON string literal without HTML escaping, so <, > and
// & survive the escaped-string round trip unchanged. U+2028 and U+2029 are
// written raw, as JSON.stringify does.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// Encoding a Go string cannot fail; invalid UTF-8 is replaced.
		return `""`
	}
	encoded := strings.TrimSuffix(buf.String(), "\n")
	if !strings.Contains(encoded, `\u202`) {
		return encoded
	}
	return unescapeLineSeparators(encoded)
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes of an encoded
// literal back into raw runes. Every other escape pair is copied as is, so an
// escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(encoded string) string {
	var sb strings.Builder
	sb.Grow(len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if c != '\\' || i+1 >= len(encoded) {
			sb.WriteByte(c)
			continue
		}
		switch rest := encoded[i:]; {
		case strings.HasPrefix(rest, `\u2028`):
			sb.WriteRune('\u2028')
			i += 5
		case strings.HasPrefix(rest, `\u2029`):
			sb.WriteRune('\u2029')
			i += 5
		default:
			sb.WriteByte(c)
			sb.WriteByte(encoded[i+1])
			i++
		}
	}
	return sb.String()
}
