package formatter

import (
	"testing"

	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ParseFormatRoundTrip(t *testing.T) {
	inputs := []string{
		`{"user_id": 123, "username": "johndoe", "is_active": true, "profile": {"full_name": "John Doe", "email": "john.doe@example.com"}}`,
		`[1, 2.5, -3e10, "x", null, [], {}]`,
		`"just a string with \"quotes\" and \\ backslash"`,
		`{"z": 1, "a": {"m": [true, false], "b": null}}`,
		`{"html": "<b>&amp;</b>", "unicode": "héllo ☃"}`,
	}

	f := NewFormatter()
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			value, err := parser.ParseString(input)
			require.NoError(t, err)

			formatted := f.Format(value)
			reparsed, err := parser.ParseString(formatted)
			require.NoError(t, err)

			// serialize(parse(serialize(v))) == serialize(v)
			assert.Equal(t, formatted, f.Format(reparsed))
			assert.Equal(t, f.Minify(value), f.Minify(reparsed))
			assert.True(t, models.Equal(value, reparsed))
		})
	}
}

func TestIntegration_EscapeUnescapeRoundTrip(t *testing.T) {
	value, err := parser.ParseString(`{"key":{"test":1,"jsonStr":"{\"inner\": true}"}}`)
	require.NoError(t, err)

	f := NewFormatter()
	escaped := f.Escape(value)

	unescaped, err := parser.Unescape(escaped)
	require.NoError(t, err)
	assert.Equal(t, f.Minify(value), unescaped)

	back, err := parser.ParseString(unescaped)
	require.NoError(t, err)
	assert.True(t, models.Equal(value, back))
}
