// Package repair implements a best-effort parser for common JSON mistakes:
// a bare top-level "key": value fragment, single-quoted strings, unquoted
// object keys and trailing commas.
package repair

import (
	"regexp"
	"strings"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/parser"
)

var (
	singleQuotedRegex  = regexp.MustCompile(`'([^']*)'`)
	bareKeyRegex       = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)(\s*):`)
	trailingCommaRegex = regexp.MustCompile(`,\s*([\]}])`)
)

// Stage is a single textual repair.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline is the fixed order in which repairs run. Wrapping comes first so
// the added braces go through the remaining clean-ups.
var Pipeline = []Stage{
	{Name: "wrap-bare-fragment", Apply: WrapBareFragment},
	{Name: "normalize-single-quotes", Apply: NormalizeSingleQuotes},
	{Name: "quote-bare-keys", Apply: QuoteBareKeys},
	{Name: "strip-trailing-commas", Apply: StripTrailingCommas},
}

// Result is the outcome of SmartParse.
type Result struct {
	// Present is false for blank input, which is not an error.
	Present bool
	Value   models.Value
	// Text is the exact text that parsed.
	Text string
	// Applied names the stages that changed the text, in order.
	Applied []string
}

// Repaired reports whether any repair was needed.
func (r Result) Repaired() bool { return len(r.Applied) > 0 }

// SmartParse parses input strictly and, when that fails, runs every stage of
// Pipeline once and parses again. A second failure is a repair error with a
// fixed message.
func SmartParse(input string) (Result, error) {
	fixed := strings.TrimSpace(input)
	if fixed == "" {
		return Result{}, nil
	}

	if value, err := parser.ParseString(fixed); err == nil {
		return Result{Present: true, Value: value, Text: fixed}, nil
	}

	var applied []string
	for _, stage := range Pipeline {
		next := stage.Apply(fixed)
		if next != fixed {
			applied = append(applied, stage.Name)
			fixed = next
		}
	}

	value, err := parser.ParseString(fixed)
	if err != nil {
		return Result{}, errors.NewRepairError(err)
	}
	return Result{Present: true, Value: value, Text: fixed, Applied: applied}, nil
}

// WrapBareFragment wraps text in braces when it is not already an object or
// array but contains a colon, e.g. `"a": 1` becomes `{"a": 1}`.
func WrapBareFragment(text string) string {
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") || !strings.Contains(text, ":") {
		return text
	}
	return "{" + text + "}"
}

// NormalizeSingleQuotes turns 'x' literals into "x". The match is naive and
// ignores escapes, so an apostrophe inside a double-quoted string can be
// rewritten too.
func NormalizeSingleQuotes(text string) string {
	return singleQuotedRegex.ReplaceAllString(text, `"${1}"`)
}

// QuoteBareKeys quotes identifier keys that follow { or ,: {a: 1} becomes {"a": 1}.
func QuoteBareKeys(text string) string {
	return bareKeyRegex.ReplaceAllString(text, `${1}"${2}"${3}:`)
}

// StripTrailingCommas removes a comma that directly precedes } or ].
func StripTrailingCommas(text string) string {
	return trailingCommaRegex.ReplaceAllString(text, `${1}`)
}
