package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcncl/jsonsync/internal/analyzer"
	"github.com/mcncl/jsonsync/internal/differ"
	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/extract"
	"github.com/mcncl/jsonsync/internal/formatter"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/mutate"
	"github.com/mcncl/jsonsync/internal/parser"
	"github.com/mcncl/jsonsync/internal/repair"
	"github.com/mcncl/jsonsync/internal/session"
	"github.com/mcncl/jsonsync/internal/versions"
)

// FixCmd repairs malformed JSON
type FixCmd struct {
	Minify bool `help:"Print the repaired document minified." short:"m"`
}

func (c *FixCmd) Run(ctx *Context) error {
	text, err := readInput(ctx)
	if err != nil {
		return err
	}

	result, err := repair.SmartParse(text)
	if err != nil {
		return err
	}
	if result.Repaired() {
		ctx.Logger.Info().Strs("stages", result.Applied).Msg("Repaired input")
	}

	f := formatter.NewFormatterWithIndent(ctx.Config.Format.Indent)
	if c.Minify {
		return writeOutput(ctx, f.Minify(result.Value))
	}
	return writeOutput(ctx, f.Format(result.Value))
}

// FormatCmd pretty-prints strict JSON
type FormatCmd struct{}

func (c *FormatCmd) Run(ctx *Context) error {
	value, err := readDocument(ctx)
	if err != nil {
		return err
	}
	return writeOutput(ctx, formatter.NewFormatterWithIndent(ctx.Config.Format.Indent).Format(value))
}

// MinifyCmd compacts strict JSON
type MinifyCmd struct{}

func (c *MinifyCmd) Run(ctx *Context) error {
	value, err := readDocument(ctx)
	if err != nil {
		return err
	}
	return writeOutput(ctx, formatter.NewFormatter().Minify(value))
}

// EscapeCmd prints the escaped-string view of a document
type EscapeCmd struct {
	Quoted bool `help:"Wrap the result in double quotes so it is a JSON string literal." short:"q"`
}

func (c *EscapeCmd) Run(ctx *Context) error {
	value, err := readDocument(ctx)
	if err != nil {
		return err
	}
	escaped := formatter.NewFormatter().Escape(value)
	if c.Quoted {
		escaped = `"` + escaped + `"`
	}
	return writeOutput(ctx, escaped)
}

// UnescapeCmd decodes the escaped-string view
type UnescapeCmd struct {
	Raw bool `help:"Print the decoded text without parsing it as JSON."`
}

func (c *UnescapeCmd) Run(ctx *Context) error {
	text, err := readInput(ctx)
	if err != nil {
		return err
	}

	text = strings.TrimRight(text, "\r\n")

	if c.Raw {
		unescaped, err := parser.Unescape(text)
		if err != nil {
			return err
		}
		return writeOutput(ctx, unescaped)
	}

	state := newEngine(ctx).StringTextChanged(session.NewState(), text)
	if state.Status != models.StatusSynced {
		return errors.NewEscapeError(errors.ErrInvalidJSON)
	}
	return writeOutput(ctx, state.JSONText)
}

// ExtractCmd pulls a JSON fragment out of surrounding noise
type ExtractCmd struct {
	Format bool `help:"Pretty-print the fragment instead of printing it as found." short:"f"`
}

func (c *ExtractCmd) Run(ctx *Context) error {
	text, err := readInput(ctx)
	if err != nil {
		return err
	}

	core, err := extract.NewExtractor(ctx.Config.Extract.MaxInputBytes).FromEscaped(text)
	if err != nil {
		return err
	}
	if !c.Format {
		return writeOutput(ctx, core)
	}

	value, err := parser.ParseString(core)
	if err != nil {
		return err
	}
	return writeOutput(ctx, formatter.NewFormatterWithIndent(ctx.Config.Format.Indent).Format(value))
}

// TypeCmd describes a document or the node at a path
type TypeCmd struct {
	Path string `help:"Describe only the node at this path, e.g. users.0.name." short:"p"`
	JSON bool   `help:"Print the summary as JSON." name:"json"`
}

func (c *TypeCmd) Run(ctx *Context) error {
	value, err := readDocument(ctx)
	if err != nil {
		return err
	}

	if c.Path != "" {
		path, err := mutate.ParsePath(c.Path)
		if err != nil {
			return err
		}
		if value, err = mutate.Get(value, path); err != nil {
			return err
		}
	}

	summary := analyzer.NewAnalyzer().Analyze(value)
	if c.JSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return errors.NewOutputError("failed to encode summary", err)
		}
		return writeOutput(ctx, string(data))
	}
	return writeOutput(ctx, renderSummary(summary))
}

// EditCmd groups the structural edits
type EditCmd struct {
	Delete EditDeleteCmd `cmd:"" help:"Delete the node at a path."`
	Set    EditSetCmd    `cmd:"" help:"Set the node at a path to a JSON value."`
	Pack   EditPackCmd   `cmd:"" help:"Replace the node at a path with its minified text."`
	Unpack EditUnpackCmd `cmd:"" help:"Replace a string holding JSON with the parsed value."`
}

// EditDeleteCmd deletes a node
type EditDeleteCmd struct {
	Path string `arg:"" help:"Path of the node, e.g. users.0 or '[\"a.b\",0]'."`
}

func (c *EditDeleteCmd) Run(ctx *Context) error {
	return runEdit(ctx, c.Path, func(e *session.Engine, s session.State, p models.Path) (session.State, error) {
		return e.Edit(s, p, mutate.ActionDelete, models.Value{})
	})
}

// EditSetCmd replaces or inserts a node
type EditSetCmd struct {
	Path   string `arg:"" help:"Path of the node."`
	Value  string `arg:"" help:"New value as JSON. Unquoted text is accepted with --string."`
	String bool   `help:"Treat the value as a plain string." name:"string"`
}

func (c *EditSetCmd) Run(ctx *Context) error {
	newValue := models.String(c.Value)
	if !c.String {
		parsed, err := parser.ParseString(c.Value)
		if err != nil {
			return err
		}
		newValue = parsed
	}
	return runEdit(ctx, c.Path, func(e *session.Engine, s session.State, p models.Path) (session.State, error) {
		return e.Edit(s, p, mutate.ActionUpdate, newValue)
	})
}

// EditPackCmd packs a node into a string
type EditPackCmd struct {
	Path string `arg:"" help:"Path of the node."`
}

func (c *EditPackCmd) Run(ctx *Context) error {
	return runEdit(ctx, c.Path, (*session.Engine).Pack)
}

// EditUnpackCmd unpacks a JSON string node
type EditUnpackCmd struct {
	Path string `arg:"" help:"Path of the string node."`
}

func (c *EditUnpackCmd) Run(ctx *Context) error {
	return runEdit(ctx, c.Path, (*session.Engine).Unpack)
}

type editFunc func(*session.Engine, session.State, models.Path) (session.State, error)

func runEdit(ctx *Context, rawPath string, apply editFunc) error {
	path, err := mutate.ParsePath(rawPath)
	if err != nil {
		return err
	}
	text, err := readInput(ctx)
	if err != nil {
		return err
	}

	engine := newEngine(ctx)
	state := engine.JSONTextChanged(session.NewState(), text)
	if !state.HasValue {
		_, err := parser.ParseString(text)
		return err
	}

	state, err = apply(engine, state, path)
	if err != nil {
		return err
	}
	return writeOutput(ctx, state.JSONText)
}

// MajorCmd applies the version significance check to two files
type MajorCmd struct {
	Previous string `arg:"" help:"File with the previous text." type:"path"`
	Next     string `arg:"" help:"File with the next text." type:"path"`
}

func (c *MajorCmd) Run(ctx *Context) error {
	prev, err := readFile(c.Previous)
	if err != nil {
		return err
	}
	next, err := readFile(c.Next)
	if err != nil {
		return err
	}

	policy := versions.Policy{
		MaxEntries:       ctx.Config.Versions.MaxEntries,
		MajorChangeRatio: ctx.Config.Versions.MajorChangeRatio,
	}
	return writeOutput(ctx, fmt.Sprintf("%t", policy.IsMajorChange(prev, next)))
}

// DiffCmd compares two documents
type DiffCmd struct {
	Old string `arg:"" help:"File with the old document." type:"path"`
	New string `arg:"" optional:"" help:"File with the new document. Defaults to the input." type:"path"`
	Raw bool   `help:"Compare the texts as they are instead of normalizing both documents first."`
}

func (c *DiffCmd) Run(ctx *Context) error {
	oldText, err := readFile(c.Old)
	if err != nil {
		return err
	}
	var newText string
	if c.New != "" {
		newText, err = readFile(c.New)
	} else {
		newText, err = readInput(ctx)
	}
	if err != nil {
		return err
	}

	d := differ.NewDiffer(formatter.NewFormatterWithIndent(ctx.Config.Format.Indent))
	var result differ.Result
	if c.Raw {
		result = d.Diff(oldText, newText)
	} else {
		oldValue, err := parser.ParseString(oldText)
		if err != nil {
			return err
		}
		newValue, err := parser.ParseString(newText)
		if err != nil {
			return err
		}
		result = d.DiffValues(oldValue, newValue)
	}

	if result.Identical {
		return writeOutput(ctx, "no differences")
	}
	return writeOutput(ctx, fmt.Sprintf("%s\n%d line(s) added, %d line(s) removed", strings.TrimRight(result.Render(), "\n"), result.LinesAdded, result.LinesDeleted))
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "jsonsync version %s\n", Version)
	return err
}

// readDocument reads and strictly parses the input
func readDocument(ctx *Context) (models.Value, error) {
	text, err := readInput(ctx)
	if err != nil {
		return models.Value{}, err
	}
	return parser.ParseString(text)
}

func renderSummary(s analyzer.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type:      %s\n", s.RootType)
	fmt.Fprintf(&sb, "nodes:     %d\n", s.Nodes)
	fmt.Fprintf(&sb, "max depth: %d\n", s.MaxDepth)
	for _, kind := range []string{"object", "array", "string", "number", "boolean", "null"} {
		if n := s.Counts[kind]; n > 0 {
			fmt.Fprintf(&sb, "%-10s %d\n", kind+":", n)
		}
	}
	if s.Integers+s.Floats > 0 {
		fmt.Fprintf(&sb, "integers:  %d\nfloats:    %d\n", s.Integers, s.Floats)
	}
	if len(s.Packed) > 0 {
		fmt.Fprintf(&sb, "packed JSON strings: %s\n", strings.Join(s.Packed, ", "))
	}
	return sb.String()
}
