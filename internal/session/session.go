// Package session keeps the JSON view, the escaped-string view and the parsed
// document in sync. State is a plain value; every reducer on Engine takes a
// State and returns a new one without touching its input.
package session

import (
	stderrors "errors"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/extract"
	"github.com/mcncl/jsonsync/internal/formatter"
	"github.com/mcncl/jsonsync/internal/history"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/parser"
	"github.com/mcncl/jsonsync/internal/versions"
	"github.com/rs/zerolog"
)

// State is one snapshot of an editing session.
type State struct {
	JSONText   string                `json:"json_text"`
	StringText string                `json:"string_text"`
	Value      models.Value          `json:"-"`
	HasValue   bool                  `json:"has_value"`
	Status     models.SyncStatus     `json:"status"`
	Error      *models.ErrorInfo     `json:"error,omitempty"`
	History    []models.HistoryEntry `json:"history"`
	Versions   []models.Version      `json:"versions"`
}

// NewState returns an empty, synced session.
func NewState() State {
	return State{Status: models.StatusSynced}
}

// Document returns the parsed document, if any.
func (s State) Document() (models.Value, bool) {
	return s.Value, s.HasValue
}

// Options configures an Engine.
type Options struct {
	Indent             string
	HistoryMaxEntries  int
	HistoryPreviewSize int
	Versions           versions.Policy
	MaxInputBytes      int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Indent:             formatter.DefaultIndent,
		HistoryMaxEntries:  history.DefaultMaxEntries,
		HistoryPreviewSize: history.DefaultPreviewLength,
		Versions:           versions.DefaultPolicy(),
		MaxInputBytes:      extract.DefaultMaxInputBytes,
	}
}

// Engine holds the collaborators the reducers need. It has no mutable state
// of its own and may be shared.
type Engine struct {
	formatter *formatter.Formatter
	history   *history.Log
	versions  versions.Policy
	extractor *extract.Extractor
	logger    zerolog.Logger
}

// NewEngine creates an Engine. Zero-valued option fields use the defaults.
func NewEngine(opts Options, logger zerolog.Logger) *Engine {
	defaults := DefaultOptions()
	if opts.Versions.MaxEntries <= 0 {
		opts.Versions.MaxEntries = defaults.Versions.MaxEntries
	}
	if opts.Versions.MajorChangeRatio <= 0 {
		opts.Versions.MajorChangeRatio = defaults.Versions.MajorChangeRatio
	}

	return &Engine{
		formatter: formatter.NewFormatterWithIndent(opts.Indent),
		history:   history.NewLog(opts.HistoryMaxEntries, opts.HistoryPreviewSize),
		versions:  opts.Versions,
		extractor: extract.NewExtractor(opts.MaxInputBytes),
		logger:    logger.With().Str("component", "SessionEngine").Logger(),
	}
}

// Action identifies a user action for the operation log.
type Action string

const (
	ActionSmartFix   Action = "smartFix"
	ActionFormat     Action = "format"
	ActionMinify     Action = "minify"
	ActionClear      Action = "clear"
	ActionPasteOver  Action = "pasteOver"
	ActionDeleteNode Action = "deleteNode"
	ActionUpdateNode Action = "updateNode"
	ActionPackNode   Action = "packNode"
	ActionUnpackNode Action = "unpackNode"
	ActionExtract    Action = "extract"
)

// Label is the human readable form of an action, e.g. "smart fix".
func (a Action) Label() string {
	return strcase.ToDelimited(string(a), ' ')
}

// errorInfo converts a JSON-side parse failure into display form.
func errorInfo(err error) *models.ErrorInfo {
	info := &models.ErrorInfo{Source: models.SourceJSON, Message: err.Error(), Index: -1}

	var parseErr *parser.ParseError
	if stderrors.As(err, &parseErr) {
		info.Message = parseErr.Message
		info.Index = parseErr.Offset
		if parseErr.Offset >= 0 {
			info.Line = parseErr.Line
			info.Col = parseErr.Col
		}
	}
	return info
}

func escapeErrorInfo() *models.ErrorInfo {
	return &models.ErrorInfo{Source: models.SourceString, Message: errors.MsgInvalidEscape, Index: -1}
}
