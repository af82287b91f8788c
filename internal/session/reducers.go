package session

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonsync/internal/analyzer"
	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/history"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/mutate"
	"github.com/mcncl/jsonsync/internal/parser"
	"github.com/mcncl/jsonsync/internal/repair"
	"github.com/mcncl/jsonsync/internal/versions"
)

// JSONTextChanged handles an edit of the JSON view. Blank text clears the
// session. Valid text regenerates the escaped view and is snapshotted when
// the change from the previous text is major. Invalid text marks the JSON
// side broken and leaves the escaped view alone.
func (e *Engine) JSONTextChanged(s State, text string) State {
	prev := s.JSONText
	next := e.syncJSON(s, text)

	if next.HasValue && e.versions.IsMajorChange(prev, text) {
		next.Versions = e.versions.Push(next.Versions, text)
		e.logger.Debug().Int("versions", len(next.Versions)).Msg("Recorded version after major change")
	}
	return next
}

// StringTextChanged handles an edit of the escaped-string view. The text may
// be a quoted literal or the bare body of one. On success the JSON view is
// regenerated and always snapshotted.
func (e *Engine) StringTextChanged(s State, text string) State {
	s.StringText = text

	if strings.TrimSpace(text) == "" {
		s.JSONText = ""
		return cleared(s)
	}

	unescaped, err := parser.Unescape(text)
	if err == nil {
		var value models.Value
		if value, err = parser.ParseString(unescaped); err == nil {
			s.Value, s.HasValue = value, true
			s.JSONText = e.formatter.Format(value)
			s.Status = models.StatusSynced
			s.Error = nil
			s.Versions = e.versions.Push(s.Versions, s.JSONText)
			return s
		}
	}

	e.logger.Debug().Err(err).Msg("Escaped view did not decode")
	s.Value, s.HasValue = models.Value{}, false
	s.Status = models.StatusErrorString
	s.Error = escapeErrorInfo()
	return s
}

// Edit applies a structural delete or update at path. The pre-edit text goes
// to the operation log; a delete also snapshots it as a version. A document
// whose root is not a container is left as is.
func (e *Engine) Edit(s State, path models.Path, action mutate.Action, value models.Value) (State, error) {
	label := ActionUpdateNode
	if action == mutate.ActionDelete {
		label = ActionDeleteNode
	}
	return e.edit(s, label, path, action, value)
}

// Pack replaces the node at path with its minified text as a string.
func (e *Engine) Pack(s State, path models.Path) (State, error) {
	if !s.HasValue {
		return s, noDocument("pack")
	}
	node, err := mutate.Get(s.Value, path)
	if err != nil {
		return s, err
	}
	return e.edit(s, ActionPackNode, path, mutate.ActionUpdate, models.String(e.formatter.Minify(node)))
}

// Unpack replaces a string node that holds serialized JSON with its parsed value.
func (e *Engine) Unpack(s State, path models.Path) (State, error) {
	if !s.HasValue {
		return s, noDocument("unpack")
	}
	node, err := mutate.Get(s.Value, path)
	if err != nil {
		return s, err
	}
	if node.Kind() != models.KindString || !analyzer.IsJSONString(node.AsString()) {
		return s, errors.NewStateError(fmt.Sprintf("%s at %s does not hold serialized JSON", node.Kind(), pathLabel(path)), nil)
	}
	inner, err := parser.ParseString(node.AsString())
	if err != nil {
		return s, err
	}
	return e.edit(s, ActionUnpackNode, path, mutate.ActionUpdate, inner)
}

func (e *Engine) edit(s State, label Action, path models.Path, action mutate.Action, value models.Value) (State, error) {
	if !s.HasValue {
		return s, noDocument(label.Label())
	}
	if !s.Value.IsContainer() {
		return s, nil
	}

	updated, err := mutate.Apply(s.Value, path, action, value)
	if err != nil {
		return s, err
	}

	before := s.JSONText
	s.History = e.history.Add(s.History, fmt.Sprintf("%s (%s)", label.Label(), pathLabel(path)), before)
	if action == mutate.ActionDelete {
		s.Versions = e.versions.Push(s.Versions, before)
	}

	e.logger.Debug().Str("action", string(label)).Str("path", path.String()).Msg("Applied edit")
	return e.render(s, updated, e.formatter.Format(updated)), nil
}

// SmartFix repairs the JSON view and re-renders both views. It is refused
// while the escaped view is the broken side.
func (e *Engine) SmartFix(s State) (State, error) {
	if s.Status == models.StatusErrorString {
		return s, errors.NewStateError("smart fix only applies to the JSON view", nil)
	}

	result, err := repair.SmartParse(s.JSONText)
	if err != nil {
		e.logger.Debug().Err(err).Msg("Smart fix failed")
		return s, err
	}
	if !result.Present {
		return s, nil
	}

	s.History = e.history.Add(s.History, ActionSmartFix.Label(), s.JSONText)
	e.logger.Debug().Strs("stages", result.Applied).Msg("Smart fix applied")
	return e.render(s, result.Value, e.formatter.Format(result.Value)), nil
}

// Format re-indents the JSON view.
func (e *Engine) Format(s State) (State, error) {
	if !s.HasValue {
		return s, noDocument(ActionFormat.Label())
	}
	s.History = e.history.Add(s.History, ActionFormat.Label(), s.JSONText)
	return e.render(s, s.Value, e.formatter.Format(s.Value)), nil
}

// Minify strips insignificant whitespace from the JSON view.
func (e *Engine) Minify(s State) (State, error) {
	if !s.HasValue {
		return s, noDocument(ActionMinify.Label())
	}
	s.History = e.history.Add(s.History, ActionMinify.Label(), s.JSONText)
	return e.render(s, s.Value, e.formatter.Minify(s.Value)), nil
}

// Clear empties both views after logging the current text.
func (e *Engine) Clear(s State) State {
	s.History = e.history.Add(s.History, ActionClear.Label(), s.JSONText)
	s.JSONText, s.StringText = "", ""
	return cleared(s)
}

// Paste replaces the JSON view with text, logging the overwritten document
// first when there is one.
func (e *Engine) Paste(s State, text string) State {
	if s.HasValue {
		s.History = e.history.Add(s.History, ActionPasteOver.Label(), s.JSONText)
	}
	return e.JSONTextChanged(s, text)
}

// Extract pulls the first JSON fragment out of the escaped view, which may be
// surrounded by log noise, and loads it into the JSON view.
func (e *Engine) Extract(s State) (State, error) {
	core, err := e.extractor.FromEscaped(s.StringText)
	if err != nil {
		return s, err
	}
	value, err := parser.ParseString(core)
	if err != nil {
		return s, err
	}
	s.History = e.history.Add(s.History, ActionExtract.Label(), s.JSONText)
	next := e.render(s, value, e.formatter.Format(value))
	next.Versions = e.versions.Push(next.Versions, next.JSONText)
	return next, nil
}

// RestoreHistory loads the snapshot of the entry with the given id into the
// JSON view.
func (e *Engine) RestoreHistory(s State, id string) (State, error) {
	entry, err := history.Find(s.History, id)
	if err != nil {
		return s, err
	}
	e.logger.Debug().Str("id", id).Str("action", entry.Action).Msg("Restoring history entry")
	return e.JSONTextChanged(s, entry.Snapshot), nil
}

// Undo goes back one version. If the JSON view has drifted from the newest
// version it is first returned to that version; otherwise the newest version
// is popped and the one below it restored. With no versions, or only the
// oldest one left, the state is returned unchanged.
func (e *Engine) Undo(s State) State {
	if len(s.Versions) == 0 {
		e.logger.Debug().Msg("Undo with no versions recorded")
		return s
	}

	top := s.Versions[len(s.Versions)-1]
	if s.JSONText != top.Content {
		return e.syncJSON(s, top.Content)
	}

	remaining, restored := versions.UndoLast(s.Versions)
	if restored == nil {
		e.logger.Debug().Msg("Undo at the oldest version")
		return s
	}
	s.Versions = remaining
	return e.syncJSON(s, restored.Content)
}

// CanUndo reports whether Undo would change the session.
func (s State) CanUndo() bool {
	if len(s.Versions) == 0 {
		return false
	}
	return s.JSONText != s.Versions[len(s.Versions)-1].Content || versions.CanUndo(s.Versions)
}

// syncJSON loads text into the JSON view and derives the rest from it.
func (e *Engine) syncJSON(s State, text string) State {
	s.JSONText = text

	if strings.TrimSpace(text) == "" {
		s.StringText = ""
		return cleared(s)
	}

	value, err := parser.ParseString(text)
	if err != nil {
		s.Value, s.HasValue = models.Value{}, false
		s.Status = models.StatusErrorJSON
		s.Error = errorInfo(err)
		return s
	}
	s.Value, s.HasValue = value, true
	s.StringText = e.formatter.Escape(value)
	s.Status = models.StatusSynced
	s.Error = nil
	return s
}

// render sets a successfully computed document and both of its views.
func (e *Engine) render(s State, value models.Value, jsonText string) State {
	s.Value, s.HasValue = value, true
	s.JSONText = jsonText
	s.StringText = e.formatter.Escape(value)
	s.Status = models.StatusSynced
	s.Error = nil
	return s
}

func cleared(s State) State {
	s.Value, s.HasValue = models.Value{}, false
	s.Status = models.StatusSynced
	s.Error = nil
	return s
}

func noDocument(action string) error {
	return errors.NewStateError("cannot "+action+" without a valid document", errors.ErrNoDocument)
}

func pathLabel(p models.Path) string {
	if len(p) == 0 {
		return "root"
	}
	return p.String()
}
