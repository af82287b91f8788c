// Package history keeps the fine-grained operation log: one entry per user
// action, holding the document text from before the action.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/models"
)

const (
	DefaultMaxEntries    = 30
	DefaultPreviewLength = 40
	previewSuffix        = "..."
)

// Log is the capped, newest-first operation log.
type Log struct {
	maxEntries    int
	previewLength int
}

// NewLog creates a Log. Non-positive arguments fall back to the defaults.
func NewLog(maxEntries, previewLength int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &Log{maxEntries: maxEntries, previewLength: previewLength}
}

// Add prepends an entry for action with the given snapshot and drops entries
// beyond the cap. Blank snapshots are not recorded. entries is not modified.
func (l *Log) Add(entries []models.HistoryEntry, action, snapshot string) []models.HistoryEntry {
	if strings.TrimSpace(snapshot) == "" {
		return entries
	}

	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
		Preview:   Preview(snapshot, l.previewLength),
	}

	size := len(entries) + 1
	if size > l.maxEntries {
		size = l.maxEntries
	}
	next := make([]models.HistoryEntry, 0, size)
	next = append(next, entry)
	next = append(next, entries[:size-1]...)
	return next
}

// Find returns the entry with the given id.
func Find(entries []models.HistoryEntry, id string) (models.HistoryEntry, error) {
	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.HistoryEntry{}, errors.NewStateError("history entry "+id+" not found", errors.ErrHistoryNotFound)
}

// Preview returns the first length characters of snapshot on a single line,
// followed by an ellipsis.
func Preview(snapshot string, length int) string {
	runes := []rune(snapshot)
	if len(runes) > length {
		runes = runes[:length]
	}
	return strings.ReplaceAll(string(runes), "\n", " ") + previewSuffix
}
