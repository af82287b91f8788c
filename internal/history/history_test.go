package history

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AddNewestFirst(t *testing.T) {
	log := NewLog(0, 0)

	var entries []models.HistoryEntry
	entries = log.Add(entries, "format", `{"a":1}`)
	entries = log.Add(entries, "minify", `{"a": 1}`)

	require.Len(t, entries, 2)
	assert.Equal(t, "minify", entries[0].Action)
	assert.Equal(t, "format", entries[1].Action)
	assert.Equal(t, `{"a": 1}`, entries[0].Snapshot)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLog_AddSkipsBlankSnapshots(t *testing.T) {
	log := NewLog(0, 0)

	for _, snapshot := range []string{"", "   ", "\n\t"} {
		assert.Empty(t, log.Add(nil, "clear", snapshot))
	}
}

func TestLog_AddCap(t *testing.T) {
	log := NewLog(DefaultMaxEntries, DefaultPreviewLength)

	var entries []models.HistoryEntry
	for i := 0; i < 35; i++ {
		entries = log.Add(entries, "edit", fmt.Sprintf("snapshot %d", i))
	}

	require.Len(t, entries, 30)
	assert.Equal(t, "snapshot 34", entries[0].Snapshot)
	assert.Equal(t, "snapshot 5", entries[29].Snapshot)
}

func TestLog_AddDoesNotModifyInput(t *testing.T) {
	log := NewLog(2, 0)

	first := log.Add(nil, "a", "one")
	second := log.Add(first, "b", "two")
	third := log.Add(second, "c", "three")

	assert.Equal(t, "one", first[0].Snapshot)
	assert.Equal(t, []string{"two", "one"}, []string{second[0].Snapshot, second[1].Snapshot})
	assert.Equal(t, []string{"three", "two"}, []string{third[0].Snapshot, third[1].Snapshot})
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string
		length   int
		expected string
	}{
		{"short", `{"a":1}`, 40, `{"a":1}...`},
		{"newlines become spaces", "{\n  \"a\": 1\n}", 40, `{   "a": 1 }...`},
		{"truncated", strings.Repeat("x", 50), 40, strings.Repeat("x", 40) + "..."},
		{"counts characters", "ééééé", 3, "ééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Preview(tt.snapshot, tt.length))
		})
	}
}

func TestFind(t *testing.T) {
	log := NewLog(0, 0)
	entries := log.Add(nil, "format", "before format")
	entries = log.Add(entries, "clear", "before clear")

	entry, err := Find(entries, entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "before format", entry.Snapshot)

	_, err = Find(entries, "missing")
	assert.ErrorIs(t, err, errors.ErrHistoryNotFound)
}
