// Package versions maintains the coarse undo log: a capped stack of document
// snapshots that only grows when a change is significant.
package versions

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/parser"
)

const (
	// DefaultMaxEntries is the number of versions kept before the oldest is evicted.
	DefaultMaxEntries = 20
	// DefaultMajorChangeRatio is the relative length delta above which a change is major.
	DefaultMajorChangeRatio = 0.3
)

// Policy holds the tunables of the version log.
type Policy struct {
	MaxEntries       int
	MajorChangeRatio float64
}

// DefaultPolicy returns the policy used when no configuration is given.
func DefaultPolicy() Policy {
	return Policy{
		MaxEntries:       DefaultMaxEntries,
		MajorChangeRatio: DefaultMajorChangeRatio,
	}
}

// Push appends content to versions unless it equals the newest entry, then
// keeps only the newest MaxEntries. The input slice is never modified.
func (p Policy) Push(versions []models.Version, content string) []models.Version {
	return Push(versions, content, p.MaxEntries)
}

// IsMajorChange reports whether going from prev to next is significant enough
// to snapshot. A change is major when the length delta relative to prev
// exceeds MajorChangeRatio, or when both texts are JSON containers whose
// element or key counts differ.
func (p Policy) IsMajorChange(prev, next string) bool {
	prevLen := utf8.RuneCountInString(prev)
	nextLen := utf8.RuneCountInString(next)

	ratio := math.Abs(float64(nextLen-prevLen)) / math.Max(1, float64(prevLen))
	if ratio > p.MajorChangeRatio {
		return true
	}
	return shapeChanged(prev, next)
}

// Push is Policy.Push with an explicit cap. A cap below one keeps every entry.
func Push(versions []models.Version, content string, maxEntries int) []models.Version {
	if n := len(versions); n > 0 && versions[n-1].Content == content {
		return versions
	}

	next := make([]models.Version, 0, len(versions)+1)
	next = append(next, versions...)
	next = append(next, models.Version{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: time.Now(),
	})

	if maxEntries > 0 && len(next) > maxEntries {
		next = next[len(next)-maxEntries:]
	}
	return next
}

// CanUndo reports whether there is a version to go back to. The oldest
// version is the floor and is never popped.
func CanUndo(versions []models.Version) bool {
	return len(versions) > 1
}

// UndoLast pops the newest version and returns the remaining log together
// with its new top, which is the content to restore. When nothing can be
// undone the log is returned as is and restored is nil.
func UndoLast(versions []models.Version) (remaining []models.Version, restored *models.Version) {
	if !CanUndo(versions) {
		return versions, nil
	}
	remaining = versions[: len(versions)-1 : len(versions)-1]
	top := remaining[len(remaining)-1]
	return remaining, &top
}

// IsMajorChange applies the default policy.
func IsMajorChange(prev, next string) bool {
	return DefaultPolicy().IsMajorChange(prev, next)
}

// shapeChanged compares the top-level size of two JSON containers. Texts that
// do not parse give no signal.
func shapeChanged(prev, next string) bool {
	prevValue, err := parser.ParseString(prev)
	if err != nil {
		return false
	}
	nextValue, err := parser.ParseString(next)
	if err != nil {
		return false
	}
	if !prevValue.IsContainer() || !nextValue.IsContainer() {
		return false
	}
	return prevValue.Len() != nextValue.Len()
}
