// Package differ compares two versions of a document line by line.
package differ

import (
	"strings"

	"github.com/mcncl/jsonsync/internal/formatter"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Operation is the kind of a diff chunk.
type Operation string

const (
	OpEqual  Operation = "equal"
	OpInsert Operation = "insert"
	OpDelete Operation = "delete"
)

// Chunk is a run of whole lines with the same operation.
type Chunk struct {
	Op   Operation `json:"op"`
	Text string    `json:"text"`
}

// Result holds the chunks of a diff and its line statistics.
type Result struct {
	Chunks       []Chunk `json:"chunks"`
	LinesAdded   int     `json:"lines_added"`
	LinesDeleted int     `json:"lines_deleted"`
	Identical    bool    `json:"identical"`
}

// Differ produces line based diffs.
type Differ struct {
	dmp       *diffmatchpatch.DiffMatchPatch
	formatter *formatter.Formatter
}

// NewDiffer creates a Differ that formats values with f before comparing them.
// A nil f uses the default formatter.
func NewDiffer(f *formatter.Formatter) *Differ {
	if f == nil {
		f = formatter.NewFormatter()
	}
	return &Differ{
		dmp:       diffmatchpatch.New(),
		formatter: f,
	}
}

// Diff compares two texts line by line.
func (d *Differ) Diff(oldText, newText string) Result {
	a, b, lines := d.dmp.DiffLinesToChars(oldText, newText)
	diffs := d.dmp.DiffMain(a, b, false)
	diffs = d.dmp.DiffCharsToLines(diffs, lines)

	result := Result{Identical: true}
	for _, diff := range diffs {
		if diff.Text == "" {
			continue
		}
		chunk := Chunk{Op: mapOperation(diff.Type), Text: diff.Text}
		switch chunk.Op {
		case OpInsert:
			result.LinesAdded += countLines(diff.Text)
			result.Identical = false
		case OpDelete:
			result.LinesDeleted += countLines(diff.Text)
			result.Identical = false
		}
		result.Chunks = append(result.Chunks, chunk)
	}
	return result
}

// DiffValues formats both documents the same way and compares the results,
// so only structural changes show up.
func (d *Differ) DiffValues(oldValue, newValue models.Value) Result {
	return d.Diff(d.formatter.Format(oldValue), d.formatter.Format(newValue))
}

// Render prints the diff with a "+ ", "- " or "  " prefix on every line.
func (r Result) Render() string {
	var sb strings.Builder
	for _, chunk := range r.Chunks {
		prefix := "  "
		switch chunk.Op {
		case OpInsert:
			prefix = "+ "
		case OpDelete:
			prefix = "- "
		}
		for _, line := range splitLines(chunk.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func mapOperation(op diffmatchpatch.Operation) Operation {
	switch op {
	case diffmatchpatch.DiffInsert:
		return OpInsert
	case diffmatchpatch.DiffDelete:
		return OpDelete
	default:
		return OpEqual
	}
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func countLines(text string) int {
	return len(splitLines(text))
}
