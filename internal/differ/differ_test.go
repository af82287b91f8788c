package differ

import (
	"testing"

	"github.com/mcncl/jsonsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_Identical(t *testing.T) {
	result := NewDiffer(nil).Diff("{\n  \"a\": 1\n}", "{\n  \"a\": 1\n}")

	assert.True(t, result.Identical)
	assert.Zero(t, result.LinesAdded)
	assert.Zero(t, result.LinesDeleted)
}

func TestDiff_ChangedLine(t *testing.T) {
	result := NewDiffer(nil).Diff("{\n  \"a\": 1,\n  \"b\": 2\n}", "{\n  \"a\": 1,\n  \"b\": 3\n}")

	assert.False(t, result.Identical)
	assert.Equal(t, 1, result.LinesAdded)
	assert.Equal(t, 1, result.LinesDeleted)

	rendered := result.Render()
	assert.Contains(t, rendered, "-   \"b\": 2\n")
	assert.Contains(t, rendered, "+   \"b\": 3\n")
	assert.Contains(t, rendered, "    \"a\": 1,\n")
}

func TestDiff_AddedLines(t *testing.T) {
	result := NewDiffer(nil).Diff("[\n  1\n]", "[\n  1,\n  2,\n  3\n]")

	assert.Equal(t, 3, result.LinesAdded)
	assert.Equal(t, 1, result.LinesDeleted)
}

func TestDiffValues_IgnoresWhitespace(t *testing.T) {
	oldValue := models.ObjectValue(models.NewObject(models.Member{Key: "a", Value: models.Int(1)}))
	newValue := models.ObjectValue(models.NewObject(
		models.Member{Key: "a", Value: models.Int(1)},
		models.Member{Key: "b", Value: models.Bool(true)},
	))

	d := NewDiffer(nil)

	same := d.DiffValues(oldValue, oldValue)
	assert.True(t, same.Identical)

	changed := d.DiffValues(oldValue, newValue)
	require.False(t, changed.Identical)
	assert.Contains(t, changed.Render(), "+   \"b\": true\n")
}
