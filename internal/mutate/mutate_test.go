package mutate

import (
	"testing"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/formatter"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) models.Value {
	t.Helper()
	v, err := parser.ParseString(text)
	require.NoError(t, err)
	return v
}

func minify(v models.Value) string {
	return formatter.NewFormatter().Minify(v)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		path     models.Path
		action   Action
		newValue models.Value
		expected string
	}{
		{
			name:     "delete array element",
			source:   `{"a":[1,2,3]}`,
			path:     models.Path{models.Key("a"), models.Index(1)},
			action:   ActionDelete,
			expected: `{"a":[1,3]}`,
		},
		{
			name:     "update nested property",
			source:   `{"a":{"b":1}}`,
			path:     models.Path{models.Key("a"), models.Key("b")},
			action:   ActionUpdate,
			newValue: models.Int(2),
			expected: `{"a":{"b":2}}`,
		},
		{
			name:     "delete object key keeps order",
			source:   `{"z":1,"m":2,"a":3}`,
			path:     models.Path{models.Key("m")},
			action:   ActionDelete,
			expected: `{"z":1,"a":3}`,
		},
		{
			name:     "update keeps key position",
			source:   `{"z":1,"m":2,"a":3}`,
			path:     models.Path{models.Key("m")},
			action:   ActionUpdate,
			newValue: models.String("x"),
			expected: `{"z":1,"m":"x","a":3}`,
		},
		{
			name:     "update adds new key at the end",
			source:   `{"z":1}`,
			path:     models.Path{models.Key("new")},
			action:   ActionUpdate,
			newValue: models.Bool(true),
			expected: `{"z":1,"new":true}`,
		},
		{
			name:     "update at array length appends",
			source:   `[1,2]`,
			path:     models.Path{models.Index(2)},
			action:   ActionUpdate,
			newValue: models.Int(3),
			expected: `[1,2,3]`,
		},
		{
			name:     "numeric key addresses array",
			source:   `{"list":["a","b"]}`,
			path:     models.Path{models.Key("list"), models.Key("0")},
			action:   ActionDelete,
			expected: `{"list":["b"]}`,
		},
		{
			name:     "index addresses object key",
			source:   `{"0":"zero","1":"one"}`,
			path:     models.Path{models.Index(1)},
			action:   ActionDelete,
			expected: `{"0":"zero"}`,
		},
		{
			name:     "delete missing key is a no-op",
			source:   `{"a":1}`,
			path:     models.Path{models.Key("b")},
			action:   ActionDelete,
			expected: `{"a":1}`,
		},
		{
			name:     "delete past the end is a no-op",
			source:   `{"a":[1]}`,
			path:     models.Path{models.Key("a"), models.Index(5)},
			action:   ActionDelete,
			expected: `{"a":[1]}`,
		},
		{
			name:     "delete under missing parent is a no-op",
			source:   `{"a":{}}`,
			path:     models.Path{models.Key("a"), models.Key("gone"), models.Key("x")},
			action:   ActionDelete,
			expected: `{"a":{}}`,
		},
		{
			name:     "empty path update replaces document",
			source:   `{"a":1}`,
			path:     models.Path{},
			action:   ActionUpdate,
			newValue: models.Array(models.Int(9)),
			expected: `[9]`,
		},
		{
			name:     "scalar root is returned unchanged",
			source:   `"text"`,
			path:     models.Path{models.Key("a")},
			action:   ActionUpdate,
			newValue: models.Int(1),
			expected: `"text"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := mustParse(t, tt.source)

			result, err := Apply(source, tt.path, tt.action, tt.newValue)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, minify(result))
			assert.Equal(t, tt.source, minify(source), "source must not change")
		})
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		path     models.Path
		action   Action
		sentinel error
	}{
		{
			name:     "update index beyond length",
			source:   `[1]`,
			path:     models.Path{models.Index(3)},
			action:   ActionUpdate,
			sentinel: errors.ErrIndexOutOfRange,
		},
		{
			name:     "update under missing key",
			source:   `{"a":{}}`,
			path:     models.Path{models.Key("b"), models.Key("c")},
			action:   ActionUpdate,
			sentinel: errors.ErrPathNotFound,
		},
		{
			name:     "update under missing index",
			source:   `{"a":[]}`,
			path:     models.Path{models.Key("a"), models.Index(0), models.Key("c")},
			action:   ActionUpdate,
			sentinel: errors.ErrIndexOutOfRange,
		},
		{
			name:     "walk through scalar",
			source:   `{"a":1}`,
			path:     models.Path{models.Key("a"), models.Key("b"), models.Key("c")},
			action:   ActionUpdate,
			sentinel: errors.ErrNotContainer,
		},
		{
			name:     "last step on scalar",
			source:   `{"a":1}`,
			path:     models.Path{models.Key("a"), models.Key("b")},
			action:   ActionDelete,
			sentinel: errors.ErrNotContainer,
		},
		{
			name:     "non numeric key on array",
			source:   `[1,2]`,
			path:     models.Path{models.Key("x")},
			action:   ActionDelete,
			sentinel: errors.ErrPathNotFound,
		},
		{
			name:     "delete root",
			source:   `{"a":1}`,
			path:     models.Path{},
			action:   ActionDelete,
			sentinel: errors.ErrPathNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := mustParse(t, tt.source)

			result, err := Apply(source, tt.path, tt.action, models.Int(0))
			require.Error(t, err)

			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, errors.IsType(err, errors.ErrorTypePath))
			assert.Equal(t, tt.source, minify(result))
		})
	}
}

func TestApply_UnknownAction(t *testing.T) {
	_, err := Apply(mustParse(t, `{}`), models.Path{models.Key("a")}, Action("rename"), models.Null())
	assert.True(t, errors.IsType(err, errors.ErrorTypePath))
}

func TestApply_StructuralSharing(t *testing.T) {
	source := mustParse(t, `{"edit":{"x":1},"keep":{"deep":[1,2,3]},"list":[{"a":1},{"b":2}]}`)

	result, err := Apply(source, models.Path{models.Key("edit"), models.Key("x")}, ActionUpdate, models.Int(2))
	require.NoError(t, err)

	keepBefore, _ := source.AsObject().Get("keep")
	keepAfter, _ := result.AsObject().Get("keep")
	assert.Same(t, keepBefore.AsObject(), keepAfter.AsObject(), "untouched sibling is shared")

	editBefore, _ := source.AsObject().Get("edit")
	editAfter, _ := result.AsObject().Get("edit")
	assert.NotSame(t, editBefore.AsObject(), editAfter.AsObject(), "ancestor on the path is cloned")
	assert.NotSame(t, source.AsObject(), result.AsObject(), "root is cloned")

	result, err = Apply(source, models.Path{models.Key("list"), models.Index(1)}, ActionDelete, models.Value{})
	require.NoError(t, err)

	listAfter, _ := result.AsObject().Get("list")
	listBefore, _ := source.AsObject().Get("list")
	assert.Same(t, listBefore.AsArray()[0].AsObject(), listAfter.AsArray()[0].AsObject())
	assert.Len(t, listBefore.AsArray(), 2)
}

func TestApply_NoOpReturnsSource(t *testing.T) {
	source := mustParse(t, `{"a":{"b":1}}`)

	result, err := Apply(source, models.Path{models.Key("a"), models.Key("zzz")}, ActionDelete, models.Value{})
	require.NoError(t, err)
	assert.Same(t, source.AsObject(), result.AsObject())
}

func TestGet(t *testing.T) {
	source := mustParse(t, `{"users":[{"name":"ann"},{"name":"bob"}]}`)

	v, err := Get(source, models.Path{models.Key("users"), models.Index(1), models.Key("name")})
	require.NoError(t, err)
	assert.Equal(t, "bob", v.AsString())

	root, err := Get(source, nil)
	require.NoError(t, err)
	assert.True(t, models.Equal(source, root))

	_, err = Get(source, models.Path{models.Key("users"), models.Index(2)})
	assert.ErrorIs(t, err, errors.ErrIndexOutOfRange)

	_, err = Get(source, models.Path{models.Key("nope")})
	assert.ErrorIs(t, err, errors.ErrPathNotFound)
}
