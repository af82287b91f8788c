// Package mutate applies single structural edits to JSON values with
// copy-on-write semantics: containers on the edited path are cloned, every
// other container is shared with the source.
package mutate

import (
	"fmt"
	"strconv"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/models"
)

// Action is the kind of edit.
type Action string

const (
	ActionDelete Action = "delete"
	ActionUpdate Action = "update"
)

// Apply returns a copy of source with action applied at path. source is never
// modified.
//
//   - A scalar root is returned unchanged.
//   - An empty path with ActionUpdate replaces the whole document; with
//     ActionDelete it is an error.
//   - Deleting a key or index that does not exist is a no-op.
//   - Updating an array index equal to its length appends; beyond that is an
//     error, as is walking through a missing key or a scalar.
func Apply(source models.Value, path models.Path, action Action, newValue models.Value) (models.Value, error) {
	if action != ActionDelete && action != ActionUpdate {
		return source, errors.NewPathError(fmt.Sprintf("unknown mutation action %q", action), nil)
	}
	if !source.IsContainer() {
		return source, nil
	}
	if len(path) == 0 {
		if action == ActionUpdate {
			return newValue, nil
		}
		return source, errors.NewPathError("cannot delete the document root", errors.ErrPathNotFound)
	}

	result, changed, err := applyAt(source, path, 0, action, newValue)
	if err != nil {
		return source, err
	}
	if !changed {
		return source, nil
	}
	return result, nil
}

// Get returns the value at path.
func Get(source models.Value, path models.Path) (models.Value, error) {
	node := source
	for depth, elem := range path {
		child, found, err := childOf(node, elem, path[:depth+1])
		if err != nil {
			return models.Value{}, err
		}
		if !found {
			return models.Value{}, missingError(node, elem, path[:depth+1])
		}
		node = child
	}
	return node, nil
}

func applyAt(node models.Value, path models.Path, depth int, action Action, newValue models.Value) (models.Value, bool, error) {
	elem := path[depth]
	at := path[:depth+1]

	if depth == len(path)-1 {
		return applyLast(node, elem, at, action, newValue)
	}

	child, found, err := childOf(node, elem, at)
	if err != nil {
		return node, false, err
	}
	if !found {
		if action == ActionDelete {
			return node, false, nil
		}
		return node, false, missingError(node, elem, at)
	}

	newChild, changed, err := applyAt(child, path, depth+1, action, newValue)
	if err != nil || !changed {
		return node, false, err
	}
	return withChild(node, elem, newChild), true, nil
}

func applyLast(node models.Value, elem models.PathElem, at models.Path, action Action, newValue models.Value) (models.Value, bool, error) {
	switch node.Kind() {
	case models.KindObject:
		key := keyOf(elem)
		if action == ActionDelete {
			if !node.AsObject().Has(key) {
				return node, false, nil
			}
			obj := node.AsObject().Clone()
			obj.Delete(key)
			return models.ObjectValue(obj), true, nil
		}
		obj := node.AsObject().Clone()
		obj.Set(key, newValue)
		return models.ObjectValue(obj), true, nil

	case models.KindArray:
		items := node.AsArray()
		idx, ok := indexOf(elem)
		if !ok {
			return node, false, errors.NewPathError(fmt.Sprintf("%q is not an array index at %s", elem.Key, where(at)), errors.ErrPathNotFound)
		}
		if action == ActionDelete {
			if idx < 0 || idx >= len(items) {
				return node, false, nil
			}
			next := make([]models.Value, 0, len(items)-1)
			next = append(next, items[:idx]...)
			next = append(next, items[idx+1:]...)
			return models.Array(next...), true, nil
		}
		switch {
		case idx >= 0 && idx < len(items):
			next := models.CloneArray(items)
			next[idx] = newValue
			return models.Array(next...), true, nil
		case idx == len(items):
			next := make([]models.Value, 0, len(items)+1)
			next = append(next, items...)
			next = append(next, newValue)
			return models.Array(next...), true, nil
		}
		return node, false, errors.NewPathError(fmt.Sprintf("index %d out of range at %s (length %d)", idx, where(at), len(items)), errors.ErrIndexOutOfRange)
	}

	return node, false, errors.NewPathError(fmt.Sprintf("%s value at %s has no children", node.Kind(), where(at[:len(at)-1])), errors.ErrNotContainer)
}

// childOf resolves one path element. found is false when the container exists
// but lacks the key or index.
func childOf(node models.Value, elem models.PathElem, at models.Path) (models.Value, bool, error) {
	switch node.Kind() {
	case models.KindObject:
		child, ok := node.AsObject().Get(keyOf(elem))
		return child, ok, nil
	case models.KindArray:
		idx, ok := indexOf(elem)
		if !ok {
			return models.Value{}, false, errors.NewPathError(fmt.Sprintf("%q is not an array index at %s", elem.Key, where(at)), errors.ErrPathNotFound)
		}
		items := node.AsArray()
		if idx < 0 || idx >= len(items) {
			return models.Value{}, false, nil
		}
		return items[idx], true, nil
	}
	return models.Value{}, false, errors.NewPathError(fmt.Sprintf("%s value at %s has no children", node.Kind(), where(at[:len(at)-1])), errors.ErrNotContainer)
}

// withChild returns a shallow clone of node with elem replaced by child.
func withChild(node models.Value, elem models.PathElem, child models.Value) models.Value {
	if node.Kind() == models.KindObject {
		obj := node.AsObject().Clone()
		obj.Set(keyOf(elem), child)
		return models.ObjectValue(obj)
	}
	idx, _ := indexOf(elem)
	items := models.CloneArray(node.AsArray())
	items[idx] = child
	return models.Array(items...)
}

func missingError(node models.Value, elem models.PathElem, at models.Path) error {
	if node.Kind() == models.KindArray {
		idx, _ := indexOf(elem)
		return errors.NewPathError(fmt.Sprintf("index %d out of range at %s (length %d)", idx, where(at), node.Len()), errors.ErrIndexOutOfRange)
	}
	return errors.NewPathError(fmt.Sprintf("key %q not found at %s", keyOf(elem), where(at)), errors.ErrPathNotFound)
}

// keyOf addresses an object; an index element names the key "0", "1", ...
func keyOf(elem models.PathElem) string {
	if elem.IsIndex {
		return strconv.Itoa(elem.Index)
	}
	return elem.Key
}

// indexOf addresses an array; a numeric key is accepted as an index.
func indexOf(elem models.PathElem) (int, bool) {
	if elem.IsIndex {
		return elem.Index, true
	}
	idx, err := strconv.Atoi(elem.Key)
	if err != nil {
		return 0, false
	}
	return idx, true
}

func where(p models.Path) string {
	if len(p) == 0 {
		return "root"
	}
	return p.String()
}
