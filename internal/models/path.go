package models

import (
	"strconv"
	"strings"
)

// PathElem addresses one level of a document: an object key or an array index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key path element.
func Key(k string) PathElem { return PathElem{Key: k} }

// Index returns an array-index path element.
func Index(i int) PathElem { return PathElem{Index: i, IsIndex: true} }

// String renders the element the way it appears in a dotted path.
func (e PathElem) String() string {
	if e.IsIndex {
		return strconv.Itoa(e.Index)
	}
	return e.Key
}

// Path is an ordered list of elements from the root. An empty Path is the root.
type Path []PathElem

// String joins the elements with dots, e.g. "users.0.name".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		parts[i] = e.String()
	}
	return strings.Join(parts, ".")
}

// Child returns a new path with e appended. p is left untouched.
func (p Path) Child(e PathElem) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, e)
}
