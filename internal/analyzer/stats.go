package analyzer

import (
	"sort"

	"github.com/mcncl/jsonsync/internal/models"
)

// Summary describes the shape of a document.
type Summary struct {
	RootType string         `json:"root_type"`
	Nodes    int            `json:"nodes"`
	MaxDepth int            `json:"max_depth"`
	Counts   map[string]int `json:"counts"`
	// Integers and Floats split the "number" count.
	Integers int `json:"integers"`
	Floats   int `json:"floats"`
	// Packed lists the paths of string nodes that look like serialized JSON
	// and can be unpacked in place.
	Packed []string `json:"packed,omitempty"`
}

// Analyzer walks a value and accumulates a Summary.
type Analyzer struct {
	summary Summary
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns the summary of v.
func (a *Analyzer) Analyze(v models.Value) Summary {
	a.summary = Summary{
		RootType: TypeOf(v),
		Counts:   make(map[string]int),
	}
	a.analyzeNode(v, nil, 0)
	sort.Strings(a.summary.Packed)
	return a.summary
}

func (a *Analyzer) analyzeNode(v models.Value, path models.Path, depth int) {
	a.summary.Nodes++
	a.summary.Counts[TypeOf(v)]++
	if depth > a.summary.MaxDepth {
		a.summary.MaxDepth = depth
	}

	switch v.Kind() {
	case models.KindNumber:
		if _, err := v.AsNumber().Int64(); err == nil {
			a.summary.Integers++
		} else {
			a.summary.Floats++
		}
	case models.KindString:
		if IsJSONString(v.AsString()) {
			a.summary.Packed = append(a.summary.Packed, path.String())
		}
	case models.KindObject:
		for _, m := range v.AsObject().Members() {
			a.analyzeNode(m.Value, path.Child(models.Key(m.Key)), depth+1)
		}
	case models.KindArray:
		for i, item := range v.AsArray() {
			a.analyzeNode(item, path.Child(models.Index(i)), depth+1)
		}
	}
}
