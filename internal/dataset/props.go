// Package dataset holds the annotated, multi-strain sequence data model:
// a Dataset of genes, each gene a list of strains, each strain a sorted
// list of typed sequence regions.
//
// Entities are built by importers, then merged, sorted and edited in place.
// Nothing here is safe for concurrent mutation; concurrent readers are fine
// while no writer is active.
package dataset

import (
	"sort"

	"golang.org/x/text/cases"
)

// Properties is the per-entity annotation bag. Known keys get typed
// accessors; everything else goes into an open string-keyed map.
type Properties struct {
	quality    int
	hasQuality bool
	tags       map[string]any
}

// Set stores value under key and returns the previous value, if any.
// An empty key is ignored.
func (p *Properties) Set(key string, value any) (any, bool) {
	if key == "" {
		return nil, false
	}
	if p.tags == nil {
		p.tags = make(map[string]any)
	}
	prev, had := p.tags[key]
	p.tags[key] = value
	return prev, had
}

// Get returns the value stored under key. Keys are case-sensitive.
func (p *Properties) Get(key string) (any, bool) {
	v, ok := p.tags[key]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (p *Properties) Delete(key string) bool {
	if _, ok := p.tags[key]; !ok {
		return false
	}
	delete(p.tags, key)
	return true
}

// Keys returns the annotation keys in sorted order.
func (p *Properties) Keys() []string {
	keys := make([]string, 0, len(p.tags))
	for k := range p.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetQuality records the externally assigned quality level.
func (p *Properties) SetQuality(level int) {
	p.quality = level
	p.hasQuality = true
}

// Quality returns the quality level and whether one was set.
func (p *Properties) Quality() (int, bool) {
	return p.quality, p.hasQuality
}

// fold normalizes an identity string for case-insensitive comparison.
// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
