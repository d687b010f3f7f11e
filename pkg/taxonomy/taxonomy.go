// Package taxonomy loads the closed vocabulary of category keys that every
// criterion must conform to, together with each category's display metadata.
//
// A Taxonomy is immutable once loaded and is passed explicitly to the
// validator, the aggregator and the enricher.
package taxonomy

import (
	"sort"
	"strings"
)

// Category is the display metadata for one category key.
type Category struct {
	Key         string
	Title       string
	Description string
}

// CategoryInfo is the resolved form of a category stored in a criterion's
// categories_info cache and in the master index.
type CategoryInfo struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Taxonomy is the loaded set of categories.
type Taxonomy struct {
	keys       []string
	categories map[string]Category
}

// New builds a Taxonomy from already-resolved categories. It is used by
// Parse and by tests; duplicate keys keep the last entry.
func New(categories ...Category) *Taxonomy {
	t := &Taxonomy{categories: make(map[string]Category, len(categories))}
	for _, c := range categories {
		if c.Title == "" {
			c.Title = c.Key
		}
		t.categories[c.Key] = c
	}
	t.keys = make([]string, 0, len(t.categories))
	for k := range t.categories {
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	return t
}

// Keys returns every category key in ascending order.
func (t *Taxonomy) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.keys)
}

// Has reports whether key is part of the taxonomy.
func (t *Taxonomy) Has(key string) bool {
	_, ok := t.categories[key]
	return ok
}

// Lookup returns the metadata for key. Keys outside the taxonomy resolve to
// {title: key, description: ""}.
func (t *Taxonomy) Lookup(key string) Category {
	if c, ok := t.categories[key]; ok {
		return c
	}
	return Category{Key: key, Title: key}
}

// Allowed renders the key set for error messages.
func (t *Taxonomy) Allowed() string {
	return strings.Join(t.keys, ", ")
}

// Resolve maps category keys to their CategoryInfo, sorted by key with
// duplicates removed. It never returns nil.
func (t *Taxonomy) Resolve(keys []string) []CategoryInfo {
	out := make([]CategoryInfo, 0, len(keys))
	for _, key := range Canonical(keys) {
		c := t.Lookup(key)
		out = append(out, CategoryInfo{Key: key, Title: c.Title, Description: c.Description})
	}
	return out
}

// Canonical returns a sorted, de-duplicated copy of a string set. It never
// returns nil.
func Canonical(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)

	uniq := out[:0]
	for i, v := range out {
		if i > 0 && v == out[i-1] {
			continue
		}
		uniq = append(uniq, v)
	}
	return uniq
}
