// Package criteria holds the authored criterion records and the file-backed
// store they live in.
//
// Records are kept one per file as <id>.json. The store reads and rewrites
// them wholesale and never validates their contents; see package validate.
package criteria

import "github.com/entrhq/criteria/pkg/taxonomy"

// Criterion is a validated authored record.
type Criterion struct {
	ID         string
	Text       string
	Categories []string
	Tags       []string

	// Name is the store file the criterion came from.
	Name string
}

// CategoriesInfo resolves the criterion's categories against tax. The result
// is the denormalized categories_info cache and is always recomputed, never
// stored on the Criterion.
func (c Criterion) CategoriesInfo(tax *taxonomy.Taxonomy) []taxonomy.CategoryInfo {
	return tax.Resolve(c.Categories)
}

// SortedCategories returns the canonical category list.
func (c Criterion) SortedCategories() []string {
	return taxonomy.Canonical(c.Categories)
}

// SortedTags returns the canonical tag list.
func (c Criterion) SortedTags() []string {
	return taxonomy.Canonical(c.Tags)
}

// InCategory reports whether the criterion belongs to key.
func (c Criterion) InCategory(key string) bool {
	for _, k := range c.Categories {
		if k == key {
			return true
		}
	}
	return false
}
