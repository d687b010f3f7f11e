package build

import (
	"sort"

	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/taxonomy"
)

// Header is stamped on every generated artifact.
type Header struct {
	Version     string
	Source      string
	Description string
}

// MasterIndex is the generated document indexing every criterion by id.
type MasterIndex struct {
	Version       string                `json:"version"`
	Generated     bool                  `json:"generated"`
	Source        string                `json:"source"`
	TotalCriteria int                   `json:"total_criteria"`
	Description   string                `json:"description"`
	Criteria      map[string]IndexEntry `json:"criteria"`
}

// IndexEntry is one criterion in the master index.
type IndexEntry struct {
	Text           string                  `json:"text"`
	Categories     []string                `json:"categories"`
	Tags           []string                `json:"tags"`
	CategoriesInfo []taxonomy.CategoryInfo `json:"categories_info"`
}

// CategoryView is the generated projection of one category.
type CategoryView struct {
	Version     string      `json:"version"`
	Generated   bool        `json:"generated"`
	Category    string      `json:"category"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Criteria    []ViewEntry `json:"criteria"`
}

// ViewEntry is one criterion in a category view.
type ViewEntry struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// Stats is the generated statistics summary.
type Stats struct {
	Version    string         `json:"version"`
	Generated  bool           `json:"generated"`
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	MaxID      *string        `json:"max_id"`
}

// Artifacts is everything one build produces.
type Artifacts struct {
	Master MasterIndex
	Views  []CategoryView // one per taxonomy key, ascending key order
	Stats  Stats
}

// Aggregate projects validated criteria onto the three generated artifacts.
// It is a pure function of its inputs; list is ordered by id before use.
func Aggregate(list []criteria.Criterion, tax *taxonomy.Taxonomy, h Header) *Artifacts {
	sorted := make([]criteria.Criterion, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	a := &Artifacts{
		Master: MasterIndex{
			Version:       h.Version,
			Generated:     true,
			Source:        h.Source,
			TotalCriteria: len(sorted),
			Description:   h.Description,
			Criteria:      make(map[string]IndexEntry, len(sorted)),
		},
		Stats: Stats{
			Version:    h.Version,
			Generated:  true,
			Total:      len(sorted),
			ByCategory: make(map[string]int, tax.Len()),
		},
	}

	for _, c := range sorted {
		a.Master.Criteria[c.ID] = IndexEntry{
			Text:           c.Text,
			Categories:     c.SortedCategories(),
			Tags:           c.SortedTags(),
			CategoriesInfo: c.CategoriesInfo(tax),
		}
	}

	for _, key := range tax.Keys() {
		meta := tax.Lookup(key)
		view := CategoryView{
			Version:     h.Version,
			Generated:   true,
			Category:    key,
			Name:        meta.Title,
			Description: meta.Description,
			Criteria:    []ViewEntry{},
		}
		for _, c := range sorted {
			if !c.InCategory(key) {
				continue
			}
			view.Criteria = append(view.Criteria, ViewEntry{ID: c.ID, Text: c.Text, Tags: c.SortedTags()})
		}
		a.Views = append(a.Views, view)
		a.Stats.ByCategory[key] = len(view.Criteria)
	}

	if n := len(sorted); n > 0 {
		maxID := sorted[n-1].ID
		a.Stats.MaxID = &maxID
	}
	return a
}
