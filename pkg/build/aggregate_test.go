package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/taxonomy"
)

var testHeader = Header{Version: "3.0", Source: "criteria/*.json", Description: "generated"}

func TestAggregate_WorkedExample(t *testing.T) {
	tax := taxonomy.New(taxonomy.Category{Key: "safety", Title: "Safety"})
	list := []criteria.Criterion{
		{ID: "001", Text: "Must not crash", Categories: []string{"safety"}, Tags: []string{"core"}},
	}

	a := Aggregate(list, tax, testHeader)

	require.Contains(t, a.Master.Criteria, "001")
	assert.Equal(t, []taxonomy.CategoryInfo{{Key: "safety", Title: "Safety", Description: ""}}, a.Master.Criteria["001"].CategoriesInfo)
	assert.Equal(t, 1, a.Master.TotalCriteria)
	assert.True(t, a.Master.Generated)
	assert.Equal(t, "criteria/*.json", a.Master.Source)

	require.Len(t, a.Views, 1)
	assert.Equal(t, "safety", a.Views[0].Category)
	assert.Equal(t, "Safety", a.Views[0].Name)
	assert.Equal(t, []ViewEntry{{ID: "001", Text: "Must not crash", Tags: []string{"core"}}}, a.Views[0].Criteria)

	assert.Equal(t, 1, a.Stats.Total)
	assert.Equal(t, map[string]int{"safety": 1}, a.Stats.ByCategory)
	require.NotNil(t, a.Stats.MaxID)
	assert.Equal(t, "001", *a.Stats.MaxID)
}

func TestAggregate_OrderingAndCounts(t *testing.T) {
	tax := taxonomy.New(
		taxonomy.Category{Key: "ux", Title: "UX"},
		taxonomy.Category{Key: "perf", Title: "Performance", Description: "Speed"},
		taxonomy.Category{Key: "empty", Title: "Empty"},
	)
	// Deliberately out of order; Aggregate must impose id order.
	list := []criteria.Criterion{
		{ID: "010", Text: "ten", Categories: []string{"ux", "perf"}, Tags: []string{"b", "a", "b"}},
		{ID: "002", Text: "two", Categories: []string{"perf"}, Tags: []string{}},
		{ID: "100", Text: "hundred", Categories: []string{"ux"}, Tags: []string{"z"}},
	}

	a := Aggregate(list, tax, testHeader)

	entry := a.Master.Criteria["010"]
	assert.Equal(t, []string{"perf", "ux"}, entry.Categories)
	assert.Equal(t, []string{"a", "b"}, entry.Tags)
	assert.Equal(t, []taxonomy.CategoryInfo{
		{Key: "perf", Title: "Performance", Description: "Speed"},
		{Key: "ux", Title: "UX", Description: ""},
	}, entry.CategoriesInfo)

	keys := make([]string, 0, len(a.Views))
	for _, v := range a.Views {
		keys = append(keys, v.Category)
	}
	assert.Equal(t, []string{"empty", "perf", "ux"}, keys)

	assert.Equal(t, []ViewEntry{}, a.Views[0].Criteria)
	assert.Equal(t, []ViewEntry{
		{ID: "002", Text: "two", Tags: []string{}},
		{ID: "010", Text: "ten", Tags: []string{"a", "b"}},
	}, a.Views[1].Criteria)
	assert.Equal(t, []ViewEntry{
		{ID: "010", Text: "ten", Tags: []string{"a", "b"}},
		{ID: "100", Text: "hundred", Tags: []string{"z"}},
	}, a.Views[2].Criteria)

	assert.Equal(t, map[string]int{"empty": 0, "perf": 2, "ux": 2}, a.Stats.ByCategory)
	assert.Equal(t, "100", *a.Stats.MaxID)

	assert.Equal(t, "010", list[0].ID, "input must not be reordered")
}

func TestAggregate_Empty(t *testing.T) {
	tax := taxonomy.New(taxonomy.Category{Key: "safety", Title: "Safety"})

	a := Aggregate(nil, tax, testHeader)

	assert.Empty(t, a.Master.Criteria)
	assert.NotNil(t, a.Master.Criteria)
	assert.Equal(t, 0, a.Stats.Total)
	assert.Nil(t, a.Stats.MaxID)
	assert.Equal(t, map[string]int{"safety": 0}, a.Stats.ByCategory)

	files, err := a.Render(Layout{MasterPath: "m.json", StatsPath: "s.json", CategoriesDir: "cat"})
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Contains(t, string(files[2].Data), `"max_id": null`)
	assert.Contains(t, string(files[0].Data), `"criteria": {}`)
	assert.Contains(t, string(files[1].Data), `"criteria": []`)
}

func TestRender_ExactBytes(t *testing.T) {
	tax := taxonomy.New(taxonomy.Category{Key: "safety", Title: "Safety"})
	list := []criteria.Criterion{
		{ID: "002", Text: "Second", Categories: []string{}, Tags: []string{}},
		{ID: "001", Text: "Must not crash", Categories: []string{"safety"}, Tags: []string{"core"}},
	}

	files, err := Aggregate(list, tax, testHeader).Render(Layout{
		MasterPath:    "_master-list.json",
		StatsPath:     "stats.json",
		CategoriesDir: "categories",
	})
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "_master-list.json", files[0].Path)
	assert.Equal(t, `{
  "version": "3.0",
  "generated": true,
  "source": "criteria/*.json",
  "total_criteria": 2,
  "description": "generated",
  "criteria": {
    "001": {
      "text": "Must not crash",
      "categories": [
        "safety"
      ],
      "tags": [
        "core"
      ],
      "categories_info": [
        {
          "key": "safety",
          "title": "Safety",
          "description": ""
        }
      ]
    },
    "002": {
      "text": "Second",
      "categories": [],
      "tags": [],
      "categories_info": []
    }
  }
}
`, string(files[0].Data))

	assert.Equal(t, "categories/safety.json", files[1].Path)
	assert.Equal(t, `{
  "version": "3.0",
  "generated": true,
  "category": "safety",
  "name": "Safety",
  "description": "",
  "criteria": [
    {
      "id": "001",
      "text": "Must not crash",
      "tags": [
        "core"
      ]
    }
  ]
}
`, string(files[1].Data))

	assert.Equal(t, "stats.json", files[2].Path)
	assert.Equal(t, `{
  "version": "3.0",
  "generated": true,
  "total": 2,
  "by_category": {
    "safety": 1
  },
  "max_id": "002"
}
`, string(files[2].Data))
}
