package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/failure"
	"github.com/entrhq/criteria/pkg/taxonomy"
)

func testTaxonomy() *taxonomy.Taxonomy {
	return taxonomy.New(
		taxonomy.Category{Key: "perf", Title: "Performance"},
		taxonomy.Category{Key: "safety", Title: "Safety"},
	)
}

func record(t *testing.T, name, content string) *criteria.Record {
	t.Helper()
	rec, err := criteria.ParseRecord(name, []byte(content))
	require.NoError(t, err)
	rec.Path = "criteria/" + name
	return rec
}

func TestValidate_SortsByID(t *testing.T) {
	records := []*criteria.Record{
		record(t, "a.json", `{"id": "010", "text": "ten", "categories": ["safety"], "tags": []}`),
		record(t, "b.json", `{"id": "002", "text": "two", "categories": [], "tags": ["x"]}`),
		record(t, "c.json", `{"id": "100", "text": "hundred", "categories": ["perf", "safety"], "tags": []}`),
	}

	list, err := New(testTaxonomy()).Validate(records)
	require.NoError(t, err)

	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"002", "010", "100"}, ids)
	assert.Equal(t, "two", list[0].Text)
	assert.Equal(t, []string{"x"}, list[0].Tags)
	assert.Equal(t, "c.json", list[2].Name)
}

func TestValidate_EmptySet(t *testing.T) {
	list, err := New(testTaxonomy()).Validate(nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCheck_Violations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    failure.Kind
		field   string
		message string
	}{
		{name: "missing id", content: `{"text": "x", "categories": [], "tags": []}`, kind: failure.InvalidID, field: "id", message: "<missing>"},
		{name: "numeric id", content: `{"id": 1, "text": "x", "categories": [], "tags": []}`, kind: failure.InvalidID, field: "id", message: "invalid id 1"},
		{name: "short id", content: `{"id": "01", "text": "x", "categories": [], "tags": []}`, kind: failure.InvalidID, field: "id"},
		{name: "long id", content: `{"id": "0001", "text": "x", "categories": [], "tags": []}`, kind: failure.InvalidID, field: "id"},
		{name: "non-ascii digits", content: `{"id": "١٢٣", "text": "x", "categories": [], "tags": []}`, kind: failure.InvalidID, field: "id"},
		{name: "missing text", content: `{"id": "001", "categories": [], "tags": []}`, kind: failure.MissingText, field: "text"},
		{name: "blank text", content: `{"id": "001", "text": "  \t\n", "categories": [], "tags": []}`, kind: failure.MissingText, field: "text"},
		{name: "non-string text", content: `{"id": "001", "text": 5, "categories": [], "tags": []}`, kind: failure.MissingText, field: "text"},
		{name: "categories missing", content: `{"id": "001", "text": "x", "tags": []}`, kind: failure.MalformedField, field: "categories"},
		{name: "categories string", content: `{"id": "001", "text": "x", "categories": "safety", "tags": []}`, kind: failure.MalformedField, field: "categories"},
		{name: "categories element", content: `{"id": "001", "text": "x", "categories": ["safety", 3], "tags": []}`, kind: failure.MalformedField, field: "categories", message: "categories[1] must be a string, got 3"},
		{name: "tags null", content: `{"id": "001", "text": "x", "categories": [], "tags": null}`, kind: failure.MalformedField, field: "tags"},
		{name: "unknown category", content: `{"id": "001", "text": "x", "categories": ["nonexistent"], "tags": []}`, kind: failure.UnknownCategory, field: "categories", message: "unknown category 'nonexistent' for id 001; allowed: perf, safety"},
	}

	v := New(testTaxonomy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Check(record(t, "001.json", tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var fe *failure.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, "criteria/001.json", fe.Path)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestCheck_Precedence(t *testing.T) {
	v := New(testTaxonomy())

	// Everything is wrong; the id check wins.
	_, err := v.Check(record(t, "x.json", `{"id": "x", "text": "", "categories": "no", "tags": 1}`))
	assert.ErrorIs(t, err, failure.InvalidID)

	// Text beats shape.
	_, err = v.Check(record(t, "x.json", `{"id": "001", "text": "", "categories": "no"}`))
	assert.ErrorIs(t, err, failure.MissingText)

	// Shape of tags beats an unknown category.
	_, err = v.Check(record(t, "x.json", `{"id": "001", "text": "t", "categories": ["nope"], "tags": "no"}`))
	assert.ErrorIs(t, err, failure.MalformedField)
}

func TestValidate_FailFastInStoreOrder(t *testing.T) {
	records := []*criteria.Record{
		record(t, "001.json", `{"id": "001", "text": "ok", "categories": [], "tags": []}`),
		record(t, "002.json", `{"id": "002", "text": "", "categories": [], "tags": []}`),
		record(t, "003.json", `{"id": "03", "text": "ok", "categories": [], "tags": []}`),
	}

	_, err := New(testTaxonomy()).Validate(records)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.MissingText)
	assert.Contains(t, err.Error(), "002.json")
}

func TestValidate_DuplicateID(t *testing.T) {
	records := []*criteria.Record{
		record(t, "001.json", `{"id": "001", "text": "a", "categories": [], "tags": []}`),
		record(t, "001-copy.json", `{"id": "001", "text": "b", "categories": [], "tags": []}`),
	}

	_, err := New(testTaxonomy()).Validate(records)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.DuplicateID)
	assert.Contains(t, err.Error(), "001.json and 001-copy.json")
}

func TestValidate_PerRecordChecksBeforeUniqueness(t *testing.T) {
	records := []*criteria.Record{
		record(t, "001.json", `{"id": "001", "text": "a", "categories": [], "tags": []}`),
		record(t, "002.json", `{"id": "001", "text": "b", "categories": [], "tags": []}`),
		record(t, "003.json", `{"id": "003", "text": "c", "categories": ["nope"], "tags": []}`),
	}

	_, err := New(testTaxonomy()).Validate(records)
	assert.ErrorIs(t, err, failure.UnknownCategory)
}

func TestCollectAll(t *testing.T) {
	v := New(testTaxonomy())
	records := []*criteria.Record{
		record(t, "001.json", `{"id": "001", "text": "", "categories": [], "tags": []}`),
		record(t, "002.json", `{"id": "002", "text": "ok", "categories": ["nope"], "tags": []}`),
		record(t, "003.json", `{"id": "003", "text": "ok", "categories": [], "tags": []}`),
	}

	errs := v.CollectAll(records)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], failure.MissingText)
	assert.ErrorIs(t, errs[1], failure.UnknownCategory)

	_, first := v.Validate(records)
	assert.Equal(t, first.Error(), errs[0].Error())
	assert.Equal(t, "2 violations", Summary(errs))
	assert.Equal(t, "MissingText=1 UnknownCategory=1", ByKind(errs))

	dups := v.CollectAll([]*criteria.Record{
		record(t, "a.json", `{"id": "001", "text": "a", "categories": [], "tags": []}`),
		record(t, "b.json", `{"id": "001", "text": "b", "categories": [], "tags": []}`),
		record(t, "c.json", `{"id": "001", "text": "c", "categories": [], "tags": []}`),
	})
	require.Len(t, dups, 2)
	assert.ErrorIs(t, dups[0], failure.DuplicateID)

	assert.Empty(t, v.CollectAll(nil))
	assert.Equal(t, "", ByKind(nil))
	assert.Equal(t, "DuplicateId=2", ByKind(dups))
}

func TestIsID(t *testing.T) {
	assert.True(t, IsID("000"))
	assert.True(t, IsID("999"))
	assert.False(t, IsID("1000"))
	assert.False(t, IsID("12a"))
	assert.False(t, IsID("123\n"))
}
