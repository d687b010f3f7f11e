// Package validate enforces the structural and referential invariants every
// authored record must satisfy before it can be aggregated.
//
// Checks run per record, in store order, with a fixed precedence:
//
//  1. id is a three-digit string          (InvalidId)
//  2. text is a non-blank string          (MissingText)
//  3. categories and tags are string lists (MalformedField)
//  4. every category is in the taxonomy   (UnknownCategory)
//
// and only once every record passes, cross-record id uniqueness (DuplicateId).
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/failure"
	"github.com/entrhq/criteria/pkg/taxonomy"
)

var idPattern = regexp.MustCompile(`^[0-9]{3}$`)

// IsID reports whether s has the shape of a criterion id.
func IsID(s string) bool {
	return idPattern.MatchString(s)
}

// Validator checks records against a taxonomy.
type Validator struct {
	tax *taxonomy.Taxonomy
}

// New creates a Validator for tax.
func New(tax *taxonomy.Taxonomy) *Validator {
	return &Validator{tax: tax}
}

// Validate checks every record and returns the criteria sorted by id, or the
// first violation found.
func (v *Validator) Validate(records []*criteria.Record) ([]criteria.Criterion, error) {
	list := make([]criteria.Criterion, 0, len(records))
	for _, rec := range records {
		c, err := v.Check(rec)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if errs := duplicates(list); len(errs) > 0 {
		return nil, errs[0]
	}
	sortByID(list)
	return list, nil
}

// CollectAll checks every record and returns every violation: at most one per
// record, the one Validate would report for it, followed by duplicate ids.
// Duplicate ids are only reported when every record passes its own checks.
// The first element is always the error Validate returns.
func (v *Validator) CollectAll(records []*criteria.Record) []error {
	var errs []error
	list := make([]criteria.Criterion, 0, len(records))
	for _, rec := range records {
		c, err := v.Check(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		list = append(list, c)
	}
	if len(errs) > 0 {
		return errs
	}
	return duplicates(list)
}

// Check runs the per-record checks on a single record.
func (v *Validator) Check(rec *criteria.Record) (criteria.Criterion, error) {
	c := criteria.Criterion{Name: rec.Name}

	id, ok := stringField(rec, criteria.FieldID)
	if !ok || !IsID(id) {
		raw, _ := rec.Field(criteria.FieldID)
		return c, failure.New(failure.InvalidID, "invalid id %s", describe(raw)).
			WithPath(rec.Path).WithField(criteria.FieldID)
	}
	c.ID = id

	text, ok := stringField(rec, criteria.FieldText)
	if !ok || strings.TrimSpace(text) == "" {
		return c, failure.New(failure.MissingText, "missing or empty text for id %s", id).
			WithPath(rec.Path).WithID(id).WithField(criteria.FieldText)
	}
	c.Text = text

	var err error
	if c.Categories, err = stringList(rec, criteria.FieldCategories); err != nil {
		return c, err
	}
	if c.Tags, err = stringList(rec, criteria.FieldTags); err != nil {
		return c, err
	}

	for _, key := range c.Categories {
		if !v.tax.Has(key) {
			return c, failure.New(failure.UnknownCategory, "unknown category '%s' for id %s; allowed: %s", key, id, v.tax.Allowed()).
				WithPath(rec.Path).WithID(id).WithField(criteria.FieldCategories)
		}
	}
	return c, nil
}

func duplicates(list []criteria.Criterion) []error {
	var errs []error
	seen := make(map[string]string, len(list))
	for _, c := range list {
		if first, ok := seen[c.ID]; ok {
			errs = append(errs, failure.New(failure.DuplicateID, "duplicate id %s across files %s and %s", c.ID, first, c.Name).
				WithID(c.ID).WithField(criteria.FieldID))
			continue
		}
		seen[c.ID] = c.Name
	}
	return errs
}

// sortByID imposes the canonical order. Ids are fixed-width digit strings, so
// lexical order is numeric order.
func sortByID(list []criteria.Criterion) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

func stringField(rec *criteria.Record, name string) (string, bool) {
	raw, ok := rec.Field(name)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func stringList(rec *criteria.Record, name string) ([]string, error) {
	malformed := func(format string, args ...any) error {
		id, _ := stringField(rec, criteria.FieldID)
		return failure.New(failure.MalformedField, format, args...).
			WithPath(rec.Path).WithID(id).WithField(name)
	}

	raw, ok := rec.Field(name)
	trimmed := bytes.TrimSpace(raw)
	if !ok || len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, malformed("%s must be an array", name)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, malformed("%s must be an array", name)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, malformed("%s[%d] must be a string, got %s", name, i, describe(item))
		}
		out = append(out, s)
	}
	return out, nil
}

func describe(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "<missing>"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// ByKind counts violations per failure kind, e.g. "InvalidId=1 MissingText=2",
// kinds in name order.
func ByKind(errs []error) string {
	counts := make(map[failure.Kind]int)
	for _, err := range errs {
		counts[failure.KindOf(err)]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		name := k
		if name == "" {
			name = "other"
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, counts[failure.Kind(k)]))
	}
	return strings.Join(parts, " ")
}

// Summary renders a short description of a violation list.
func Summary(errs []error) string {
	switch len(errs) {
	case 0:
		return "no violations"
	case 1:
		return "1 violation"
	default:
		return fmt.Sprintf("%d violations", len(errs))
	}
}
