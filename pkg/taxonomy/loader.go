package taxonomy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/entrhq/criteria/pkg/failure"
)

type document struct {
	Categories json.RawMessage `json:"categories"`
}

type entry struct {
	Title       *string `json:"title"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Load reads the taxonomy document at path.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, failure.Wrap(failure.ConfigMissing, err, "taxonomy not found").WithPath(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy %s: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		var fe *failure.Error
		if errors.As(err, &fe) {
			fe.WithPath(path)
		}
		return nil, err
	}
	return t, nil
}

// Parse decodes a taxonomy document of the form
// {"categories": {"<key>": {"title"?, "name"?, "description"?}}}.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, failure.Wrap(failure.ConfigMalformed, err, "taxonomy is not a JSON object")
	}

	raw := bytes.TrimSpace(doc.Categories)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, failure.New(failure.ConfigMalformed, "expected non-empty categories object").WithField("categories")
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, failure.Wrap(failure.ConfigMalformed, err, "invalid categories object").WithField("categories")
	}
	if len(entries) == 0 {
		return nil, failure.New(failure.ConfigMalformed, "expected non-empty categories object").WithField("categories")
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	categories := make([]Category, 0, len(entries))
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return nil, err
		}
		c, err := parseEntry(key, entries[key])
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return New(categories...), nil
}

func parseEntry(key string, raw json.RawMessage) (Category, error) {
	c := Category{Key: key}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		c.Title = key
		return c, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return c, failure.New(failure.ConfigMalformed, "category %q must be an object", key).WithField("categories." + key)
	}

	var e entry
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return c, failure.Wrap(failure.ConfigMalformed, err, "category %q has non-string metadata", key).WithField("categories." + key)
	}

	switch {
	case e.Title != nil && *e.Title != "":
		c.Title = *e.Title
	case e.Name != nil && *e.Name != "":
		c.Title = *e.Name
	default:
		c.Title = key
	}
	if e.Description != nil {
		c.Description = *e.Description
	}
	return c, nil
}

// validateKey rejects keys that cannot name a category view file.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return failure.New(failure.ConfigMalformed, "invalid category key %q", key).WithField("categories")
	}
	return nil
}
