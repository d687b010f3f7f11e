package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Field names of an authored criterion document.
const (
	FieldID             = "id"
	FieldText           = "text"
	FieldCategories     = "categories"
	FieldTags           = "tags"
	FieldCategoriesInfo = "categories_info"
)

// fieldOrder is the order known fields are written in. Any other field
// follows in the order it was authored.
var fieldOrder = []string{FieldID, FieldText, FieldCategories, FieldTags, FieldCategoriesInfo}

var knownFields = map[string]bool{
	FieldID:             true,
	FieldText:           true,
	FieldCategories:     true,
	FieldTags:           true,
	FieldCategoriesInfo: true,
}

// Record is an authored criterion document exactly as stored: a JSON object
// whose fields are kept raw. Typed interpretation is the validator's job.
type Record struct {
	// Name is the file name inside the store, e.g. "001.json".
	Name string
	// Path is the full path the record was read from or will be written to.
	Path string

	fields map[string]json.RawMessage
	extra  []string // non-known field names, first-seen order
}

// NewRecord creates an empty record for the given store key.
func NewRecord(key string) *Record {
	return &Record{
		Name:   key + recordExt,
		fields: make(map[string]json.RawMessage),
	}
}

// ParseRecord decodes a record document. The document must be a JSON object.
// A field repeated in the document keeps its first position and last value.
func ParseRecord(name string, data []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("record is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	rec := &Record{Name: name, fields: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		rec.SetRaw(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after record object")
	}
	return rec, nil
}

// Key returns the filename-derived identifier of the record.
func (r *Record) Key() string {
	return strings.TrimSuffix(r.Name, recordExt)
}

// Field returns the raw value of a field and whether it is present.
func (r *Record) Field(name string) (json.RawMessage, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Set replaces a field with the JSON encoding of v.
func (r *Record) Set(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode field %s: %w", name, err)
	}
	r.SetRaw(name, bytes.TrimRight(buf.Bytes(), "\n"))
	return nil
}

// SetRaw replaces a field with an already-encoded JSON value. A new
// non-known field is written after the existing ones.
func (r *Record) SetRaw(name string, raw json.RawMessage) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	if _, ok := r.fields[name]; !ok && !knownFields[name] {
		r.extra = append(r.extra, name)
	}
	r.fields[name] = raw
}

// Fields returns the names of all fields in write order: known fields first,
// then the rest as authored.
func (r *Record) Fields() []string {
	names := make([]string, 0, len(r.fields))
	for _, name := range fieldOrder {
		if _, ok := r.fields[name]; ok {
			names = append(names, name)
		}
	}
	return append(names, r.extra...)
}

// MarshalJSON writes known fields first, then the rest as authored.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, r.fields[name]); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StringList decodes a field as a list of strings, skipping entries that are
// not strings. A missing or non-array field yields an empty list.
func (r *Record) StringList(name string) []string {
	out := []string{}
	raw, ok := r.fields[name]
	if !ok {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}
