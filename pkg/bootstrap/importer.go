// Package bootstrap seeds the record store from a legacy aggregated dataset.
//
// The legacy master list holds every criterion keyed by id inside a single
// document. Import splits it into one authored record per id and copies the
// legacy per-criterion detail documents next to them. Derived legacy fields
// are dropped; the build recomputes them.
package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/criteria/pkg/config"
	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/failure"
	"github.com/entrhq/criteria/pkg/jsonfile"
	"github.com/entrhq/criteria/pkg/logging"
	"github.com/entrhq/criteria/pkg/security/workspace"
)

// detailName extracts the criterion id from a legacy detail file name.
var detailName = regexp.MustCompile(`criteria-(\d{3})-detailed\.json$`)

const defaultDetailPattern = "*criteria-*-detailed.json"

// Options override the legacy locations from the layout.
type Options struct {
	// Source is the legacy master list. Empty means the layout's legacy.master_list.
	Source string
	// Details is the legacy details directory. Empty means legacy.details_dir.
	Details string
}

// Result summarizes an import.
type Result struct {
	Written int // records written
	Skipped int // legacy entries that were not objects
	Details int // detail documents copied
}

// Importer translates the legacy dataset into authored records.
type Importer struct {
	cfg   *config.Config
	log   *logging.Logger
	guard *workspace.Guard
}

// NewImporter creates an importer writing into the layout's stores.
func NewImporter(cfg *config.Config, log *logging.Logger) (*Importer, error) {
	if log == nil {
		log = logging.NewNop()
	}
	guard, err := workspace.NewGuard(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace guard: %w", err)
	}
	return &Importer{cfg: cfg, log: log.With("bootstrap"), guard: guard}, nil
}

// legacyMaster is the part of the legacy master list the import reads.
type legacyMaster struct {
	Criteria json.RawMessage `json:"criteria"`
}

// Import projects every legacy entry and lists the detail documents, then
// writes the records in ascending id order and copies the details. Nothing is
// written when either legacy source is missing or malformed.
func (im *Importer) Import(ctx context.Context, opts Options) (*Result, error) {
	source := im.cfg.LegacyMasterPath()
	if opts.Source != "" {
		source = im.cfg.Resolve(opts.Source)
	}
	detailsSrc := im.cfg.LegacyDetailsPath()
	if opts.Details != "" {
		detailsSrc = im.cfg.Resolve(opts.Details)
	}

	records, skipped, err := project(source)
	if err != nil {
		return nil, err
	}
	im.log.Debugf("projected %d legacy entries from %s (%d skipped)", len(records), source, skipped)

	details, err := im.planDetails(detailsSrc)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{im.cfg.CriteriaPath(), im.cfg.DetailsPath()} {
		if err := im.guard.ValidatePath(dir); err != nil {
			return nil, fmt.Errorf("refusing to import: %w", err)
		}
	}
	store, err := criteria.NewFileStore(im.cfg.CriteriaPath(), im.cfg.RecordPattern)
	if err != nil {
		return nil, err
	}

	result := &Result{Skipped: skipped}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := store.Write(ctx, rec); err != nil {
			return result, err
		}
		result.Written++
	}
	im.log.Infof("created/updated %d criteria files in %s", result.Written, im.cfg.CriteriaPath())

	copied, err := im.copyDetails(ctx, details)
	result.Details = copied
	if err != nil {
		return result, err
	}
	if copied > 0 {
		im.log.Infof("copied %d detail files to %s", copied, im.cfg.DetailsPath())
	}
	return result, nil
}

// project reads the legacy master list and turns every object entry into a
// record, sorted by id.
func project(source string) ([]*criteria.Record, int, error) {
	data, err := os.ReadFile(source)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, failure.Wrap(failure.SourceMissing, err, "legacy master list not found").WithPath(source)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read legacy master list: %w", err)
	}

	var master legacyMaster
	if err := json.Unmarshal(data, &master); err != nil {
		return nil, 0, failure.Wrap(failure.SourceMalformed, err, "cannot decode legacy master list").WithPath(source)
	}
	if !isObject(master.Criteria) {
		return nil, 0, failure.New(failure.SourceMalformed, `expected top-level "criteria" object`).WithPath(source)
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(master.Criteria, &entries); err != nil {
		return nil, 0, failure.Wrap(failure.SourceMalformed, err, "cannot decode legacy criteria").WithPath(source)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]*criteria.Record, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		raw := entries[id]
		if !isObject(raw) {
			skipped++
			continue
		}
		if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
			return nil, 0, failure.New(failure.SourceMalformed, "legacy id %q cannot name a record file", id).
				WithPath(source).WithID(id)
		}
		rec, err := projectEntry(id, raw)
		if err != nil {
			return nil, 0, failure.Wrap(failure.SourceMalformed, err, "cannot decode legacy entry").
				WithPath(source).WithID(id)
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// projectEntry keeps id, text, categories and tags. Collections that are not
// arrays become empty; a missing text stays missing.
func projectEntry(id string, raw json.RawMessage) (*criteria.Record, error) {
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}

	rec := criteria.NewRecord(id)
	if err := rec.Set(criteria.FieldID, id); err != nil {
		return nil, err
	}
	if text, ok := entry[criteria.FieldText]; ok {
		rec.SetRaw(criteria.FieldText, text)
	}
	for _, name := range []string{criteria.FieldCategories, criteria.FieldTags} {
		if v, ok := entry[name]; ok && isArray(v) {
			rec.SetRaw(name, v)
		} else {
			rec.SetRaw(name, json.RawMessage("[]"))
		}
	}
	return rec, nil
}

// detailCopy is one legacy detail document and the id it is stored under.
type detailCopy struct {
	src string
	id  string
}

// planDetails lists the legacy detail documents to copy, in name order. A
// missing legacy directory yields nothing.
func (im *Importer) planDetails(src string) ([]detailCopy, error) {
	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) {
		im.log.Debugf("no legacy details directory at %s", src)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat legacy details: %w", err)
	}
	if !info.IsDir() {
		return nil, failure.New(failure.SourceMalformed, "legacy details location is not a directory").WithPath(src)
	}

	pattern := im.cfg.Legacy.DetailPattern
	if pattern == "" {
		pattern = defaultDetailPattern
	}
	match, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid detail pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy details: %w", err)
	}

	var plan []detailCopy
	for _, e := range entries {
		if e.IsDir() || !match.Match(e.Name()) {
			continue
		}
		m := detailName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		plan = append(plan, detailCopy{src: filepath.Join(src, e.Name()), id: m[1]})
	}
	return plan, nil
}

// copyDetails copies every planned detail document byte-for-byte to
// <details>/<id>.json.
func (im *Importer) copyDetails(ctx context.Context, plan []detailCopy) (int, error) {
	copied := 0
	for _, d := range plan {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		data, err := os.ReadFile(d.src)
		if err != nil {
			return copied, fmt.Errorf("failed to read detail %s: %w", d.src, err)
		}
		dst := filepath.Join(im.cfg.DetailsPath(), d.id+".json")
		if err := jsonfile.WriteFile(dst, data); err != nil {
			return copied, fmt.Errorf("failed to copy detail %s: %w", d.src, err)
		}
		copied++
	}
	return copied, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
