// Package enrich denormalizes taxonomy metadata into the authored records.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/entrhq/criteria/pkg/config"
	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/jsonfile"
	"github.com/entrhq/criteria/pkg/logging"
	"github.com/entrhq/criteria/pkg/security/workspace"
	"github.com/entrhq/criteria/pkg/taxonomy"
)

// Result summarizes an enrich run.
type Result struct {
	Updated   int
	Unchanged int
}

// Enricher recomputes categories_info on every record.
type Enricher struct {
	cfg   *config.Config
	log   *logging.Logger
	guard *workspace.Guard
}

// NewEnricher creates an enricher for the given layout.
func NewEnricher(cfg *config.Config, log *logging.Logger) (*Enricher, error) {
	if log == nil {
		log = logging.NewNop()
	}
	guard, err := workspace.NewGuard(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace guard: %w", err)
	}
	return &Enricher{cfg: cfg, log: log.With("enrich"), guard: guard}, nil
}

// Run sets categories_info from each record's categories and the taxonomy.
// A record is rewritten only when its encoded form changes, so a second run
// updates nothing. Records are not validated; unknown keys resolve to their
// default metadata.
func (e *Enricher) Run(ctx context.Context) (*Result, error) {
	tax, err := taxonomy.Load(e.cfg.TaxonomyPath())
	if err != nil {
		return nil, err
	}

	store, err := criteria.NewFileStore(e.cfg.CriteriaPath(), e.cfg.RecordPattern)
	if err != nil {
		return nil, err
	}
	if err := e.guard.ValidatePath(store.Dir()); err != nil {
		return nil, fmt.Errorf("refusing to enrich: %w", err)
	}
	records, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		changed, err := e.enrich(ctx, store, tax, rec)
		if err != nil {
			return result, err
		}
		if changed {
			result.Updated++
			e.log.Debugf("updated %s", rec.Name)
		} else {
			result.Unchanged++
		}
	}

	e.log.Infof("updated %d criteria files with categories_info (%d unchanged)", result.Updated, result.Unchanged)
	return result, nil
}

func (e *Enricher) enrich(ctx context.Context, store *criteria.FileStore, tax *taxonomy.Taxonomy, rec *criteria.Record) (bool, error) {
	info := tax.Resolve(rec.StringList(criteria.FieldCategories))
	if err := rec.Set(criteria.FieldCategoriesInfo, info); err != nil {
		return false, err
	}

	next, err := jsonfile.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", rec.Path, err)
	}
	current, err := os.ReadFile(rec.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", rec.Path, err)
	}
	if bytes.Equal(current, next) {
		return false, nil
	}

	// Records are keyed by file name, which may differ from the id field.
	if err := store.Write(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}
