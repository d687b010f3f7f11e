package build

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/entrhq/criteria/pkg/config"
	"github.com/entrhq/criteria/pkg/criteria"
	"github.com/entrhq/criteria/pkg/failure"
	"github.com/entrhq/criteria/pkg/jsonfile"
	"github.com/entrhq/criteria/pkg/logging"
	"github.com/entrhq/criteria/pkg/security/workspace"
	"github.com/entrhq/criteria/pkg/taxonomy"
	"github.com/entrhq/criteria/pkg/validate"
)

// Options tune a build run.
type Options struct {
	// Force overwrites generated artifacts even if they were hand-edited.
	Force bool
	// DryRun renders and checks everything but writes nothing.
	DryRun bool
}

// Result summarizes a build run.
type Result struct {
	Criteria   int
	Categories int
	MaxID      string
	Written    []string // workspace-relative artifact paths
	Pruned     []string // stale artifacts removed
	Overridden []string // hand-edited artifacts replaced under Force
	DryRun     bool
}

// Builder runs the load, validate, aggregate and write pipeline.
type Builder struct {
	cfg    *config.Config
	log    *logging.Logger
	guard  *workspace.Guard
	writer *ArtifactWriter
}

// NewBuilder creates a builder for the given layout.
func NewBuilder(cfg *config.Config, log *logging.Logger) (*Builder, error) {
	if log == nil {
		log = logging.NewNop()
	}
	guard, err := workspace.NewGuard(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace guard: %w", err)
	}
	return &Builder{
		cfg:    cfg,
		log:    log.With("build"),
		guard:  guard,
		writer: NewArtifactWriter(guard),
	}, nil
}

// Load reads the taxonomy and every authored record and validates them. The
// taxonomy is loaded first so that configuration failures abort before any
// record is read.
func (b *Builder) Load(ctx context.Context) (*taxonomy.Taxonomy, []criteria.Criterion, error) {
	tax, err := taxonomy.Load(b.cfg.TaxonomyPath())
	if err != nil {
		return nil, nil, err
	}
	b.log.Debugf("loaded taxonomy with %d categories", tax.Len())

	records, err := b.records(ctx)
	if err != nil {
		return nil, nil, err
	}

	list, err := validate.New(tax).Validate(records)
	if err != nil {
		return nil, nil, err
	}
	b.log.Debugf("validated %d criteria", len(list))
	return tax, list, nil
}

// Violations loads the taxonomy and records and reports every violation
// instead of stopping at the first.
func (b *Builder) Violations(ctx context.Context) (int, []error, error) {
	tax, err := taxonomy.Load(b.cfg.TaxonomyPath())
	if err != nil {
		return 0, nil, err
	}
	records, err := b.records(ctx)
	if err != nil {
		return 0, nil, err
	}
	return len(records), validate.New(tax).CollectAll(records), nil
}

func (b *Builder) records(ctx context.Context) ([]*criteria.Record, error) {
	store, err := criteria.NewFileStore(b.cfg.CriteriaPath(), b.cfg.RecordPattern)
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

func (b *Builder) layout() Layout {
	return Layout{
		MasterPath:    b.cfg.MasterListPath(),
		StatsPath:     b.cfg.StatsPath(),
		CategoriesDir: b.cfg.CategoriesPath(),
	}
}

// Build regenerates the master index, the category views and the stats. On
// any failure before the write phase the previous artifacts are untouched.
func (b *Builder) Build(ctx context.Context, opts Options) (*Result, error) {
	tax, list, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}

	artifacts := Aggregate(list, tax, Header{
		Version:     b.cfg.Version,
		Source:      b.cfg.Source(),
		Description: b.cfg.Description,
	})
	files, err := artifacts.Render(b.layout())
	if err != nil {
		return nil, err
	}
	if err := b.writer.CheckAll(files); err != nil {
		return nil, err
	}

	manifest := NewManifest(b.cfg.Version)
	result := &Result{
		Criteria:   len(list),
		Categories: tax.Len(),
		DryRun:     opts.DryRun,
	}
	if artifacts.Stats.MaxID != nil {
		result.MaxID = *artifacts.Stats.MaxID
	}
	for _, f := range files {
		rel, err := b.guard.MakeRelative(f.Path)
		if err != nil {
			return nil, err
		}
		manifest.Artifacts[rel] = Checksum(f.Data)
		result.Written = append(result.Written, rel)
	}

	stale, overridden, err := b.checkPrevious(manifest, opts.Force)
	if err != nil {
		return nil, err
	}
	result.Overridden = overridden
	for _, p := range stale {
		rel, _ := b.guard.MakeRelative(p)
		result.Pruned = append(result.Pruned, rel)
	}

	if opts.DryRun {
		b.log.Infof("dry run: %d artifacts would be written", len(files))
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.writer.WriteAll(files); err != nil {
		return nil, err
	}
	if err := b.writer.Remove(stale); err != nil {
		return nil, err
	}
	if err := b.writeManifest(manifest); err != nil {
		return nil, err
	}

	for _, p := range result.Pruned {
		b.log.Infof("removed stale artifact %s", p)
	}
	b.log.Infow("build complete", "criteria", result.Criteria, "categories", result.Categories, "artifacts", len(files))
	return result, nil
}

// checkPrevious compares the artifacts of the previous build with their
// recorded checksums. It returns the previous artifacts the new build no
// longer produces, and the hand-edited ones that Force lets through.
func (b *Builder) checkPrevious(next *Manifest, force bool) ([]string, []string, error) {
	prev, err := LoadManifest(b.cfg.ManifestPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if prev == nil {
		return nil, nil, nil
	}

	drift, err := prev.Check(b.guard.WorkspaceDir())
	if err != nil {
		return nil, nil, err
	}
	var overridden []string
	if edited := Edited(drift); len(edited) > 0 {
		paths := make([]string, 0, len(edited))
		for _, d := range edited {
			paths = append(paths, d.Path)
		}
		if !force {
			return nil, nil, failure.New(failure.ArtifactEdited,
				"generated artifacts were edited since the last build: %s; edit the authored records instead or rebuild with --force",
				strings.Join(paths, ", ")).WithPath(b.cfg.ManifestPath())
		}
		b.log.Warnf("overwriting hand-edited artifacts: %s", strings.Join(paths, ", "))
		overridden = paths
	}

	var stale []string
	for _, rel := range prev.Paths() {
		if _, ok := next.Artifacts[rel]; ok {
			continue
		}
		stale = append(stale, filepath.Join(b.guard.WorkspaceDir(), filepath.FromSlash(rel)))
	}
	return stale, overridden, nil
}

func (b *Builder) writeManifest(m *Manifest) error {
	path := b.cfg.ManifestPath()
	if err := b.guard.ValidatePath(path); err != nil {
		return fmt.Errorf("refusing to write manifest: %w", err)
	}
	if err := jsonfile.Write(path, m); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Verify reports how the generated artifacts differ from the last build's
// manifest. It returns nil drift when no build has run yet.
func (b *Builder) Verify(_ context.Context) ([]Drift, bool, error) {
	prev, err := LoadManifest(b.cfg.ManifestPath())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load manifest: %w", err)
	}
	if prev == nil {
		return nil, false, nil
	}
	drift, err := prev.Check(b.guard.WorkspaceDir())
	return drift, true, err
}
