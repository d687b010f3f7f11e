// Package config describes where the pipeline reads and writes its documents.
//
// A layout is loaded from an optional criteria.yaml in the base directory;
// every relative path in it is resolved against that directory.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// FileName is the layout file looked up in the base directory.
const FileName = "criteria.yaml"

// Config is the pipeline layout.
type Config struct {
	// BaseDir is the workspace every relative path is resolved against.
	BaseDir string `yaml:"-" json:"-"`

	Taxonomy      string `yaml:"taxonomy" json:"taxonomy"`
	CriteriaDir   string `yaml:"criteria_dir" json:"criteria_dir"`
	CategoriesDir string `yaml:"categories_dir" json:"categories_dir"`
	DetailsDir    string `yaml:"details_dir" json:"details_dir"`
	MasterList    string `yaml:"master_list" json:"master_list"`
	Stats         string `yaml:"stats" json:"stats"`
	Manifest      string `yaml:"manifest" json:"manifest"`

	// RecordPattern selects record files inside CriteriaDir.
	RecordPattern string `yaml:"record_pattern" json:"record_pattern"`

	// Version and Description stamp every generated artifact.
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`

	Legacy  LegacyConfig  `yaml:"legacy" json:"legacy"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LegacyConfig locates the dataset the bootstrap importer reads.
type LegacyConfig struct {
	MasterList    string `yaml:"master_list" json:"master_list"`
	DetailsDir    string `yaml:"details_dir" json:"details_dir"`
	DetailPattern string `yaml:"detail_pattern" json:"detail_pattern"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	// Dir, when set, also writes a JSON log per run into this directory.
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns the standard layout rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		BaseDir:       baseDir,
		Taxonomy:      "taxonomy.json",
		CriteriaDir:   "criteria",
		CategoriesDir: "categories",
		DetailsDir:    "details",
		MasterList:    "_master-list.json",
		Stats:         "stats.json",
		Manifest:      ".generated.json",
		RecordPattern: "*.json",
		Version:       "3.0",
		Description:   "Generated master list of criteria (do not edit; source of truth: criteria/)",
		Legacy: LegacyConfig{
			MasterList:    "../ref2/_master-list.json",
			DetailsDir:    "../ref2/details",
			DetailPattern: "*criteria-*-detailed.json",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

var validVerbosity = map[string]bool{
	"quiet":   true,
	"normal":  true,
	"verbose": true,
	"debug":   true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base directory is required")
	}

	required := []struct {
		name  string
		value string
	}{
		{"taxonomy", c.Taxonomy},
		{"criteria_dir", c.CriteriaDir},
		{"categories_dir", c.CategoriesDir},
		{"details_dir", c.DetailsDir},
		{"master_list", c.MasterList},
		{"stats", c.Stats},
		{"manifest", c.Manifest},
		{"version", c.Version},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	for _, p := range []struct {
		name    string
		pattern string
	}{
		{"record_pattern", c.RecordPattern},
		{"legacy.detail_pattern", c.Legacy.DetailPattern},
	} {
		if p.pattern == "" {
			continue
		}
		if _, err := glob.Compile(p.pattern); err != nil {
			return fmt.Errorf("invalid %s %q: %w", p.name, p.pattern, err)
		}
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if !validVerbosity[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// Resolve returns p resolved against BaseDir.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func (c *Config) TaxonomyPath() string      { return c.Resolve(c.Taxonomy) }
func (c *Config) CriteriaPath() string      { return c.Resolve(c.CriteriaDir) }
func (c *Config) CategoriesPath() string    { return c.Resolve(c.CategoriesDir) }
func (c *Config) DetailsPath() string       { return c.Resolve(c.DetailsDir) }
func (c *Config) MasterListPath() string    { return c.Resolve(c.MasterList) }
func (c *Config) StatsPath() string         { return c.Resolve(c.Stats) }
func (c *Config) ManifestPath() string      { return c.Resolve(c.Manifest) }
func (c *Config) LegacyMasterPath() string  { return c.Resolve(c.Legacy.MasterList) }
func (c *Config) LegacyDetailsPath() string { return c.Resolve(c.Legacy.DetailsDir) }
func (c *Config) LogPath() string           { return c.Resolve(c.Logging.Dir) }

// Source is the provenance label stamped on the master index: the record
// location relative to the base directory.
func (c *Config) Source() string {
	dir := c.CriteriaDir
	if rel, err := filepath.Rel(c.BaseDir, c.CriteriaPath()); err == nil {
		dir = rel
	}
	pattern := c.RecordPattern
	if pattern == "" {
		pattern = "*.json"
	}
	return filepath.ToSlash(filepath.Join(dir, pattern))
}
