package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/work/ref3")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("/work/ref3", "taxonomy.json"), cfg.TaxonomyPath())
	assert.Equal(t, filepath.Join("/work/ref3", "criteria"), cfg.CriteriaPath())
	assert.Equal(t, filepath.Join("/work/ref3", "categories"), cfg.CategoriesPath())
	assert.Equal(t, filepath.Join("/work/ref3", "_master-list.json"), cfg.MasterListPath())
	assert.Equal(t, filepath.Join("/work/ref3", "stats.json"), cfg.StatsPath())
	assert.Equal(t, filepath.Join("/work/ref2", "_master-list.json"), cfg.LegacyMasterPath())
	assert.Equal(t, filepath.Join("/work/ref2", "details"), cfg.LegacyDetailsPath())
	assert.Equal(t, "criteria/*.json", cfg.Source())
	assert.Equal(t, "3.0", cfg.Version)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		expectErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "missing base", mutate: func(c *Config) { c.BaseDir = "" }, expectErr: "base directory is required"},
		{name: "missing taxonomy", mutate: func(c *Config) { c.Taxonomy = " " }, expectErr: "taxonomy is required"},
		{name: "missing version", mutate: func(c *Config) { c.Version = "" }, expectErr: "version is required"},
		{name: "bad record pattern", mutate: func(c *Config) { c.RecordPattern = "[" }, expectErr: "invalid record_pattern"},
		{name: "bad verbosity", mutate: func(c *Config) { c.Logging.Verbosity = "loud" }, expectErr: "invalid logging verbosity"},
		{name: "empty verbosity defaults", mutate: func(c *Config) { c.Logging.Verbosity = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/work")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, cfg.Logging.Verbosity)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.BaseDir)
	assert.Equal(t, "criteria", cfg.CriteriaDir)
}

func TestLoad_LayoutFile(t *testing.T) {
	dir := t.TempDir()
	content := `
criteria_dir: records
stats: out/stats.json
record_pattern: "[0-9][0-9][0-9].json"
legacy:
  master_list: /data/legacy.json
logging:
  verbosity: quiet
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "records", cfg.CriteriaDir)
	assert.Equal(t, filepath.Join(cfg.BaseDir, "out", "stats.json"), cfg.StatsPath())
	assert.Equal(t, "/data/legacy.json", cfg.LegacyMasterPath())
	assert.Equal(t, "*criteria-*-detailed.json", cfg.Legacy.DetailPattern, "unset fields keep defaults")
	assert.Equal(t, "quiet", cfg.Logging.Verbosity)
	assert.Equal(t, "records/[0-9][0-9][0-9].json", cfg.Source())
	assert.Equal(t, "taxonomy.json", cfg.Taxonomy)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("taxonomy: [unclosed"), 0o644))
	_, err = Load(dir, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("logging:\n  verbosity: loud\n"), 0o644))
	_, err = Load(dir, invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.CriteriaDir = "authored"

	path := filepath.Join(dir, FileName)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "authored", loaded.CriteriaDir)
	assert.Equal(t, cfg.Legacy, loaded.Legacy)
}
