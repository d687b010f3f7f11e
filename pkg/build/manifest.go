package build

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/entrhq/criteria/pkg/jsonfile"
)

// Manifest records the checksum of every artifact the last build wrote, so
// that hand edits to generated files are detected before they are silently
// overwritten.
type Manifest struct {
	Version   string            `json:"version"`
	Generated bool              `json:"generated"`
	Artifacts map[string]string `json:"artifacts"` // workspace-relative path -> sha256
}

// DriftKind classifies how an artifact differs from the manifest.
type DriftKind string

const (
	DriftEdited  DriftKind = "edited"
	DriftMissing DriftKind = "missing"
)

// Drift is one artifact that no longer matches the manifest.
type Drift struct {
	Path string
	Kind DriftKind
}

// Checksum returns the hex sha256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewManifest creates an empty manifest.
func NewManifest(version string) *Manifest {
	return &Manifest{Version: version, Generated: true, Artifacts: make(map[string]string)}
}

// LoadManifest reads the manifest at path. A missing manifest yields nil
// without error: nothing has been generated yet.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	err := jsonfile.Read(path, &m)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]string)
	}
	return &m, nil
}

// Paths returns the recorded artifact paths in ascending order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Artifacts))
	for p := range m.Artifacts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Check compares every recorded artifact under baseDir with its checksum.
func (m *Manifest) Check(baseDir string) ([]Drift, error) {
	var drift []Drift
	for _, rel := range m.Paths() {
		data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(rel)))
		if errors.Is(err, os.ErrNotExist) {
			drift = append(drift, Drift{Path: rel, Kind: DriftMissing})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", rel, err)
		}
		if Checksum(data) != m.Artifacts[rel] {
			drift = append(drift, Drift{Path: rel, Kind: DriftEdited})
		}
	}
	return drift, nil
}

// Edited filters drift down to hand-edited artifacts.
func Edited(drift []Drift) []Drift {
	var out []Drift
	for _, d := range drift {
		if d.Kind == DriftEdited {
			out = append(out, d)
		}
	}
	return out
}
