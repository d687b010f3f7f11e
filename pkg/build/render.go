package build

import (
	"fmt"
	"path/filepath"

	"github.com/entrhq/criteria/pkg/jsonfile"
)

// Layout says where each artifact goes.
type Layout struct {
	MasterPath    string
	StatsPath     string
	CategoriesDir string
}

// File is a rendered artifact.
type File struct {
	Path string
	Data []byte
}

// ViewPath returns the file of the view for category key.
func (l Layout) ViewPath(key string) string {
	return filepath.Join(l.CategoriesDir, key+".json")
}

// Render encodes every artifact. The result is ordered master index, views
// by category key, stats, and is byte-for-byte reproducible.
func (a *Artifacts) Render(l Layout) ([]File, error) {
	files := make([]File, 0, len(a.Views)+2)

	add := func(path string, v any) error {
		data, err := jsonfile.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		files = append(files, File{Path: path, Data: data})
		return nil
	}

	if err := add(l.MasterPath, a.Master); err != nil {
		return nil, err
	}
	for _, view := range a.Views {
		if err := add(l.ViewPath(view.Category), view); err != nil {
			return nil, err
		}
	}
	if err := add(l.StatsPath, a.Stats); err != nil {
		return nil, err
	}
	return files, nil
}
