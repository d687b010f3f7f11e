package build

import (
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/criteria/pkg/jsonfile"
	"github.com/entrhq/criteria/pkg/security/workspace"
)

// ArtifactWriter writes rendered artifacts inside the workspace.
type ArtifactWriter struct {
	guard *workspace.Guard
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(guard *workspace.Guard) *ArtifactWriter {
	return &ArtifactWriter{guard: guard}
}

// CheckAll verifies every target is inside the workspace without writing.
func (w *ArtifactWriter) CheckAll(files []File) error {
	for _, f := range files {
		if err := w.guard.ValidatePath(f.Path); err != nil {
			return fmt.Errorf("refusing to write artifact: %w", err)
		}
	}
	return nil
}

// WriteAll writes every artifact, each as an atomic whole-file replacement.
// All targets are checked before the first write.
func (w *ArtifactWriter) WriteAll(files []File) error {
	if err := w.CheckAll(files); err != nil {
		return err
	}
	for _, f := range files {
		if err := jsonfile.WriteFile(f.Path, f.Data); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}
	}
	return nil
}

// Remove deletes artifacts that are no longer generated. Paths already gone
// are ignored.
func (w *ArtifactWriter) Remove(paths []string) error {
	for _, p := range paths {
		if err := w.guard.ValidatePath(p); err != nil {
			return fmt.Errorf("refusing to remove artifact: %w", err)
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale artifact %s: %w", p, err)
		}
	}
	return nil
}
