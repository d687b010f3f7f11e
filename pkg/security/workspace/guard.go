// Package workspace keeps the pipeline's writes inside its base directory.
// Every generated artifact and rewritten record is checked against the Guard
// before anything is written, so a layout file cannot redirect output
// outside the workspace.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Guard enforces workspace boundary restrictions on file paths.
type Guard struct {
	workspaceDir string // absolute, symlink-resolved workspace root
}

// NewGuard creates a new workspace guard for the given directory.
// The directory path is converted to an absolute path, cleaned, and symlinks
// are evaluated as far as the path exists.
func NewGuard(workspaceDir string) (*Guard, error) {
	if workspaceDir == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absPath, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}

	return &Guard{workspaceDir: resolveSymlinks(filepath.Clean(absPath))}, nil
}

// ValidatePath checks if the given path is within the workspace boundaries.
// Relative paths are taken relative to the workspace.
func (g *Guard) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	resolvedPath := g.ResolvePath(path)
	if !g.IsWithinWorkspace(resolvedPath) {
		return fmt.Errorf("path '%s' is outside workspace boundaries", path)
	}
	return nil
}

// ResolvePath converts a path to a cleaned absolute path with symlinks
// resolved for its existing prefix.
func (g *Guard) ResolvePath(path string) string {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(g.workspaceDir, cleanPath)
	}
	return resolveSymlinks(cleanPath)
}

// IsWithinWorkspace checks if an absolute path is the workspace itself or
// one of its descendants.
func (g *Guard) IsWithinWorkspace(absPath string) bool {
	evalPath := resolveSymlinks(absPath)
	return evalPath == g.workspaceDir ||
		strings.HasPrefix(evalPath+string(filepath.Separator), g.workspaceDir+string(filepath.Separator))
}

// WorkspaceDir returns the absolute path of the workspace directory.
func (g *Guard) WorkspaceDir() string {
	return g.workspaceDir
}

// MakeRelative converts a path to a slash-separated path relative to the
// workspace. Returns an error if the path is not within the workspace.
func (g *Guard) MakeRelative(path string) (string, error) {
	resolved := g.ResolvePath(path)
	if !g.IsWithinWorkspace(resolved) {
		return "", fmt.Errorf("path '%s' is not within workspace", path)
	}

	relPath, err := filepath.Rel(g.workspaceDir, resolved)
	if err != nil {
		return "", fmt.Errorf("failed to make path relative: %w", err)
	}
	return filepath.ToSlash(relPath), nil
}

// resolveSymlinks resolves symlinks in a path, handling non-existent paths
// by resolving the deepest existing ancestor and re-appending the rest.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	var components []string
	currentPath := path
	for {
		if resolved, err := filepath.EvalSymlinks(currentPath); err == nil {
			result := resolved
			for i := len(components) - 1; i >= 0; i-- {
				result = filepath.Join(result, components[i])
			}
			return result
		}

		dir := filepath.Dir(currentPath)
		if dir == currentPath || dir == "." {
			return path
		}
		components = append(components, filepath.Base(currentPath))
		currentPath = dir
	}
}
