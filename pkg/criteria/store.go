package criteria

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/criteria/pkg/failure"
	"github.com/entrhq/criteria/pkg/jsonfile"
)

const recordExt = ".json"

// DefaultPattern matches every authored record file.
const DefaultPattern = "*" + recordExt

var ErrNotFound = errors.New("criteria: record not found")

// Store is the source of truth for authored criteria.
type Store interface {
	List(ctx context.Context) ([]*Record, error)
	Read(ctx context.Context, key string) (*Record, error)
	Write(ctx context.Context, rec *Record) error
}

// FileStore keeps one JSON document per criterion in a directory.
type FileStore struct {
	dir     string
	pattern glob.Glob
}

// NewFileStore creates a store over dir. Only files whose name matches the
// glob pattern and ends in .json are treated as records; an empty pattern
// means DefaultPattern. The directory is not created.
func NewFileStore(dir, pattern string) (*FileStore, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("criteria: invalid record pattern %q: %w", pattern, err)
	}
	return &FileStore{dir: dir, pattern: g}, nil
}

// Dir returns the store directory.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) pathForKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("criteria: invalid record key (empty)")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("criteria: invalid record key %q (contains path separator)", key)
	}
	dir, err := filepath.Abs(fs.dir)
	if err != nil {
		return "", fmt.Errorf("criteria: abs dir: %w", err)
	}
	resolved := filepath.Join(dir, key+recordExt)
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("criteria: path traversal detected for key %q", key)
	}
	return resolved, nil
}

func (fs *FileStore) matches(name string) bool {
	return strings.HasSuffix(name, recordExt) && !jsonfile.IsTemp(name) && fs.pattern.Match(name)
}

func (fs *FileStore) checkDir() error {
	info, err := os.Stat(fs.dir)
	if errors.Is(err, os.ErrNotExist) {
		return failure.Wrap(failure.StoreMissing, err, "criteria dir not found").WithPath(fs.dir)
	}
	if err != nil {
		return fmt.Errorf("criteria: stat %s: %w", fs.dir, err)
	}
	if !info.IsDir() {
		return failure.New(failure.StoreMissing, "criteria location is not a directory").WithPath(fs.dir)
	}
	return nil
}

// List returns every record in the store ordered by file name.
func (fs *FileStore) List(ctx context.Context) ([]*Record, error) {
	if err := fs.checkDir(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("criteria: list %s: %w", fs.dir, err)
	}

	var out []*Record
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !fs.matches(e.Name()) {
			continue
		}
		rec, err := fs.readFile(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Read returns the record stored under key, or ErrNotFound.
func (fs *FileStore) Read(_ context.Context, key string) (*Record, error) {
	if err := fs.checkDir(); err != nil {
		return nil, err
	}
	if _, err := fs.pathForKey(key); err != nil {
		return nil, err
	}
	rec, err := fs.readFile(key + recordExt)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (fs *FileStore) readFile(name string) (*Record, error) {
	path := filepath.Join(fs.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("criteria: read %s: %w", path, err)
	}
	rec, err := ParseRecord(name, data)
	if err != nil {
		return nil, failure.Wrap(failure.RecordUnreadable, err, "cannot parse record").WithPath(path)
	}
	rec.Path = path
	return rec, nil
}

// Write atomically replaces the record's file. The file is derived from the
// record's key; Path is updated to the written location.
func (fs *FileStore) Write(_ context.Context, rec *Record) error {
	path, err := fs.pathForKey(rec.Key())
	if err != nil {
		return err
	}
	if err := jsonfile.Write(path, rec); err != nil {
		return fmt.Errorf("criteria: write %s: %w", path, err)
	}
	rec.Path = path
	return nil
}
