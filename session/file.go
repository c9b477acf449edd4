package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	cloner "github.com/armatrix/codex-session-cloner"
	"github.com/armatrix/codex-session-cloner/internal/rollout"
)

const tempPrefix = ".tmp-"

// FileStore persists sessions as rollout files below a root directory.
// Files are discovered with a doublestar pattern relative to the root.
type FileStore struct {
	root    string
	pattern string
}

var _ cloner.Store = (*FileStore)(nil)

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithPattern overrides the discovery pattern (default cloner.DefaultPattern).
func WithPattern(pattern string) FileStoreOption {
	return func(f *FileStore) { f.pattern = pattern }
}

// NewFileStore creates a FileStore rooted at dir. The directory is not
// created; a missing root surfaces as cloner.ErrStorageRoot on Scan.
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	f := &FileStore{root: dir, pattern: cloner.DefaultPattern}
	for _, opt := range opts {
		opt(f)
	}
	if !doublestar.ValidatePattern(f.pattern) {
		return nil, fmt.Errorf("invalid session pattern %q", f.pattern)
	}
	return f, nil
}

// Root returns the storage root.
func (f *FileStore) Root() string { return f.root }

// Scan reads every rollout matching the pattern. Results are in path order.
func (f *FileStore) Scan(ctx context.Context) (*cloner.ScanResult, error) {
	info, err := os.Stat(f.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cloner.ErrStorageRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", cloner.ErrStorageRoot, f.root)
	}

	matches, err := doublestar.Glob(os.DirFS(f.root), f.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: glob %s: %w", cloner.ErrStorageRoot, f.pattern, err)
	}

	result := &cloner.ScanResult{}
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hidden(m) {
			continue
		}
		path := filepath.Join(f.root, filepath.FromSlash(m))
		data, err := os.ReadFile(path)
		if err != nil {
			result.Failures = append(result.Failures, cloner.NewParseError(path, err))
			continue
		}
		rec, err := rollout.Decode(path, data)
		if err != nil {
			var re *cloner.RecordError
			if !errors.As(err, &re) {
				re = cloner.NewParseError(path, err)
			}
			result.Failures = append(result.Failures, re)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// Create writes clone into the directory of src. The bytes go to a temporary
// file first and are linked into place only once complete, so a crash leaves
// either nothing or a whole file. An existing target is never replaced.
func (f *FileStore) Create(_ context.Context, src, clone *cloner.Record) (string, error) {
	data, err := rollout.Encode(src.Content, clone)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(src.Path)
	path := filepath.Join(dir, rollout.CloneName(filepath.Base(src.Path), src.ID, clone.ID))
	if path == src.Path {
		return path, cloner.ErrExists
	}
	if _, err := os.Lstat(path); err == nil {
		return path, cloner.ErrExists
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(src.Path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	if err := publish(tmpName, path); err != nil {
		return path, err
	}
	return path, nil
}

// publish moves tmp to path without replacing an existing file. A hard link
// fails atomically on an existing target; filesystems without links fall back
// to a checked rename.
func publish(tmp, path string) error {
	err := os.Link(tmp, path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return cloner.ErrExists
	}
	if _, statErr := os.Lstat(path); statErr == nil {
		return cloner.ErrExists
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Remove deletes the rollout file of r.
func (f *FileStore) Remove(_ context.Context, r *cloner.Record) error {
	if err := os.Remove(r.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", cloner.ErrNotFound, r.Path)
		}
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Read returns the raw bytes at path.
func (f *FileStore) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", cloner.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return data, nil
}

// hidden reports whether any element of the slash-separated rel path starts
// with a dot, which covers this store's own temp files.
func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
