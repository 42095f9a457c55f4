package slot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File is a slot stored in a single file.
//
// Writes go to a temporary file renamed over the previous one, so a reader
// never sees a partial blob.
type File struct {
	path string
}

// NewFile returns a slot stored at path. The file and its directory are
// created on the first write.
func NewFile(path string) *File { return &File{path: path} }

func (f *File) Name() string { return "file:" + f.path }

func (f *File) Read(ctx context.Context) ([]byte, error) {
	blob, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", f.path, err)
	}
	return blob, nil
}

func (f *File) Write(ctx context.Context, blob []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("cannot write %q: %w", f.path, err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %q: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write %q: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("cannot write %q: %w", f.path, err)
	}
	return nil
}
