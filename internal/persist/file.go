package persist

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tgienger/todo/internal/models"
)

// FileAdapter stores the collection as a single document on an afero.Fs.
// Use afero.NewOsFs() for the real filesystem or afero.NewMemMapFs() in tests.
type FileAdapter struct {
	fs    afero.Fs
	path  string
	codec Codec
}

// FileName returns the document name used for a codec, e.g. todos.json
func FileName(c Codec) string {
	return "todos." + c.Name()
}

// NewFileAdapter creates an adapter writing dir/todos.<format>
func NewFileAdapter(fs afero.Fs, dir string, codec Codec) *FileAdapter {
	return &FileAdapter{
		fs:    fs,
		path:  filepath.Join(dir, FileName(codec)),
		codec: codec,
	}
}

// Path returns the document path
func (f *FileAdapter) Path() string {
	return f.path
}

func (f *FileAdapter) Load(ctx context.Context) (models.Collection, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	exists, err := afero.Exists(f.fs, f.path)
	if err != nil {
		return nil, false, fmt.Errorf("check %s: %w", f.path, err)
	}
	if !exists {
		return nil, false, nil
	}
	b, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", f.path, err)
	}
	c, err := f.codec.Decode(b)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", f.path, err)
	}
	return c, true, nil
}

// Save writes the document to a temp file in the same directory and renames
// it over the old one, so readers never see a partial write.
func (f *FileAdapter) Save(ctx context.Context, c models.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := f.codec.Encode(c)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(f.fs, dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		f.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := f.fs.Rename(tmpName, f.path); err != nil {
		f.fs.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
