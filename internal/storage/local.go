package storage

import (
	"context"
	"io"
	"path/filepath"

	ioutils "github.com/santiagofdezg/bing-wallpaper/internal/io"
)

// Local stores images in a directory on the local filesystem.
type Local struct {
	dir string
}

// NewLocal creates a Local store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Prepare creates the directory and its parents.
func (l *Local) Prepare(ctx context.Context) error {
	return ioutils.EnsureDir(l.dir)
}

// Exists reports whether a regular file named name exists in the directory.
func (l *Local) Exists(ctx context.Context, name string) (bool, error) {
	return ioutils.Exists(l.Location(name))
}

// Put writes r to the directory atomically.
func (l *Local) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	return ioutils.WriteFileAtomic(l.Location(name), r)
}

// Location joins the directory and name.
func (l *Local) Location(name string) string {
	return filepath.Join(l.dir, name)
}
