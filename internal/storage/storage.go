package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santiagofdezg/bing-wallpaper/internal/config"
)

// ErrInvalidLocation is returned for picture directories that cannot be
// mapped to a store.
var ErrInvalidLocation = errors.New("invalid storage location")

// Store is a destination for downloaded images.
type Store interface {
	// Prepare makes the destination ready, creating it if needed. It is
	// idempotent.
	Prepare(ctx context.Context) error

	// Exists reports whether an image named name is already stored.
	Exists(ctx context.Context, name string) (bool, error)

	// Put stores the contents of r under name, replacing any existing
	// image. Returns the number of bytes stored.
	Put(ctx context.Context, name string, r io.Reader) (int64, error)

	// Location returns the full path or URI of name.
	Location(name string) string
}

// New returns the store serving dir: an S3 store for s3://bucket/prefix,
// the local filesystem otherwise.
func New(ctx context.Context, dir string, s3cfg config.S3Config) (Store, error) {
	if strings.HasPrefix(dir, s3Scheme) {
		bucket, prefix, err := ParseS3Location(dir)
		if err != nil {
			return nil, err
		}
		return NewS3(ctx, bucket, prefix, s3cfg)
	}

	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: empty directory", ErrInvalidLocation)
	}
	return NewLocal(dir), nil
}
