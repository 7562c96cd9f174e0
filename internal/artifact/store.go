package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no artifact exists at a location.
var ErrNotFound = errors.New("artifact not found")

// Store reads and writes artifact bytes by location.
type Store interface {
	Get(ctx context.Context, location string) ([]byte, error)
	Put(ctx context.Context, location string, data []byte) error
	Exists(ctx context.Context, location string) (bool, error)
}

// LocalStore keeps artifacts on the local filesystem.
type LocalStore struct{}

// Get reads the file at location.
func (LocalStore) Get(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// Put writes data through a temporary file in the same directory and renames
// it into place, so readers never observe a partial artifact.
func (LocalStore) Put(_ context.Context, location string, data []byte) error {
	dir := filepath.Dir(location)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(location)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, location); err != nil {
		return fmt.Errorf("rename into %s: %w", location, err)
	}
	return nil
}

// Exists reports whether a regular file is present at location.
func (LocalStore) Exists(_ context.Context, location string) (bool, error) {
	info, err := os.Stat(location)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Router sends s3:// locations to the S3 store and everything else to disk.
type Router struct {
	Local Store
	S3    Store
}

// NewRouter builds a router. s3 may be nil when no bucket access is configured.
func NewRouter(s3 Store) *Router {
	return &Router{Local: LocalStore{}, S3: s3}
}

func (r *Router) pick(location string) (Store, error) {
	if !IsS3(location) {
		if r.Local == nil {
			return LocalStore{}, nil
		}
		return r.Local, nil
	}
	if r.S3 == nil {
		return nil, fmt.Errorf("s3 storage is not configured for %s", location)
	}
	return r.S3, nil
}

func (r *Router) Get(ctx context.Context, location string) ([]byte, error) {
	s, err := r.pick(location)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, location)
}

func (r *Router) Put(ctx context.Context, location string, data []byte) error {
	s, err := r.pick(location)
	if err != nil {
		return err
	}
	return s.Put(ctx, location, data)
}

func (r *Router) Exists(ctx context.Context, location string) (bool, error) {
	s, err := r.pick(location)
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, location)
}

// IsS3 reports whether location uses the s3:// scheme.
func IsS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// ParseS3 splits an s3://bucket/key location.
func ParseS3(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%q is not an s3 location", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location %q needs both bucket and key", location)
	}
	return bucket, key, nil
}

// Load fetches and decodes the bundle at location.
func Load(ctx context.Context, store Store, location string) (*Bundle, error) {
	data, err := store.Get(ctx, location)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Save encodes b and writes it to location, compressing for .gz paths.
func Save(ctx context.Context, store Store, location string, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid bundle: %w", err)
	}
	data, err := Marshal(b, Compressed(location))
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return store.Put(ctx, location, data)
}
