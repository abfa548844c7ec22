package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/carebook/carebook/internal/config"
)

// Uploader stores an uploaded image and returns the URL it will be
// served from. The local-disk store is the default; a cloud-backed
// implementation plugs in behind the same interface.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// DiskStore writes images under a local directory and serves them from
// a static route.
type DiskStore struct {
	dir     string
	baseURL string
	maxSize int64
}

func NewDiskStore(cfg config.UploadsConfig) (*DiskStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &DiskStore{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		maxSize: cfg.MaxSizeBytes,
	}, nil
}

// Dir is the directory uploads land in, for wiring the static route.
func (s *DiskStore) Dir() string { return s.dir }

// Upload copies r to disk under a random name that keeps the original
// extension. The incoming filename is never trusted as a path.
func (s *DiskStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if n > s.maxSize {
		_ = os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return path.Join(s.baseURL, name), nil
}
