// Package object abstracts the remote object store used for uploaded
// images. Two adapters exist: S3 (stores a path, supports delete) and
// Cloudinary (unsigned upload, URL only, no delete capability).
package object

import (
	"context"
	"errors"
	"fmt"

	"github.com/kautilyalaw/core/internal/config"
)

// ErrDeleteUnsupported is returned by adapters that cannot release objects.
// Callers drop the reference and accept the orphaned binary.
var ErrDeleteUnsupported = errors.New("object store does not support deletion")

// Ref describes one uploaded object.
type Ref struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"` // storage key; empty when not deletable
	Name string `json:"name"`
}

// Store is the object-store port.
type Store interface {
	// Upload stores payload under key and returns the public reference.
	Upload(ctx context.Context, key string, payload []byte, contentType string) (Ref, error)
	// Delete releases the object at path. Returns ErrDeleteUnsupported when
	// the adapter has no delete call.
	Delete(ctx context.Context, path string) error
	// Driver names the adapter ("s3" or "cloudinary").
	Driver() string
	// CanDelete reports whether Delete is functional.
	CanDelete() bool
}

// New builds the configured adapter.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "s3":
		return newS3Store(cfg.S3)
	case "cloudinary":
		return newCloudinaryStore(cfg.Cloudinary)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
