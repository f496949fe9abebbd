package file

import (
	"github.com/kautilyalaw/core/internal/config"
	"github.com/kautilyalaw/core/internal/modules/storage/object"
)

// deleteObjectDTO is the request body for DELETE /objects.
type deleteObjectDTO struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// batchOrphanDeleteDTO is the request body for DELETE /objects/orphans/batch.
type batchOrphanDeleteDTO struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// ValidateUpload applies the configured format and size limits.
func ValidateUpload(filename string, size int64, cfg config.StorageConfig) error {
	return object.ValidateUploadFile(filename, size, cfg.AllowedFormats, cfg.MaxSizeMB)
}
