package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities.
// ID is a UUID string, mirroring the opaque store-assigned identifiers the
// previous hosted backend handed out.
type Base struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// ImageRef is an uploaded binary asset reference. Path is the storage key
// used for deletion; it stays empty when the upload went through a hosted
// CDN that offers no delete call, in which case removing the reference
// orphans the binary.
type ImageRef struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
}

// Deletable reports whether the backing object can be released by path.
func (r ImageRef) Deletable() bool { return r.Path != "" }
