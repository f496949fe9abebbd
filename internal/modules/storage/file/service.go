// Package file tracks uploaded objects in the file_references table so the
// admin UI can upload first and save the owning record later. A reference is
// created as "pending" on upload and flipped to "linked" when a course or
// blog persists it; pending rows past a cutoff are orphans and get cleaned
// up by a cron job.
package file

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/modules/storage/object"
	"github.com/kautilyalaw/core/internal/pkg/pagination"
	"github.com/kautilyalaw/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultOrphanMaxAge is how long a pending upload may sit unlinked before
// the cleanup job treats it as abandoned.
const DefaultOrphanMaxAge = time.Hour

type Service struct {
	db    *gorm.DB
	store object.Store
	log   *zap.Logger
}

func NewService(db *gorm.DB, store object.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, store: store, log: log}
}

// UploadResult is what the admin composer gets back after an upload.
type UploadResult struct {
	URL     string `json:"url"`
	Path    string `json:"path,omitempty"`
	Name    string `json:"name"`
	Storage string `json:"storage"`
}

// Upload pushes payload to the object store and records a pending reference.
func (s *Service) Upload(ctx context.Context, filename string, payload []byte, contentType string, keyTemplate string) (UploadResult, error) {
	key := object.RenderObjectKey(keyTemplate, filename, payload, time.Now())
	contentType = object.DetectContentType(filename, payload, contentType)

	ref, err := s.store.Upload(ctx, key, payload, contentType)
	if err != nil {
		return UploadResult{}, err
	}

	record := models.FileReferenceModel{
		FileURL:  ref.URL,
		Path:     ref.Path,
		FileName: ref.Name,
		Storage:  s.store.Driver(),
		Status:   models.FileStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		// The binary is already up; the cleanup job cannot see it without a
		// row, so surface the failure instead of silently orphaning.
		return UploadResult{}, fmt.Errorf("record upload reference: %w", err)
	}

	return UploadResult{
		URL:     ref.URL,
		Path:    ref.Path,
		Name:    ref.Name,
		Storage: s.store.Driver(),
	}, nil
}

// Delete removes the stored object and its reference row. Called when the
// admin detaches an image before saving.
func (s *Service) Delete(ctx context.Context, path, fileURL string) error {
	path = strings.TrimSpace(path)
	fileURL = strings.TrimSpace(fileURL)
	if path == "" && fileURL == "" {
		return fmt.Errorf("path or url is required")
	}

	if path != "" {
		if err := s.deleteObject(ctx, path); err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Where("path = ?", path).
			Delete(&models.FileReferenceModel{}).Error; err != nil {
			return err
		}
	}
	if fileURL != "" {
		if err := s.db.WithContext(ctx).Where("file_url = ?", fileURL).
			Delete(&models.FileReferenceModel{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Link flips the references behind refs to "linked" and stamps the owning
// record. Runs inside the caller's transaction so a failed save leaves the
// references pending.
func (s *Service) Link(tx *gorm.DB, refType, refID string, refs []models.ImageRef) error {
	urls := make([]string, 0, len(refs))
	for _, r := range refs {
		if u := strings.TrimSpace(r.URL); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil
	}
	return tx.Model(&models.FileReferenceModel{}).
		Where("file_url IN ?", urls).
		Updates(map[string]any{
			"status":   models.FileStatusLinked,
			"ref_type": refType,
			"ref_id":   refID,
		}).Error
}

// Unlink returns references no longer used by refID to the pending pool, so
// an update that drops images hands them back to orphan cleanup.
func (s *Service) Unlink(tx *gorm.DB, refType, refID string, keep []models.ImageRef) error {
	q := tx.Model(&models.FileReferenceModel{}).
		Where("ref_type = ? AND ref_id = ?", refType, refID)
	if urls := urlSet(keep); len(urls) > 0 {
		q = q.Where("file_url NOT IN ?", urls)
	}
	return q.Updates(map[string]any{
		"status":   models.FileStatusPending,
		"ref_type": "",
		"ref_id":   "",
	}).Error
}

// Release deletes the stored objects behind a removed record. The record is
// already gone by the time this runs; failures are logged, not returned, and
// the binaries stay behind as orphans.
func (s *Service) Release(ctx context.Context, refType, refID string, refs []models.ImageRef) {
	for _, r := range refs {
		if !r.Deletable() {
			if r.URL != "" {
				s.log.Warn("stored object not deletable, leaving orphan",
					zap.String("url", r.URL),
					zap.String("refType", refType),
					zap.String("refId", refID))
			}
			continue
		}
		if err := s.deleteObject(ctx, r.Path); err != nil {
			s.log.Warn("failed to delete stored object, leaving orphan",
				zap.String("path", r.Path),
				zap.String("refType", refType),
				zap.String("refId", refID),
				zap.Error(err))
		}
	}
	if err := s.db.WithContext(ctx).
		Where("ref_type = ? AND ref_id = ?", refType, refID).
		Delete(&models.FileReferenceModel{}).Error; err != nil {
		s.log.Warn("failed to delete file references",
			zap.String("refType", refType),
			zap.String("refId", refID),
			zap.Error(err))
	}
}

// ListOrphans returns a page of pending references, newest first.
func (s *Service) ListOrphans(ctx context.Context, q pagination.Query) ([]models.FileReferenceModel, response.Pagination, error) {
	query := s.db.WithContext(ctx).Model(&models.FileReferenceModel{}).
		Where("status = ?", models.FileStatusPending).
		Order("created_at DESC")

	var refs []models.FileReferenceModel
	page, err := pagination.Paginate(query, q, &refs)
	return refs, page, err
}

// CountOrphans counts pending references.
func (s *Service) CountOrphans(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.FileReferenceModel{}).
		Where("status = ?", models.FileStatusPending).
		Count(&count).Error
	return count, err
}

// CleanupOrphans deletes pending references older than maxAge along with
// their stored objects. Returns how many rows were removed.
func (s *Service) CleanupOrphans(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultOrphanMaxAge
	}
	cutoff := time.Now().Add(-maxAge)

	var refs []models.FileReferenceModel
	if err := s.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", models.FileStatusPending, cutoff).
		Find(&refs).Error; err != nil {
		return 0, err
	}

	deleted := 0
	for _, ref := range refs {
		if ref.Path != "" {
			if err := s.deleteObject(ctx, ref.Path); err != nil {
				s.log.Warn("orphan cleanup: object delete failed",
					zap.String("path", ref.Path), zap.Error(err))
			}
		}
		if err := s.db.WithContext(ctx).
			Delete(&models.FileReferenceModel{}, "id = ?", ref.ID).Error; err != nil {
			s.log.Warn("orphan cleanup: row delete failed",
				zap.String("id", ref.ID), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

// DeleteByIDs removes specific pending references (admin batch delete).
func (s *Service) DeleteByIDs(ctx context.Context, ids []string, all bool) (int, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.FileStatusPending)
	if !all {
		if len(ids) == 0 {
			return 0, fmt.Errorf("ids or all is required")
		}
		q = q.Where("id IN ?", ids)
	}

	var refs []models.FileReferenceModel
	if err := q.Find(&refs).Error; err != nil {
		return 0, err
	}

	deleted := 0
	for _, ref := range refs {
		if ref.Path != "" {
			if err := s.deleteObject(ctx, ref.Path); err != nil {
				s.log.Warn("batch delete: object delete failed",
					zap.String("path", ref.Path), zap.Error(err))
			}
		}
		if err := s.db.WithContext(ctx).
			Delete(&models.FileReferenceModel{}, "id = ?", ref.ID).Error; err != nil {
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *Service) deleteObject(ctx context.Context, path string) error {
	if path == "" || s.store == nil {
		return nil
	}
	err := s.store.Delete(ctx, path)
	if errors.Is(err, object.ErrDeleteUnsupported) {
		return nil
	}
	return err
}

func urlSet(refs []models.ImageRef) []string {
	urls := make([]string, 0, len(refs))
	for _, r := range refs {
		if u := strings.TrimSpace(r.URL); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
