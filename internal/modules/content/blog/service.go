// Package blog implements blog articles: public listing and reading plus
// admin create/update/delete with attached image lifecycle.
package blog

import (
	"context"
	"errors"

	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/modules/storage/file"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	files *file.Service
	log   *zap.Logger
}

func NewService(db *gorm.DB, files *file.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, files: files, log: log}
}

// List returns all blogs, newest first.
func (s *Service) List(ctx context.Context, category string) ([]models.BlogModel, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var blogs []models.BlogModel
	if err := q.Find(&blogs).Error; err != nil {
		return nil, err
	}
	return blogs, nil
}

// GetByID returns one blog, or nil when it does not exist.
func (s *Service) GetByID(ctx context.Context, id string) (*models.BlogModel, error) {
	var blog models.BlogModel
	if err := s.db.WithContext(ctx).First(&blog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

// Create inserts a new blog and links its uploaded images.
func (s *Service) Create(ctx context.Context, dto *BlogDTO) (*models.BlogModel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var blog models.BlogModel
	dto.apply(&blog)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&blog).Error; err != nil {
			return err
		}
		return s.files.Link(tx, models.FileRefBlog, blog.ID, blog.ImageRefs())
	})
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// Update overwrites every editable field, images included.
func (s *Service) Update(ctx context.Context, id string, dto *BlogDTO) (*models.BlogModel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	blog, err := s.GetByID(ctx, id)
	if err != nil || blog == nil {
		return blog, err
	}

	dto.apply(blog)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(blog).Select(
			"title", "content", "category", "tags", "thumbnail", "images",
		).Updates(blog).Error; err != nil {
			return err
		}
		if err := s.files.Unlink(tx, models.FileRefBlog, blog.ID, blog.ImageRefs()); err != nil {
			return err
		}
		return s.files.Link(tx, models.FileRefBlog, blog.ID, blog.ImageRefs())
	})
	if err != nil {
		return nil, err
	}
	return blog, nil
}

// Delete removes the blog record first, then releases its stored images
// best-effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	blog, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blog == nil {
		return gorm.ErrRecordNotFound
	}

	if err := s.db.WithContext(ctx).Delete(&models.BlogModel{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.files.Release(ctx, models.FileRefBlog, id, blog.ImageRefs())
	return nil
}

// Count returns the number of blogs.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.BlogModel{}).Count(&count).Error
	return count, err
}

// Latest returns the newest n blogs for the landing aggregate.
func (s *Service) Latest(ctx context.Context, n int) ([]models.BlogModel, error) {
	if n <= 0 {
		n = 3
	}
	var blogs []models.BlogModel
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&blogs).Error
	return blogs, err
}
