// Package course implements the course catalog: public listing plus admin
// create/update/delete with attached image lifecycle.
package course

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

// List returns all courses, newest first. An optional category narrows the
// result.
func (s *Service) List(ctx context.Context, category string) ([]models.CourseModel, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var courses []models.CourseModel
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// GetByID returns one course, or nil when it does not exist.
func (s *Service) GetByID(ctx context.Context, id string) (*models.CourseModel, error) {
	var course models.CourseModel
	if err := s.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// Create inserts a new course and links its uploaded images. Retried
// submissions create distinct records; there is no dedup key.
func (s *Service) Create(ctx context.Context, dto *CourseDTO) (*models.CourseModel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var course models.CourseModel
	dto.apply(&course)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		return s.files.Link(tx, models.FileRefCourse, course.ID, course.ImageRefs())
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update overwrites every editable field, images included. Images dropped by
// the new payload go back to the pending pool for orphan cleanup.
func (s *Service) Update(ctx context.Context, id string, dto *CourseDTO) (*models.CourseModel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	course, err := s.GetByID(ctx, id)
	if err != nil || course == nil {
		return course, err
	}

	dto.apply(course)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(course).Select(
			"title", "description", "category", "level", "rating",
			"students", "lectures", "duration_value", "duration_type",
			"thumbnail", "images",
		).Updates(course).Error; err != nil {
			return err
		}
		if err := s.files.Unlink(tx, models.FileRefCourse, course.ID, course.ImageRefs()); err != nil {
			return err
		}
		return s.files.Link(tx, models.FileRefCourse, course.ID, course.ImageRefs())
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// Delete removes the course record first, then releases its stored images
// best-effort. A failed object delete leaves an orphaned binary and a log
// line, never a dangling record.
func (s *Service) Delete(ctx context.Context, id string) error {
	course, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if course == nil {
		return gorm.ErrRecordNotFound
	}

	if err := s.db.WithContext(ctx).Delete(&models.CourseModel{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.files.Release(ctx, models.FileRefCourse, id, course.ImageRefs())
	return nil
}

// Count returns the number of courses.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CourseModel{}).Count(&count).Error
	return count, err
}

// Latest returns the newest n courses for the landing aggregate.
func (s *Service) Latest(ctx context.Context, n int) ([]models.CourseModel, error) {
	if n <= 0 {
		n = 6
	}
	var courses []models.CourseModel
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&courses).Error
	return courses, err
}
