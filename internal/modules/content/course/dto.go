package course

import (
	"errors"
	"strings"

	"github.com/kautilyalaw/core/internal/models"
)

var errTitleRequired = errors.New("title is required")

// CourseDTO is the admin create/update payload. Numeric fields are lax:
// whatever the form posts, non-numeric input lands as zero. Updates
// overwrite every field, so the same DTO serves both operations.
type CourseDTO struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Level         string            `json:"level"`
	Rating        models.LaxFloat   `json:"rating"`
	Students      models.LaxInt     `json:"students"`
	Lectures      models.LaxInt     `json:"lectures"`
	DurationValue models.LaxInt     `json:"durationValue"`
	DurationType  string            `json:"durationType"`
	Thumbnail     models.ImageRef   `json:"thumbnail"`
	Images        []models.ImageRef `json:"images"`
}

// Validate enforces the one hard invariant: a non-blank title.
func (d *CourseDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errTitleRequired
	}
	return nil
}

func (d *CourseDTO) apply(m *models.CourseModel) {
	m.Title = strings.TrimSpace(d.Title)
	m.Description = d.Description
	m.Category = strings.TrimSpace(d.Category)
	m.Level = strings.TrimSpace(d.Level)
	m.Rating = d.Rating.Float64()
	m.Students = d.Students.Int()
	m.Lectures = d.Lectures.Int()
	m.DurationValue = d.DurationValue.Int()
	m.DurationType = normalizeDurationType(d.DurationType)
	m.Thumbnail = d.Thumbnail
	m.Images = models.ImageRefList(d.Images)
	if m.Images == nil {
		m.Images = models.ImageRefList{}
	}
}

func normalizeDurationType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "hour", "hours":
		return models.DurationHours
	case "day", "days":
		return models.DurationDays
	case "week", "weeks":
		return models.DurationWeeks
	case "month", "months":
		return models.DurationMonths
	default:
		// Unknown labels pass through; the admin UI owns the vocabulary.
		return strings.TrimSpace(raw)
	}
}

type courseResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Level         string            `json:"level"`
	Rating        float64           `json:"rating"`
	Students      int               `json:"students"`
	Lectures      int               `json:"lectures"`
	DurationValue int               `json:"durationValue"`
	DurationType  string            `json:"durationType"`
	Thumbnail     models.ImageRef   `json:"thumbnail"`
	Images        []models.ImageRef `json:"images"`
	CreatedAt     int64             `json:"createdAt"`
	UpdatedAt     int64             `json:"updatedAt"`
}

func toResponse(m *models.CourseModel) courseResponse {
	images := []models.ImageRef(m.Images)
	if images == nil {
		images = []models.ImageRef{}
	}
	return courseResponse{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		Level:         m.Level,
		Rating:        m.Rating,
		Students:      m.Students,
		Lectures:      m.Lectures,
		DurationValue: m.DurationValue,
		DurationType:  m.DurationType,
		Thumbnail:     m.Thumbnail,
		Images:        images,
		CreatedAt:     m.CreatedAt.UnixMilli(),
		UpdatedAt:     m.UpdatedAt.UnixMilli(),
	}
}
