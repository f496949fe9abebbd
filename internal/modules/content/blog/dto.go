package blog

import (
	"errors"
	"strings"

	"github.com/kautilyalaw/core/internal/models"
)

var errTitleRequired = errors.New("title is required")

// BlogDTO is the admin create/update payload. Updates overwrite every field.
type BlogDTO struct {
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Category  string            `json:"category"`
	Tags      []string          `json:"tags"`
	Thumbnail models.ImageRef   `json:"thumbnail"`
	Images    []models.ImageRef `json:"images"`
}

// Validate enforces the one hard invariant: a non-blank title.
func (d *BlogDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errTitleRequired
	}
	return nil
}

func (d *BlogDTO) apply(m *models.BlogModel) {
	m.Title = strings.TrimSpace(d.Title)
	m.Content = d.Content
	m.Category = strings.TrimSpace(d.Category)
	m.Tags = cleanTags(d.Tags)
	m.Thumbnail = d.Thumbnail
	m.Images = models.ImageRefList(d.Images)
	if m.Images == nil {
		m.Images = models.ImageRefList{}
	}
}

func cleanTags(tags []string) models.StringArray {
	out := models.StringArray{}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

type blogResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	HTML      string            `json:"html,omitempty"`
	Category  string            `json:"category"`
	Tags      []string          `json:"tags"`
	Thumbnail models.ImageRef   `json:"thumbnail"`
	Images    []models.ImageRef `json:"images"`
	CreatedAt int64             `json:"createdAt"`
	UpdatedAt int64             `json:"updatedAt"`
}

func toResponse(m *models.BlogModel, html string) blogResponse {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	images := []models.ImageRef(m.Images)
	if images == nil {
		images = []models.ImageRef{}
	}
	return blogResponse{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		HTML:      html,
		Category:  m.Category,
		Tags:      tags,
		Thumbnail: m.Thumbnail,
		Images:    images,
		CreatedAt: m.CreatedAt.UnixMilli(),
		UpdatedAt: m.UpdatedAt.UnixMilli(),
	}
}
