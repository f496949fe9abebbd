package models

// BlogModel is a blog article managed from the admin panel.
type BlogModel struct {
	Base
	Title     string       `json:"title"     gorm:"not null"`
	Content   string       `json:"content"   gorm:"type:longtext"`
	Category  string       `json:"category"  gorm:"index"`
	Tags      StringArray  `json:"tags"      gorm:"type:longtext"`
	Thumbnail ImageRef     `json:"thumbnail" gorm:"type:longtext;serializer:json"`
	Images    ImageRefList `json:"images"    gorm:"type:longtext"`
}

func (BlogModel) TableName() string { return "blogs" }

// ImageRefs returns every storage reference held by the record, thumbnail
// first.
func (b BlogModel) ImageRefs() []ImageRef {
	refs := make([]ImageRef, 0, len(b.Images)+1)
	if b.Thumbnail.URL != "" {
		refs = append(refs, b.Thumbnail)
	}
	return append(refs, b.Images...)
}
