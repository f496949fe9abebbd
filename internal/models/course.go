package models

// Duration unit labels accepted on courses.
const (
	DurationHours  = "Hours"
	DurationDays   = "Days"
	DurationWeeks  = "Weeks"
	DurationMonths = "Months"
)

// CourseModel is a coaching course offering shown on the public site and
// managed from the admin panel.
type CourseModel struct {
	Base
	Title         string       `json:"title"         gorm:"not null"`
	Description   string       `json:"description"   gorm:"type:longtext"`
	Category      string       `json:"category"      gorm:"index"` // UPSC / SSC / Banking / Railways / State Exams
	Level         string       `json:"level"`
	Rating        float64      `json:"rating"        gorm:"default:0"`
	Students      int          `json:"students"      gorm:"default:0"`
	Lectures      int          `json:"lectures"      gorm:"default:0"`
	DurationValue int          `json:"durationValue" gorm:"default:0"`
	DurationType  string       `json:"durationType"  gorm:"default:'Hours'"`
	Thumbnail     ImageRef     `json:"thumbnail"     gorm:"type:longtext;serializer:json"`
	Images        ImageRefList `json:"images"        gorm:"type:longtext"`
}

func (CourseModel) TableName() string { return "courses" }

// ImageRefs returns every storage reference held by the record, thumbnail
// first.
func (c CourseModel) ImageRefs() []ImageRef {
	refs := make([]ImageRef, 0, len(c.Images)+1)
	if c.Thumbnail.URL != "" {
		refs = append(refs, c.Thumbnail)
	}
	return append(refs, c.Images...)
}
