package models

// File reference lifecycle states.
const (
	FileStatusPending = "pending" // uploaded, not yet referenced by a record
	FileStatusLinked  = "linked"  // referenced by a saved course or blog
)

// Referencing record kinds.
const (
	FileRefCourse = "course"
	FileRefBlog   = "blog"
)

// FileReferenceModel tracks uploaded objects so that uploads abandoned
// before the save phase can be rolled back, and linked objects can be
// released when their record is deleted.
type FileReferenceModel struct {
	Base
	FileURL  string `json:"file_url"  gorm:"index;not null"`
	Path     string `json:"path"      gorm:"index"` // storage key; empty when not deletable
	FileName string `json:"file_name"`
	Storage  string `json:"storage"` // s3 | cloudinary
	Status   string `json:"status"    gorm:"index;default:'pending'"`
	RefID    string `json:"ref_id"    gorm:"index"`
	RefType  string `json:"ref_type"  gorm:"index"` // course | blog
}

func (FileReferenceModel) TableName() string { return "file_references" }
