package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/modules/storage/file"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:course_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.CourseModel{}, &models.FileReferenceModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, file.NewService(db, nil, nil), nil), db
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &CourseDTO{Title: "   "})
	if !errors.Is(err, errTitleRequired) {
		t.Fatalf("blank title: %v", err)
	}

	var count int64
	svc.db.Model(&models.CourseModel{}).Count(&count)
	if count != 0 {
		t.Fatal("rejected submission must not persist")
	}
}

func TestLaxNumericCoercion(t *testing.T) {
	payload := `{
		"title": "UPSC Foundation",
		"rating": "4.5",
		"students": "not a number",
		"lectures": 120,
		"durationValue": null,
		"durationType": "months"
	}`

	var dto CourseDTO
	if err := json.Unmarshal([]byte(payload), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	svc, _ := newTestService(t)
	course, err := svc.Create(context.Background(), &dto)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if course.Rating != 4.5 {
		t.Errorf("rating = %v, want 4.5", course.Rating)
	}
	if course.Students != 0 {
		t.Errorf("students = %d, want 0 for garbage input", course.Students)
	}
	if course.Lectures != 120 {
		t.Errorf("lectures = %d, want 120", course.Lectures)
	}
	if course.DurationValue != 0 {
		t.Errorf("durationValue = %d, want 0 for null", course.DurationValue)
	}
	if course.DurationType != models.DurationMonths {
		t.Errorf("durationType = %q, want Months", course.DurationType)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	for i, title := range []string{"First", "Second", "Third"} {
		course, err := svc.Create(ctx, &CourseDTO{Title: title})
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		// Space out createdAt; sqlite timestamps can collide inside one tick.
		db.Model(course).Update("created_at", time.Now().Add(time.Duration(i)*time.Minute))
	}

	courses, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("len = %d, want 3", len(courses))
	}
	if courses[0].Title != "Third" || courses[2].Title != "First" {
		t.Fatalf("not newest-first: %q, %q, %q", courses[0].Title, courses[1].Title, courses[2].Title)
	}
}

func TestRetriedCreateMakesDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := CourseDTO{Title: "Same Course"}
	if _, err := svc.Create(ctx, &dto); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, &dto); err != nil {
		t.Fatalf("second create: %v", err)
	}

	var count int64
	svc.db.Model(&models.CourseModel{}).Count(&count)
	if count != 2 {
		t.Fatalf("count = %d, want 2 (no dedup key)", count)
	}
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	course, err := svc.Create(ctx, &CourseDTO{
		Title:    "Old Title",
		Category: "UPSC",
		Students: 100,
		Images:   []models.ImageRef{{URL: "https://cdn.test/a.png", Path: "a.png"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The update payload omits category and images; both must be cleared,
	// not merged.
	updated, err := svc.Update(ctx, course.ID, &CourseDTO{Title: "New Title"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New Title" || updated.Category != "" || updated.Students != 0 {
		t.Fatalf("fields not overwritten: %+v", updated)
	}
	if len(updated.Images) != 0 {
		t.Fatalf("images not overwritten: %v", updated.Images)
	}

	var fresh models.CourseModel
	if err := svc.db.First(&fresh, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Category != "" || len(fresh.Images) != 0 {
		t.Fatalf("overwrite not persisted: %+v", fresh)
	}
}

func TestUpdateMissingCourse(t *testing.T) {
	svc, _ := newTestService(t)

	course, err := svc.Update(context.Background(), "does-not-exist", &CourseDTO{Title: "x"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if course != nil {
		t.Fatal("expected nil for missing course")
	}
}

func TestDeleteRemovesRecordAndReferences(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	ref := models.FileReferenceModel{
		FileURL: "https://cdn.test/img.png",
		Path:    "img.png",
		Status:  models.FileStatusPending,
	}
	if err := db.Create(&ref).Error; err != nil {
		t.Fatalf("seed ref: %v", err)
	}

	course, err := svc.Create(ctx, &CourseDTO{
		Title:  "Doomed",
		Images: []models.ImageRef{{URL: ref.FileURL, Path: ref.Path}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Creating linked the reference.
	var linked models.FileReferenceModel
	if err := db.First(&linked, "file_url = ?", ref.FileURL).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if linked.Status != models.FileStatusLinked || linked.RefID != course.ID {
		t.Fatalf("reference not linked: %+v", linked)
	}

	if err := svc.Delete(ctx, course.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got, _ := svc.GetByID(ctx, course.ID); got != nil {
		t.Fatal("course record still present")
	}
	var refCount int64
	db.Model(&models.FileReferenceModel{}).Where("ref_id = ?", course.ID).Count(&refCount)
	if refCount != 0 {
		t.Fatalf("references remaining = %d", refCount)
	}

	if err := svc.Delete(ctx, course.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}
