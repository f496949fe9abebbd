package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/kautilyalaw/core/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:backup_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.UserModel{}, &models.ProfileModel{}, &models.UserSession{},
		&models.CourseModel{}, &models.BlogModel{}, &models.FileReferenceModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, nil, nil, t.TempDir()), db
}

func TestArchiveRoundTrip(t *testing.T) {
	svc, db := newTestService(t)

	course := models.CourseModel{Title: "Judiciary Crash Course", Category: "State Exams", Students: 42}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	blog := models.BlogModel{Title: "Prelims Notes", Tags: models.StringArray{"upsc"}}
	if err := db.Create(&blog).Error; err != nil {
		t.Fatalf("seed blog: %v", err)
	}

	buf, err := svc.CreateArchive()
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names[archiveDBDir+"/courses.bson"] || !names[manifestFile] {
		t.Fatalf("archive entries: %v", names)
	}

	// Mutate, then restore; the archive contents must win.
	db.Model(&course).Update("title", "Renamed")
	if err := db.Create(&models.CourseModel{Title: "Extra"}).Error; err != nil {
		t.Fatalf("seed extra: %v", err)
	}

	if err := svc.Restore(zr); err != nil {
		t.Fatalf("restore: %v", err)
	}

	var courses []models.CourseModel
	if err := db.Find(&courses).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("courses = %d, want 1", len(courses))
	}
	if courses[0].Title != "Judiciary Crash Course" || courses[0].Students != 42 {
		t.Fatalf("restored course: %+v", courses[0])
	}

	var blogs []models.BlogModel
	db.Find(&blogs)
	if len(blogs) != 1 || blogs[0].Title != "Prelims Notes" {
		t.Fatalf("restored blogs: %+v", blogs)
	}
}

func TestRestoreRejectsEmptyArchive(t *testing.T) {
	svc, _ := newTestService(t)

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	f, _ := w.Create("unrelated.txt")
	_, _ = f.Write([]byte("hello"))
	_ = w.Close()

	zr, _ := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err := svc.Restore(zr); err == nil {
		t.Fatal("archive without table dumps must be rejected")
	}
}

func TestWriteLocalAndList(t *testing.T) {
	svc, _ := newTestService(t)

	artifact, err := svc.WriteLocal(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("write local: %v", err)
	}
	if artifact.Filename != "backup-2026-05-01T12-00-00.zip" {
		t.Fatalf("filename = %q", artifact.Filename)
	}

	items := svc.List()
	if len(items) != 1 || items[0].Filename != artifact.Filename {
		t.Fatalf("list = %+v", items)
	}

	data, err := svc.Read(artifact.Filename)
	if err != nil || len(data) == 0 {
		t.Fatalf("read: %v (%d bytes)", err, len(data))
	}

	svc.Delete([]string{artifact.Filename})
	if items := svc.List(); len(items) != 0 {
		t.Fatalf("delete failed: %+v", items)
	}
}

func TestRenderArchiveKey(t *testing.T) {
	now := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	if got := renderArchiveKey("", "a.zip", now); got != "backups/2026/02/a.zip" {
		t.Fatalf("default template: %q", got)
	}
	if got := renderArchiveKey("//x//{d}/{filename}", "a.zip", now); got != "x/03/a.zip" {
		t.Fatalf("normalize: %q", got)
	}
}
