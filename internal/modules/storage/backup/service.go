// Package backup dumps the database to BSON archives and restores from
// them. Each table becomes one .bson file inside a zip, plus a manifest;
// archives live under the local backups directory and can be pushed to the
// object store.
package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kautilyalaw/core/internal/modules/storage/object"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	archiveRootDir   = "kautilya-core"
	archiveDBDir     = archiveRootDir + "/db"
	manifestFile     = archiveRootDir + "/manifest.json"
	archiveFormat    = "kautilya-core-bson"
	formatVersion    = 1
	defaultStoreTmpl = "backups/{Y}/{m}/{filename}"
)

var backupTables = []string{
	"users",
	"profiles",
	"user_sessions",
	"courses",
	"blogs",
	"file_references",
}

type manifest struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Engine    string    `json:"engine"`
	CreatedAt time.Time `json:"created_at"`
	Tables    []string  `json:"tables"`
}

type Service struct {
	db    *gorm.DB
	store object.Store
	log   *zap.Logger
	dir   string
}

func NewService(db *gorm.DB, store object.Store, log *zap.Logger, dir string) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, store: store, log: log, dir: dir}
}

// Item describes one local archive.
type Item struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
}

// List returns local archives, newest name first.
func (s *Service) List() []Item {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return []Item{}
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return []Item{}
	}
	items := []Item{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, Item{Filename: e.Name(), Size: formatSize(info.Size())})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Filename > items[j].Filename })
	return items
}

// CreateArchive exports every table as BSON into an in-memory zip.
func (s *Service) CreateArchive() (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)

	exported := make([]string, 0, len(backupTables))
	for _, table := range backupTables {
		var rows []map[string]interface{}
		if err := s.db.Table(table).Find(&rows).Error; err != nil {
			s.log.Warn("backup: skipping table", zap.String("table", table), zap.Error(err))
			continue
		}

		payload, err := encodeBSONRows(rows)
		if err != nil {
			return nil, fmt.Errorf("encode table %s: %w", table, err)
		}

		f, err := w.Create(path.Join(archiveDBDir, table+".bson"))
		if err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if _, err := f.Write(payload); err != nil {
				return nil, err
			}
		}
		exported = append(exported, table)
	}

	m := manifest{
		Format:    archiveFormat,
		Version:   formatVersion,
		Engine:    s.db.Dialector.Name(),
		CreatedAt: time.Now().UTC(),
		Tables:    exported,
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	mf, err := w.Create(manifestFile)
	if err != nil {
		return nil, err
	}
	if _, err := mf.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Artifact is a backup that has been written to the local backups dir.
type Artifact struct {
	Filename string
	Path     string
	Buffer   *bytes.Buffer
}

// WriteLocal creates an archive and stores it on disk.
func (s *Service) WriteLocal(now time.Time) (*Artifact, error) {
	buf, err := s.CreateArchive()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("backup-%s.zip", now.Format("2006-01-02T15-04-05"))
	full := filepath.Join(s.dir, filename)
	if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return &Artifact{Filename: filename, Path: full, Buffer: buf}, nil
}

// UploadToStore writes a fresh archive locally and pushes it to the object
// store under the key template.
func (s *Service) UploadToStore(ctx context.Context, keyTemplate string) (*Artifact, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no object store configured")
	}
	now := time.Now()
	artifact, err := s.WriteLocal(now)
	if err != nil {
		return nil, err
	}
	key := renderArchiveKey(keyTemplate, artifact.Filename, now)
	if _, err := s.store.Upload(ctx, key, artifact.Buffer.Bytes(), "application/zip"); err != nil {
		return nil, fmt.Errorf("upload backup archive: %w", err)
	}
	return artifact, nil
}

// AutoBackup is the cron entry point: local archive plus best-effort store
// upload.
func (s *Service) AutoBackup(ctx context.Context) error {
	now := time.Now()
	artifact, err := s.WriteLocal(now)
	if err != nil {
		return err
	}
	if s.store == nil || s.store.Driver() == "cloudinary" {
		// Cloudinary only takes images; the archive stays local.
		return nil
	}
	key := renderArchiveKey("", artifact.Filename, now)
	if _, err := s.store.Upload(ctx, key, artifact.Buffer.Bytes(), "application/zip"); err != nil {
		s.log.Warn("auto backup: store upload failed", zap.Error(err))
	}
	return nil
}

// Read returns the bytes of a local archive by name.
func (s *Service) Read(filename string) ([]byte, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || !strings.HasSuffix(filename, ".zip") {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(s.dir, filename))
}

// Delete removes local archives by name; unknown names are ignored.
func (s *Service) Delete(filenames []string) {
	for _, name := range filenames {
		name = strings.TrimSpace(filepath.Base(name))
		if name == "" || !strings.HasSuffix(name, ".zip") {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, name))
	}
}

func renderArchiveKey(template, filename string, now time.Time) string {
	tpl := strings.TrimSpace(template)
	if tpl == "" {
		tpl = defaultStoreTmpl
	}
	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{filename}", filename,
	)
	key := replacer.Replace(tpl)
	key = strings.TrimSpace(strings.TrimPrefix(strings.ReplaceAll(key, "\\", "/"), "/"))
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	if key == "" {
		return filename
	}
	return key
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
