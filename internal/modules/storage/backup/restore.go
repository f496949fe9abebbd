package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/kautilyalaw/core/internal/database"
	"gorm.io/gorm"
)

// Restore replaces table contents from a backup archive inside one
// transaction. Tables absent from the archive are left untouched.
func (s *Service) Restore(zr *zip.Reader) error {
	if zr == nil {
		return fmt.Errorf("invalid restore input")
	}

	entries := make(map[string]*zip.File)
	for _, f := range zr.File {
		table, ok := parseArchiveEntry(f.Name)
		if !ok {
			continue
		}
		entries[table] = f
	}
	if len(entries) == 0 {
		return fmt.Errorf("archive holds no recognizable table dumps")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if strings.EqualFold(tx.Dialector.Name(), "mysql") {
			if err := tx.Exec("SET FOREIGN_KEY_CHECKS = 0").Error; err != nil {
				return err
			}
			defer tx.Exec("SET FOREIGN_KEY_CHECKS = 1")
		}

		for _, table := range backupTables {
			f, ok := entries[table]
			if !ok {
				continue
			}
			rows, err := readArchiveRows(f)
			if err != nil {
				return fmt.Errorf("decode rows for table %s: %w", table, err)
			}

			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
			for _, row := range rows {
				normalized := normalizeRestoreRow(row)
				if len(normalized) == 0 {
					continue
				}
				if err := tx.Table(table).Create(normalized).Error; err != nil {
					if database.IsDuplicateEntry(err) {
						continue
					}
					return fmt.Errorf("restore row into %s: %w", table, err)
				}
			}
		}
		return nil
	})
}

// parseArchiveEntry maps an archive path to a known table name. Both the
// current layout (kautilya-core/db/<table>.bson) and a flat layout are
// accepted.
func parseArchiveEntry(name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if !strings.HasSuffix(base, ".bson") {
		return "", false
	}
	table := strings.TrimSuffix(base, ".bson")
	for _, known := range backupTables {
		if table == known {
			return table, true
		}
	}
	return "", false
}

func readArchiveRows(f *zip.File) ([]map[string]interface{}, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return decodeBSONRows(payload)
}

// normalizeRestoreRow adapts a decoded document to column names: Mongo-style
// "_id" becomes "id" and BSON wrapper types unwrap to plain Go values.
func normalizeRestoreRow(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for key, value := range row {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if key == "_id" {
			key = "id"
		}
		out[key] = normalizeBSONValue(value)
	}
	return out
}
