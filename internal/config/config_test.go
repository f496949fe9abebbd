package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "env: production\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != defaultPort {
		t.Errorf("port = %d, want default %d", cfg.Port, defaultPort)
	}
	if cfg.IsDev() {
		t.Error("env production should not be dev")
	}
	if cfg.Storage.Driver != "s3" {
		t.Errorf("driver = %q, want s3", cfg.Storage.Driver)
	}
	if cfg.Storage.MaxSizeMB != 10 {
		t.Errorf("max_size_mb = %d, want 10", cfg.Storage.MaxSizeMB)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
port: 8080
env: development
jwt_secret: topsecret
storage:
  driver: cloudinary
  cloudinary:
    cloud_name: demo
    upload_preset: unsigned
auth:
  google_client_id: abc.apps.googleusercontent.com
  session_ttl_hours: 48
`))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 || cfg.JWTSecret != "topsecret" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Error("development should be dev")
	}
	if cfg.Storage.Driver != "cloudinary" || cfg.Storage.Cloudinary.CloudName != "demo" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Auth.SessionTTLHours != 48 {
		t.Errorf("session_ttl_hours = %d, want 48", cfg.Auth.SessionTTLHours)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := Load(writeConfig(t, "port: 99999\n")); err == nil {
		t.Error("out-of-range port should fail")
	}
	if _, err := Load(writeConfig(t, "storage:\n  driver: ftp\n")); err == nil {
		t.Error("unknown storage driver should fail")
	}
	if _, err := Load(writeConfig(t, "no_such_field: 1\n")); err == nil {
		t.Error("unknown field should fail with KnownFields")
	}
}

func TestDSNValue(t *testing.T) {
	raw := DatabaseConfig{DSN: "user:pw@tcp(db:3306)/app?parseTime=true"}
	if got := raw.DSNValue(); got != raw.DSN {
		t.Errorf("raw dsn not passed through: %q", got)
	}

	assembled := DatabaseConfig{Host: "db.internal", User: "kautilya", Password: "pw", Name: "content"}.DSNValue()
	for _, want := range []string{"kautilya:pw@tcp(db.internal:3306)/content", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(assembled, want) {
			t.Errorf("dsn %q missing %q", assembled, want)
		}
	}
}
