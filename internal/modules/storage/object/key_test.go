package object

import (
	"strings"
	"testing"
	"time"
)

func TestRenderObjectKeyTokens(t *testing.T) {
	now := time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)
	payload := []byte("hello")

	key := RenderObjectKey("uploads/{Y}/{m}/{d}/{filename}.{ext}", "Photo One.PNG", payload, now)
	if key != "uploads/2026/03/07/Photo One.png" {
		t.Fatalf("unexpected key: %q", key)
	}

	key = RenderObjectKey("{y}{m}{d}{h}{i}{s}.{ext}", "a.jpg", payload, now)
	if key != "260307140509.jpg" {
		t.Fatalf("unexpected key: %q", key)
	}
}

func TestRenderObjectKeyDefaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	key := RenderObjectKey("", "pic.jpeg", []byte("x"), now)
	if !strings.HasPrefix(key, "uploads/2026/01/") || !strings.HasSuffix(key, ".jpeg") {
		t.Fatalf("default template produced %q", key)
	}

	// No extension falls back to .dat, empty name to "file".
	key = RenderObjectKey("{filename}.{ext}", "", []byte("x"), now)
	if key != "file.dat" {
		t.Fatalf("unexpected fallback key: %q", key)
	}
}

func TestRenderObjectKeyRandomTokens(t *testing.T) {
	now := time.Now()
	key := RenderObjectKey("r/{str-8}.{ext}", "a.png", nil, now)
	if !strings.HasPrefix(key, "r/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key: %q", key)
	}
	if got := len(strings.TrimSuffix(strings.TrimPrefix(key, "r/"), ".png")); got != 8 {
		t.Fatalf("random segment length = %d, want 8", got)
	}

	a := RenderObjectKey("{uuid}", "a.png", nil, now)
	b := RenderObjectKey("{uuid}", "a.png", nil, now)
	if a == b {
		t.Fatal("uuid token produced identical keys")
	}
}

func TestRenderObjectKeyMD5(t *testing.T) {
	now := time.Now()
	full := RenderObjectKey("{md5}", "a.png", []byte("payload"), now)
	short := RenderObjectKey("{md5-16}", "a.png", []byte("payload"), now)
	if len(full) != 32 || len(short) != 16 {
		t.Fatalf("md5 lengths = %d/%d", len(full), len(short))
	}
	if !strings.HasPrefix(full, short) {
		t.Fatal("md5-16 is not a prefix of md5")
	}
}

func TestValidateUploadFile(t *testing.T) {
	if err := ValidateUploadFile("a.png", 100, "jpg,png", 10); err != nil {
		t.Fatalf("png should be allowed: %v", err)
	}
	if err := ValidateUploadFile("a.PNG", 100, ".jpg, .png", 10); err != nil {
		t.Fatalf("case and dots should be tolerated: %v", err)
	}
	if err := ValidateUploadFile("a.exe", 100, "jpg,png", 10); err == nil {
		t.Fatal("exe should be rejected")
	}
	if err := ValidateUploadFile("noext", 100, "jpg", 10); err == nil {
		t.Fatal("missing extension should be rejected")
	}
	if err := ValidateUploadFile("a.png", 11*1024*1024, "png", 10); err == nil {
		t.Fatal("oversize should be rejected")
	}
	if err := ValidateUploadFile("a.anything", 100, "", 10); err != nil {
		t.Fatalf("empty allow list should allow everything: %v", err)
	}
}

func TestDetectContentType(t *testing.T) {
	if got := DetectContentType("a.png", nil, "image/webp"); got != "image/webp" {
		t.Fatalf("fallback should win: %q", got)
	}
	if got := DetectContentType("a.png", nil, ""); !strings.HasPrefix(got, "image/png") {
		t.Fatalf("extension sniff: %q", got)
	}
	if got := DetectContentType("", nil, ""); got != "application/octet-stream" {
		t.Fatalf("empty input: %q", got)
	}
}

func TestNormalizeObjectKey(t *testing.T) {
	if got := normalizeObjectKey("/a//b\\c/"); got != "a/b/c/" {
		t.Fatalf("normalize: %q", got)
	}
	if got := encodeObjectKey("a b/c"); got != "a%20b/c" {
		t.Fatalf("encode: %q", got)
	}
}
