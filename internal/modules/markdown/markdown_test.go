package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out := Render("# Hello\n\nSome **bold** text.")
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("unexpected html: %s", out)
	}

	// GFM tables are enabled.
	out = Render("| a | b |\n| - | - |\n| 1 | 2 |")
	if !strings.Contains(out, "<table>") {
		t.Fatalf("table not rendered: %s", out)
	}
}

func TestExtractHeadings(t *testing.T) {
	text := "# Top\n\nbody\n\n## Sub Heading\n\n####### too deep\n\n##\n"
	headings := ExtractHeadings(text)
	if len(headings) != 2 {
		t.Fatalf("headings = %d, want 2", len(headings))
	}
	if headings[0].Level != 1 || headings[0].Text != "Top" {
		t.Fatalf("unexpected first heading: %+v", headings[0])
	}
	if headings[1].ID != "sub-heading" {
		t.Fatalf("unexpected slug: %q", headings[1].ID)
	}
}
