package app

import "testing"

func TestExtractOriginHost(t *testing.T) {
	cases := map[string]string{
		"https://www.kautilyalaw.in":      "www.kautilyalaw.in",
		"http://localhost:5173":           "localhost:5173",
		"not a url":                       "not a url",
		"https://admin.kautilyalaw.in:88": "admin.kautilyalaw.in:88",
	}
	for in, want := range cases {
		if got := extractOriginHost(in); got != want {
			t.Errorf("extractOriginHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchOriginPattern(t *testing.T) {
	tests := []struct {
		pattern, host string
		want          bool
	}{
		{"www.kautilyalaw.in", "www.kautilyalaw.in", true},
		{"www.kautilyalaw.in", "evil.example.com", false},
		{"*.kautilyalaw.in", "admin.kautilyalaw.in", true},
		{"*.kautilyalaw.in", "kautilyalaw.in.evil.com", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "localhostel.example", false},
		{"", "anything", false},
	}
	for _, tt := range tests {
		if got := matchOriginPattern(tt.pattern, tt.host); got != tt.want {
			t.Errorf("matchOriginPattern(%q, %q) = %v, want %v", tt.pattern, tt.host, got, tt.want)
		}
	}
}
