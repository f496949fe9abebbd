package app

import (
	"net/url"
	"strings"
)

// extractOriginHost returns the "host[:port]" portion of an Origin header
// value. Malformed origins pass through unchanged so exact patterns can
// still match them.
func extractOriginHost(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern reports whether host matches an allowed-origin pattern.
// Supported forms: exact host, "*.example.com" (any subdomain), and
// "localhost:*" (any port).
func matchOriginPattern(pattern, host string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	if pattern == host {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	if strings.HasSuffix(pattern, ":*") {
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
