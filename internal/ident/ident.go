// Package ident derives deterministic, content-addressed identifiers.
// Identical input tuples always yield identical ids, so independent writer
// processes never need a shared sequence counter.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Separator joins id parts before hashing
const Separator = "::"

// MakeID creates a deterministic id from one or more string parts. Empty
// and whitespace-only parts are skipped; remaining parts are trimmed and
// joined before hashing.
func MakeID(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return MakeHash(strings.Join(kept, Separator))
}

// MakeHash returns the hex-encoded SHA-256 digest of the payload
func MakeHash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Domain extracts the lower-cased host component of a URL. Malformed URLs
// degrade to an empty string rather than an error; bare hostnames without a
// scheme are returned as-is.
func Domain(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := parsed.Host
	if host == "" {
		// "example.com/path" parses with an empty host; fall back to the
		// first path segment the way a hostname-like string would read.
		host = parsed.Path
		if idx := strings.IndexByte(host, '/'); idx >= 0 {
			host = host[:idx]
		}
	}
	return strings.ToLower(strings.TrimSpace(host))
}
