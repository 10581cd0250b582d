// Package domain normalizes URLs and raw domain strings into the canonical
// keys used to join companies across Visible and Affinity.
package domain

import (
	"net/url"
	"strings"
)

// Normalize extracts and normalizes a domain from a URL or bare domain
// string. Empty input and the "N/A" placeholder used by Visible both
// normalize to "", which is never a valid join key.
//
// Normalization is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" || raw == "N/A" {
		return ""
	}

	host := raw
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil {
			host = u.Host
			if host == "" {
				host = u.Path
			}
		}
	}

	// "www." is removed wherever it occurs, not only as a prefix. The
	// upstream system builds its keys the same way, and the two sides must
	// agree exactly for the join to hold.
	host = strings.ToLower(host)
	host = strings.ReplaceAll(host, "www.", "")
	host = strings.TrimSpace(host)
	host = strings.TrimRight(host, "/")
	return host
}
