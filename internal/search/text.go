package search

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"}

// cleanText collapses whitespace runs and normalizes to NFC so titles from
// different providers compare and print consistently.
func cleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// cleanURL resolves protocol-relative links and drops tracking parameters.
// Values that do not parse are returned trimmed but otherwise untouched.
func cleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = stripTracking(u.RawQuery)
	return u.String()
}

// stripTracking drops tracking parameters from a raw query. The remaining
// pairs keep their order and encoding; a query without tracking parameters
// is returned unchanged.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return rawQuery
	}
	pairs := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if !slices.Contains(trackingParams, key) {
			kept = append(kept, pair)
		}
	}
	if len(kept) == len(pairs) {
		return rawQuery
	}
	return strings.Join(kept, "&")
}
