package search

import (
	"net/http"
	"strings"
)

// DefaultUserAgent is sent to providers that render different markup for
// non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Result represents a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source"` // provider name
}

// RequestSpec describes the HTTP request a provider wants issued for a query.
type RequestSpec struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

// Provider builds requests for and parses responses from one search service.
// Implementations hold no per-query state.
type Provider interface {
	Name() string
	BuildRequest(query string) (RequestSpec, error)
	Parse(body []byte) ([]Result, error)
}

func userAgentOr(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return DefaultUserAgent
	}
	return ua
}
