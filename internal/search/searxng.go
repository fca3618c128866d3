package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SearxNG implements Provider against a SearxNG instance's JSON /search endpoint.
type SearxNG struct {
	BaseURL   string
	APIKey    string // optional
	UserAgent string // optional custom UA
}

func (s *SearxNG) Name() string { return "SearxNG" }

func (s *SearxNG) BuildRequest(query string) (RequestSpec, error) {
	if s.BaseURL == "" {
		return RequestSpec{}, errors.New("missing searxng base url")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return RequestSpec{}, fmt.Errorf("searxng base url: %w", err)
	}
	// Ensure path
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("language", "auto")
	q.Set("safesearch", "1")
	q.Set("categories", "general")
	if s.APIKey != "" {
		q.Set("apikey", s.APIKey)
	}
	u.RawQuery = q.Encode()

	h := http.Header{}
	h.Set("Accept", "application/json")
	if s.UserAgent != "" {
		h.Set("User-Agent", s.UserAgent)
	}
	return RequestSpec{Method: http.MethodGet, URL: u.String(), Header: h}, nil
}

func (s *SearxNG) Parse(body []byte) ([]Result, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyResponse
	}
	var sr searxResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode searxng json: %w", err)
	}
	out := make([]Result, 0, len(sr.Results))
	for _, r := range sr.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		out = append(out, Result{
			Title:   cleanText(r.Title),
			URL:     cleanURL(r.URL),
			Snippet: cleanText(r.Content),
			Source:  s.Name(),
		})
	}
	return out, nil
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}
