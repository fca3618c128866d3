package search

import (
	"fmt"
	"net/http"
	"net/url"
)

const startPageURL = "https://www.startpage.com/do/search"

// StartPage scrapes StartPage's web results page.
type StartPage struct {
	BaseURL   string
	Language  string // defaults to english
	UserAgent string
}

func (s *StartPage) Name() string { return "StartPage" }

func (s *StartPage) BuildRequest(query string) (RequestSpec, error) {
	base := s.BaseURL
	if base == "" {
		base = startPageURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return RequestSpec{}, fmt.Errorf("startpage base url: %w", err)
	}
	lang := s.Language
	if lang == "" {
		lang = "english"
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("cat", "web")
	q.Set("language", lang)
	u.RawQuery = q.Encode()

	h := http.Header{}
	h.Set("User-Agent", userAgentOr(s.UserAgent))
	return RequestSpec{Method: http.MethodGet, URL: u.String(), Header: h}, nil
}

func (s *StartPage) Parse(body []byte) ([]Result, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return nil, err
	}
	var out []Result
	for _, block := range findAll(doc, "div", "w-gl__result") {
		title := findFirst(block, "a", "w-gl__result-title")
		if title == nil {
			continue
		}
		href := attr(title, "href")
		if link := findFirst(block, "a", "w-gl__result-url"); link != nil {
			href = attr(link, "href")
		}
		out = append(out, Result{
			Title:   textOf(title),
			URL:     cleanURL(href),
			Snippet: textOf(findFirst(block, "p", "w-gl__description")),
			Source:  s.Name(),
		})
	}
	return out, nil
}
