package search

import (
	"net/http"
	"net/url"
	"strings"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML-only DuckDuckGo endpoint.
type DuckDuckGo struct {
	BaseURL   string // defaults to the public html endpoint
	Region    string // kl parameter, defaults to us-en
	UserAgent string
}

func (d *DuckDuckGo) Name() string { return "DuckDuckGo" }

// BuildRequest returns a form POST; the html endpoint does not serve GET
// reliably for non-browser clients.
func (d *DuckDuckGo) BuildRequest(query string) (RequestSpec, error) {
	base := d.BaseURL
	if base == "" {
		base = duckDuckGoURL
	}
	region := d.Region
	if region == "" {
		region = "us-en"
	}
	form := url.Values{}
	form.Set("q", query)
	form.Set("b", "")
	form.Set("kl", region)

	h := http.Header{}
	h.Set("User-Agent", userAgentOr(d.UserAgent))
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return RequestSpec{Method: http.MethodPost, URL: base, Header: h, Body: form.Encode()}, nil
}

// Parse extracts div.result blocks in document order. Blocks without a
// result__a link are ads or separators and are skipped.
func (d *DuckDuckGo) Parse(body []byte) ([]Result, error) {
	doc, err := parseDocument(body)
	if err != nil {
		return nil, err
	}
	var out []Result
	for _, block := range findAll(doc, "div", "result") {
		link := findFirst(block, "a", "result__a")
		if link == nil {
			continue
		}
		out = append(out, Result{
			Title:   textOf(link),
			URL:     unwrapDuckDuckGoURL(attr(link, "href")),
			Snippet: textOf(findFirst(block, "", "result__snippet")),
			Source:  d.Name(),
		})
	}
	return out, nil
}

// unwrapDuckDuckGoURL turns //duckduckgo.com/l/?uddg=<target> redirect links
// into the target URL.
func unwrapDuckDuckGoURL(href string) string {
	href = cleanURL(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return cleanURL(target)
		}
	}
	return href
}
