package search

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ErrEmptyResponse is returned by Parse when the provider sent no body.
var ErrEmptyResponse = errors.New("empty response body")

func parseDocument(body []byte) (*html.Node, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return node, nil
}

// matches reports whether n is an element with the given tag and class.
// An empty tag matches any element.
func matches(n *html.Node, tag, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if tag != "" && !strings.EqualFold(n.Data, tag) {
		return false
	}
	return class == "" || hasClass(n, class)
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// findAll returns matching descendants in document order. Matches are not
// searched for nested matches.
func findAll(n *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if matches(cur, tag, class) {
			out = append(out, cur)
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dfs(c)
	}
	return out
}

func findFirst(n *html.Node, tag, class string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if matches(cur, tag, class) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil && res == nil; c = c.NextSibling {
			dfs(c)
		}
	}
	for c := n.FirstChild; c != nil && res == nil; c = c.NextSibling {
		dfs(c)
	}
	return res
}

// textOf returns the visible text below n with whitespace collapsed.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			switch strings.ToLower(cur.Data) {
			case "script", "style", "noscript":
				return
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return cleanText(b.String())
}
