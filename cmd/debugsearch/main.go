// Command debugsearch queries a single provider and dumps what it parsed.
// Useful when a provider changes its markup.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchdash/internal/aggregate"
	"github.com/hyperifyio/searchdash/internal/fetch"
	"github.com/hyperifyio/searchdash/internal/search"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	name := "duckduckgo"
	q := "What is love?"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}
	if len(os.Args) > 2 {
		q = os.Args[2]
	}

	var p search.Provider
	switch name {
	case "duckduckgo", "ddg":
		p = &search.DuckDuckGo{BaseURL: os.Getenv("SEARCHDASH_DUCKDUCKGO_URL")}
	case "startpage":
		p = &search.StartPage{BaseURL: os.Getenv("SEARCHDASH_STARTPAGE_URL")}
	case "searxng", "searx":
		base := os.Getenv("SEARX_URL")
		if base == "" {
			base = "http://localhost:8888"
		}
		p = &search.SearxNG{BaseURL: base, APIKey: os.Getenv("SEARX_KEY")}
	default:
		fmt.Fprintf(os.Stderr, "usage: debugsearch [duckduckgo|startpage|searxng] [query]\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	client := &fetch.Client{UserAgent: "debugsearch/1.0"}
	engine := aggregate.NewEngine(p, -1, 20*time.Second)
	res, err := aggregate.Fetch(ctx, client, engine, q, 5)
	fmt.Println("err:", err)
	for i, r := range res {
		fmt.Printf("%d. %s - %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
}
