package app

import (
	"time"

	"github.com/hyperifyio/searchdash/internal/aggregate"
	"github.com/hyperifyio/searchdash/internal/variant"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Query is the template searched for. Placeholders expand into variants.
	Query string

	// Variants
	Module      string
	Placeholder string
	Alphabet    string
	MaxVariants int

	// Providers in output order: duckduckgo, startpage, searxng.
	Providers []string
	UserAgent string
	SearxURL  string
	SearxKey  string

	// Endpoint overrides for mirrors and proxies; empty uses the public sites.
	DuckDuckGoURL string
	StartPageURL  string

	// Pipeline
	MaxResults     int
	RateLimit      time.Duration
	ConnectTimeout time.Duration
	OverallTimeout time.Duration
	Sequential     bool
	MaxAttempts    int

	// LLM-backed variant generation
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Output
	Format     string
	OutputPath string
	Verbose    bool
}

// Defaults used by flags and by file/env overlays to detect unset values.
const (
	DefaultFormat = "text"
)

// DefaultProviders are queried when none are configured.
var DefaultProviders = []string{"duckduckgo", "startpage"}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() Config {
	return Config{
		Module:         variant.DefaultModule,
		Placeholder:    variant.DefaultPlaceholder,
		Providers:      append([]string(nil), DefaultProviders...),
		MaxResults:     aggregate.DefaultMaxResults,
		RateLimit:      aggregate.DefaultRateLimit,
		ConnectTimeout: aggregate.DefaultConnectTimeout,
		OverallTimeout: aggregate.DefaultDeadline,
		MaxAttempts:    1,
		Format:         DefaultFormat,
	}
}
