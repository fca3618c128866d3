package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/searchdash/internal/aggregate"
	"github.com/hyperifyio/searchdash/internal/driver"
	"github.com/hyperifyio/searchdash/internal/fetch"
	"github.com/hyperifyio/searchdash/internal/report"
	"github.com/hyperifyio/searchdash/internal/search"
	"github.com/hyperifyio/searchdash/internal/variant"
)

// App wires configuration to the search pipeline and the variant driver.
type App struct {
	cfg      Config
	pipeline *aggregate.Pipeline
	factory  variant.Factory
	chat     variant.ChatClient
	out      io.Writer
	errOut   io.Writer
}

// Summary describes a finished invocation.
type Summary struct {
	Runs     int
	Failures int // provider failures across all runs
}

// New validates cfg and builds the providers and pipeline. Results are
// written to out and failure causes to errOut.
func New(cfg Config, out, errOut io.Writer) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	factory, err := variant.Lookup(cfg.Module)
	if err != nil {
		return nil, err
	}
	providers, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}
	engines := make([]*aggregate.Engine, 0, len(providers))
	for _, p := range providers {
		engines = append(engines, aggregate.NewEngine(p, cfg.RateLimit, cfg.ConnectTimeout))
	}
	client := &fetch.Client{
		HTTPClient:      newSearchHTTPClient(cfg.ConnectTimeout),
		UserAgent:       cfg.UserAgent,
		MaxAttempts:     cfg.MaxAttempts,
		RedirectMaxHops: 5,
		MaxConcurrent:   len(engines),
	}
	pl, err := aggregate.New(client, engines, aggregate.Options{
		MaxResults: cfg.MaxResults,
		Deadline:   cfg.OverallTimeout,
		Sequential: cfg.Sequential,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, pipeline: pl, factory: factory, out: out, errOut: errOut}
	if cfg.LLMModel != "" {
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		a.chat = openai.NewClientWithConfig(transportCfg)
	}
	log.Debug().Strs("providers", pl.Providers()).Str("module", cfg.Module).Int("max_results", cfg.MaxResults).Bool("sequential", cfg.Sequential).Msg("pipeline configured")
	return a, nil
}

func buildProviders(cfg Config) ([]search.Provider, error) {
	out := make([]search.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch normalizeProvider(name) {
		case "duckduckgo":
			out = append(out, &search.DuckDuckGo{BaseURL: cfg.DuckDuckGoURL, UserAgent: cfg.UserAgent})
		case "startpage":
			out = append(out, &search.StartPage{BaseURL: cfg.StartPageURL, UserAgent: cfg.UserAgent})
		case "searxng":
			out = append(out, &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, UserAgent: cfg.UserAgent})
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return out, nil
}

// Run searches the configured query, expanding variants when it contains the
// placeholder. Provider failures are reported but do not fail the run.
func (a *App) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	w, err := report.New(a.cfg.Format, a.out, a.errOut, a.cfg.OutputPath)
	if err != nil {
		return sum, err
	}

	loop := &driver.Loop{
		Placeholder: a.cfg.Placeholder,
		Pipeline: func(ctx context.Context, query string) error {
			id := uuid.NewString()
			logger := log.With().Str("run_id", id).Logger()
			logger.Info().Str("query", query).Msg("searching")
			start := time.Now()
			outcomes := a.pipeline.Run(logger.WithContext(ctx), query)
			for _, o := range outcomes {
				if o.Failed() {
					sum.Failures++
				}
			}
			logger.Debug().Dur("elapsed", time.Since(start)).Msg("run finished")
			return w.WriteRun(report.Run{ID: id, Query: query, Outcomes: outcomes})
		},
	}
	if variant.NeedsExpansion(a.cfg.Query, loop.Placeholder) {
		gen, err := a.factory(ctx, variant.Options{
			Template:    a.cfg.Query,
			Placeholder: a.cfg.Placeholder,
			Alphabet:    a.cfg.Alphabet,
			Chat:        a.chat,
			Model:       a.cfg.LLMModel,
			MaxVariants: a.cfg.MaxVariants,
		})
		if err != nil {
			_ = w.Close()
			return sum, fmt.Errorf("init module %q: %w", a.cfg.Module, err)
		}
		loop.Generator = gen
	}

	sum.Runs, err = loop.Run(ctx, a.cfg.Query)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	ev := log.Info()
	if sum.Failures > 0 {
		ev = log.Warn()
	}
	ev.Int("runs", sum.Runs).Int("provider_failures", sum.Failures).Str("module", strings.ToLower(a.cfg.Module)).Msg("search complete")
	return sum, err
}
