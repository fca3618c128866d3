package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchdash/internal/search"
)

const (
	// DefaultMaxResults caps the results kept per provider and query.
	DefaultMaxResults = 20
	// DefaultDeadline bounds one pipeline run across all providers.
	DefaultDeadline = 30 * time.Second
)

// Options configures a Pipeline.
type Options struct {
	// MaxResults is the per-provider cap. Must not be negative.
	MaxResults int
	// Deadline bounds a whole run. Zero selects DefaultDeadline.
	Deadline time.Duration
	// Sequential queries providers one after another in configuration order
	// instead of concurrently.
	Sequential bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{MaxResults: DefaultMaxResults, Deadline: DefaultDeadline}
}

// Outcome is the result of one provider within one run. A non-nil Err is
// the failure marker; Results is empty in that case.
type Outcome struct {
	Provider string
	Query    string
	Results  []search.Result
	Err      error
	Elapsed  time.Duration
}

// Failed reports whether the provider produced no usable answer.
func (o Outcome) Failed() bool { return o.Err != nil }

// Pipeline fans a query out to every configured engine.
type Pipeline struct {
	doer    Doer
	engines []*Engine
	opts    Options
}

// New validates the configuration and returns a Pipeline. Engine order is
// preserved in every run's output.
func New(doer Doer, engines []*Engine, opts Options) (*Pipeline, error) {
	if doer == nil {
		return nil, errors.New("pipeline: nil doer")
	}
	if len(engines) == 0 {
		return nil, errors.New("pipeline: at least one provider is required")
	}
	if opts.MaxResults < 0 {
		return nil, fmt.Errorf("pipeline: max results must not be negative: %d", opts.MaxResults)
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	seen := make(map[string]struct{}, len(engines))
	for _, e := range engines {
		if e == nil || e.Provider == nil {
			return nil, errors.New("pipeline: nil provider")
		}
		if _, dup := seen[e.Name()]; dup {
			return nil, fmt.Errorf("pipeline: duplicate provider %q", e.Name())
		}
		seen[e.Name()] = struct{}{}
	}
	return &Pipeline{doer: doer, engines: append([]*Engine(nil), engines...), opts: opts}, nil
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.opts }

// Providers returns the provider names in configuration order.
func (p *Pipeline) Providers() []string {
	names := make([]string, len(p.engines))
	for i, e := range p.engines {
		names[i] = e.Name()
	}
	return names
}

type finished struct {
	index   int
	results []search.Result
	err     error
	elapsed time.Duration
}

// Run queries every engine for query and returns one Outcome per engine in
// configuration order. It never fails as a whole: provider errors, panics
// and the run deadline are reported on the affected outcomes only.
func (p *Pipeline) Run(ctx context.Context, query string) []Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Deadline)
	defer cancel()

	start := time.Now()
	out := make([]Outcome, len(p.engines))
	for i, e := range p.engines {
		out[i] = Outcome{Provider: e.Name(), Query: query}
	}
	done := make([]bool, len(p.engines))
	record := func(f finished) {
		out[f.index].Results = f.results
		out[f.index].Err = f.err
		out[f.index].Elapsed = f.elapsed
		done[f.index] = true
		logFinished(ctx, out[f.index])
	}

	if p.opts.Sequential {
		for i := range p.engines {
			if ctx.Err() != nil {
				break
			}
			record(p.fetch(ctx, i, query))
		}
	} else {
		// Buffered so that fetches finishing after the deadline never block.
		ch := make(chan finished, len(p.engines))
		for i := range p.engines {
			go func(i int) { ch <- p.fetch(ctx, i, query) }(i)
		}
		pending := len(p.engines)
	collect:
		for pending > 0 {
			select {
			case f := <-ch:
				record(f)
				pending--
			case <-ctx.Done():
				for drained := false; !drained && pending > 0; {
					select {
					case f := <-ch:
						record(f)
						pending--
					default:
						drained = true
					}
				}
				break collect
			}
		}
	}

	for i := range out {
		if done[i] {
			continue
		}
		out[i].Err = p.deadlineError(ctx)
		out[i].Elapsed = time.Since(start)
		logger(ctx).Warn().Str("provider", out[i].Provider).Str("query", query).Msg("provider still outstanding at deadline")
	}
	return out
}

func (p *Pipeline) fetch(ctx context.Context, i int, query string) (f finished) {
	f.index = i
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			f.results = nil
			f.err = fmt.Errorf("provider panic: %v", r)
		}
		f.elapsed = time.Since(start)
	}()
	f.results, f.err = Fetch(ctx, p.doer, p.engines[i], query, p.opts.MaxResults)
	return f
}

func (p *Pipeline) deadlineError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: run cancelled", ErrTimeout)
	}
	return fmt.Errorf("%w: overall deadline of %s exceeded", ErrTimeout, p.opts.Deadline)
}

func logFinished(ctx context.Context, o Outcome) {
	ev := logger(ctx).Debug().Str("provider", o.Provider).Str("query", o.Query).Dur("elapsed", o.Elapsed)
	if o.Err != nil {
		ev.Err(o.Err).Msg("provider failed")
		return
	}
	ev.Int("count", len(o.Results)).Msg("provider finished")
}

// logger returns the run-scoped logger attached to ctx, or the global one.
func logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
