package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperifyio/searchdash/internal/search"
)

var (
	// ErrTimeout marks a provider that did not answer within its connect
	// timeout or before the pipeline deadline.
	ErrTimeout = errors.New("timed out")
	// ErrParse marks a response that could not be turned into results.
	ErrParse = errors.New("unparseable response")
)

// Doer executes a provider request and returns the decoded body.
type Doer interface {
	Do(ctx context.Context, spec search.RequestSpec) ([]byte, error)
}

// Fetch runs one provider request for query and returns at most maxResults
// results in provider order. The engine's request timestamp is advanced
// before the request is issued, whatever its outcome.
func Fetch(ctx context.Context, doer Doer, e *Engine, query string, maxResults int) ([]search.Result, error) {
	if maxResults < 0 {
		return nil, fmt.Errorf("max results must not be negative: %d", maxResults)
	}
	if maxResults == 0 {
		return []search.Result{}, nil
	}
	if err := e.wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limit: %v", ErrTimeout, err)
	}
	spec, err := e.Provider.BuildRequest(query)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	rctx, cancel := context.WithTimeout(ctx, e.ConnectTimeout)
	defer cancel()
	body, err := doer.Do(rctx, spec)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: pipeline deadline reached", ErrTimeout)
			}
			return nil, fmt.Errorf("%w: no response within %s", ErrTimeout, e.ConnectTimeout)
		}
		return nil, fmt.Errorf("request: %w", err)
	}

	results, err := e.Provider.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	n := min(len(results), maxResults)
	out := make([]search.Result, n)
	copy(out, results[:n])
	for i := range out {
		out[i].Source = e.Name()
	}
	return out, nil
}
