package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperifyio/searchdash/internal/variant"
)

// RunFunc executes one pipeline run for a concrete query.
type RunFunc func(ctx context.Context, query string) error

// Loop couples a variant generator to a pipeline run.
type Loop struct {
	// Placeholder triggers expansion when present in the template.
	// Empty means variant.DefaultPlaceholder.
	Placeholder string
	Generator   variant.Generator
	Pipeline    RunFunc
}

// Run executes the pipeline once for a template without placeholder, and
// otherwise once per generated variant until the generator is exhausted.
// Exhaustion is checked before each Advance. It returns the number of
// pipeline runs performed.
func (l *Loop) Run(ctx context.Context, template string) (int, error) {
	if l.Pipeline == nil {
		return 0, errors.New("driver: nil pipeline func")
	}
	placeholder := l.Placeholder
	if placeholder == "" {
		placeholder = variant.DefaultPlaceholder
	}
	if !variant.NeedsExpansion(template, placeholder) {
		return 1, l.Pipeline(ctx, template)
	}
	if l.Generator == nil {
		return 0, errors.New("driver: template needs expansion but no generator is configured")
	}

	runs := 0
	for !l.Generator.Exhausted() {
		if err := ctx.Err(); err != nil {
			return runs, err
		}
		query, err := l.Generator.Advance(template)
		if err != nil {
			return runs, fmt.Errorf("advance variant %d: %w", runs+1, err)
		}
		runs++
		if err := l.Pipeline(ctx, query); err != nil {
			return runs, fmt.Errorf("run %q: %w", query, err)
		}
	}
	return runs, nil
}
