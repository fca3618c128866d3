// Package variant generates query variants from a template.
//
// A Generator is a small state machine: Advance returns the next variant of
// the unchanged template, and Exhausted turns true once the last variant has
// been produced. Exhaustion never reverts. Calling Advance on an exhausted
// generator is a caller bug and returns ErrExhausted.
package variant

import (
	"errors"
	"strings"
)

// DefaultPlaceholder marks the positions that are substituted.
const DefaultPlaceholder = "-"

// ErrExhausted is returned by Advance once every variant has been produced.
var ErrExhausted = errors.New("variant generator exhausted")

// Generator produces a deterministic sequence of variants of a template.
type Generator interface {
	Advance(template string) (string, error)
	Exhausted() bool
}

// NeedsExpansion reports whether template contains placeholder.
func NeedsExpansion(template, placeholder string) bool {
	if placeholder == "" {
		return false
	}
	return strings.Contains(template, placeholder)
}
