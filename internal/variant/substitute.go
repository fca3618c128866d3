package variant

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Latin is the default substitution alphabet.
const Latin = "abcdefghijklmnopqrstuvwxyz"

// Substitution replaces every placeholder occurrence with one symbol per
// call, walking the alphabet in order. It is exhausted after the last symbol.
type Substitution struct {
	placeholder string
	symbols     []string
	index       int
	done        bool
}

// NewSubstitution returns a Substitution over the runes of alphabet.
func NewSubstitution(placeholder, alphabet string) (*Substitution, error) {
	symbols := make([]string, 0, utf8.RuneCountInString(alphabet))
	for _, r := range alphabet {
		symbols = append(symbols, string(r))
	}
	return NewSymbolSubstitution(placeholder, symbols)
}

// NewSymbolSubstitution is like NewSubstitution but accepts multi-character
// symbols.
func NewSymbolSubstitution(placeholder string, symbols []string) (*Substitution, error) {
	if placeholder == "" {
		return nil, errors.New("substitution: empty placeholder")
	}
	if len(symbols) == 0 {
		return nil, errors.New("substitution: empty alphabet")
	}
	return &Substitution{placeholder: placeholder, symbols: append([]string(nil), symbols...)}, nil
}

// NewDashSub returns the default strategy: "-" replaced by a through z.
func NewDashSub() *Substitution {
	s, _ := NewSubstitution(DefaultPlaceholder, Latin)
	return s
}

func (s *Substitution) Advance(template string) (string, error) {
	if s.done {
		return "", ErrExhausted
	}
	out := strings.ReplaceAll(template, s.placeholder, s.symbols[s.index])
	s.index++
	if s.index == len(s.symbols) {
		s.done = true
	}
	return out, nil
}

func (s *Substitution) Exhausted() bool { return s.done }

// Current returns the symbol the next Advance will use, or "" once exhausted.
func (s *Substitution) Current() string {
	if s.done {
		return ""
	}
	return s.symbols[s.index]
}

// Remaining returns how many variants are left.
func (s *Substitution) Remaining() int { return len(s.symbols) - s.index }

// Placeholder returns the substituted marker.
func (s *Substitution) Placeholder() string { return s.placeholder }
