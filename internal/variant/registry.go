package variant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultModule is the strategy used when none is named.
const DefaultModule = "dashsub"

// Options carries everything a Factory may need. Strategies ignore fields
// they do not use.
type Options struct {
	Template    string
	Placeholder string
	Alphabet    string

	Chat  ChatClient
	Model string
	// MaxVariants caps model-proposed symbols. Zero means 26.
	MaxVariants int
}

// Factory builds a fresh Generator for one driver run.
type Factory func(ctx context.Context, opts Options) (Generator, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
	moduleRe   = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

func init() {
	mustRegister(DefaultModule, func(_ context.Context, o Options) (Generator, error) {
		alphabet := o.Alphabet
		if alphabet == "" {
			alphabet = Latin
		}
		return NewSubstitution(placeholderOr(o.Placeholder), alphabet)
	})
	mustRegister("search", func(context.Context, Options) (Generator, error) {
		return &PassThrough{}, nil
	})
	mustRegister("llm", func(ctx context.Context, o Options) (Generator, error) {
		return NewLLM(ctx, o.Template, LLMOptions{Client: o.Chat, Model: o.Model, Placeholder: placeholderOr(o.Placeholder), MaxSymbols: o.MaxVariants})
	})
}

// Register adds a strategy under name. Names are lowercase identifiers and
// must be unique.
func Register(name string, f Factory) error {
	if !moduleRe.MatchString(name) {
		return fmt.Errorf("invalid module name %q", name)
	}
	if f == nil {
		return fmt.Errorf("module %q: nil factory", name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		return fmt.Errorf("module %q already registered", name)
	}
	registry[name] = f
	return nil
}

func mustRegister(name string, f Factory) {
	if err := Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultModule
	}
	registryMu.RLock()
	f, ok := registry[key]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown module %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists registered strategies in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func placeholderOr(p string) string {
	if p == "" {
		return DefaultPlaceholder
	}
	return p
}
