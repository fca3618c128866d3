package aggregate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hyperifyio/searchdash/internal/search"
)

// fakeProvider answers with count canned results; the doer routes on the
// provider name carried in the request host.
type fakeProvider struct {
	name     string
	count    int
	parseErr error
	panics   bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) BuildRequest(query string) (search.RequestSpec, error) {
	return search.RequestSpec{Method: http.MethodGet, URL: "fake://" + f.name + "/?q=" + url.QueryEscape(query)}, nil
}

func (f *fakeProvider) Parse(body []byte) ([]search.Result, error) {
	if f.panics {
		panic("markup changed")
	}
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	out := make([]search.Result, 0, f.count)
	for i := 1; i <= f.count; i++ {
		out = append(out, search.Result{
			Title:  fmt.Sprintf("Result %d for %s", i, body),
			URL:    fmt.Sprintf("https://example.com/%s/%d", f.name, i),
			Source: f.name,
		})
	}
	return out, nil
}

type call struct {
	provider string
	query    string
	at       time.Time
}

type fakeDoer struct {
	mu     sync.Mutex
	delays map[string]time.Duration
	errs   map[string]error
	calls  []call
}

func (d *fakeDoer) Do(ctx context.Context, spec search.RequestSpec) ([]byte, error) {
	u, err := url.Parse(spec.URL)
	if err != nil {
		return nil, err
	}
	name, q := u.Host, u.Query().Get("q")
	d.mu.Lock()
	d.calls = append(d.calls, call{provider: name, query: q, at: time.Now()})
	delay, failure := d.delays[name], d.errs[name]
	d.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	return []byte(q), nil
}

func (d *fakeDoer) callsFor(provider string) []call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []call
	for _, c := range d.calls {
		if c.provider == provider {
			out = append(out, c)
		}
	}
	return out
}

// engine returns an engine without pacing so tests do not wait.
func engine(p search.Provider) *Engine {
	return NewEngine(p, -1, time.Second)
}
