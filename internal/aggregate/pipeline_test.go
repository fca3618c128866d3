package aggregate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/searchdash/internal/fetch"
	"github.com/hyperifyio/searchdash/internal/search"
)

func names(outs []Outcome) []string {
	var n []string
	for _, o := range outs {
		n = append(n, o.Provider)
	}
	return n
}

func TestNew_Validation(t *testing.T) {
	d := &fakeDoer{}
	p := &fakeProvider{name: "P"}

	_, err := New(d, nil, DefaultOptions())
	require.Error(t, err)

	_, err = New(d, []*Engine{engine(p)}, Options{MaxResults: -1})
	require.Error(t, err)

	_, err = New(d, []*Engine{engine(p), engine(&fakeProvider{name: "P"})}, DefaultOptions())
	require.Error(t, err)

	pl, err := New(d, []*Engine{engine(p)}, Options{MaxResults: 3})
	require.NoError(t, err)
	assert.Equal(t, DefaultDeadline, pl.Options().Deadline)
}

func TestRun_OrderFollowsConfiguration(t *testing.T) {
	// The first provider finishes last.
	d := &fakeDoer{delays: map[string]time.Duration{"DuckDuckGo": 60 * time.Millisecond}}
	pl, err := New(d, []*Engine{
		engine(&fakeProvider{name: "DuckDuckGo", count: 2}),
		engine(&fakeProvider{name: "StartPage", count: 2}),
		engine(&fakeProvider{name: "SearxNG", count: 2}),
	}, DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		outs := pl.Run(context.Background(), "chicken")
		assert.Equal(t, []string{"DuckDuckGo", "StartPage", "SearxNG"}, names(outs))
		for _, o := range outs {
			require.NoError(t, o.Err)
			assert.Equal(t, "chicken", o.Query)
			assert.Len(t, o.Results, 2)
		}
	}
}

func TestRun_CapsEveryProvider(t *testing.T) {
	pl, err := New(&fakeDoer{}, []*Engine{
		engine(&fakeProvider{name: "A", count: 25}),
		engine(&fakeProvider{name: "B", count: 25}),
	}, DefaultOptions())
	require.NoError(t, err)

	for _, o := range pl.Run(context.Background(), "chicken") {
		assert.Len(t, o.Results, DefaultMaxResults, o.Provider)
	}
}

func TestRun_PartialFailure(t *testing.T) {
	d := &fakeDoer{errs: map[string]error{"Broken": errors.New("network down")}}
	pl, err := New(d, []*Engine{
		engine(&fakeProvider{name: "Broken", count: 5}),
		engine(&fakeProvider{name: "Good", count: 5}),
	}, Options{MaxResults: 20})
	require.NoError(t, err)

	outs := pl.Run(context.Background(), "chicken")
	require.Len(t, outs, 2)
	assert.True(t, outs[0].Failed())
	assert.Contains(t, outs[0].Err.Error(), "network down")
	assert.Empty(t, outs[0].Results)

	require.NoError(t, outs[1].Err)
	assert.Len(t, outs[1].Results, 5)
}

func TestRun_IsolatesParseErrorsAndPanics(t *testing.T) {
	pl, err := New(&fakeDoer{}, []*Engine{
		engine(&fakeProvider{name: "Garbled", parseErr: errors.New("bad markup")}),
		engine(&fakeProvider{name: "Panicky", panics: true}),
		engine(&fakeProvider{name: "Good", count: 3}),
	}, DefaultOptions())
	require.NoError(t, err)

	outs := pl.Run(context.Background(), "q")
	require.ErrorIs(t, outs[0].Err, ErrParse)
	require.Error(t, outs[1].Err)
	assert.Contains(t, outs[1].Err.Error(), "panic")
	require.NoError(t, outs[2].Err)
	assert.Len(t, outs[2].Results, 3)
}

func TestRun_OverallDeadlineKeepsFinishedProviders(t *testing.T) {
	d := &fakeDoer{delays: map[string]time.Duration{"Slow": 5 * time.Second}}
	pl, err := New(d, []*Engine{
		NewEngine(&fakeProvider{name: "Slow", count: 3}, -1, 10*time.Second),
		engine(&fakeProvider{name: "Fast", count: 3}),
	}, Options{MaxResults: 20, Deadline: 80 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	outs := pl.Run(context.Background(), "q")
	assert.Less(t, time.Since(start), time.Second)

	require.ErrorIs(t, outs[0].Err, ErrTimeout)
	require.NoError(t, outs[1].Err)
	assert.Len(t, outs[1].Results, 3)
}

func TestRun_SequentialVisitsInOrder(t *testing.T) {
	d := &fakeDoer{}
	pl, err := New(d, []*Engine{
		engine(&fakeProvider{name: "DuckDuckGo", count: 1}),
		engine(&fakeProvider{name: "StartPage", count: 1}),
	}, Options{MaxResults: 20, Sequential: true})
	require.NoError(t, err)

	outs := pl.Run(context.Background(), "q")
	assert.Equal(t, []string{"DuckDuckGo", "StartPage"}, names(outs))
	ddg, sp := d.callsFor("DuckDuckGo"), d.callsFor("StartPage")
	require.Len(t, ddg, 1)
	require.Len(t, sp, 1)
	assert.False(t, sp[0].at.Before(ddg[0].at))
}

func TestRun_SequentialDeadlineMarksRemaining(t *testing.T) {
	d := &fakeDoer{delays: map[string]time.Duration{"Slow": 5 * time.Second}}
	pl, err := New(d, []*Engine{
		NewEngine(&fakeProvider{name: "Slow", count: 1}, -1, 10*time.Second),
		engine(&fakeProvider{name: "Never", count: 1}),
	}, Options{MaxResults: 20, Deadline: 50 * time.Millisecond, Sequential: true})
	require.NoError(t, err)

	outs := pl.Run(context.Background(), "q")
	require.ErrorIs(t, outs[0].Err, ErrTimeout)
	require.ErrorIs(t, outs[1].Err, ErrTimeout)
	assert.Empty(t, d.callsFor("Never"))
}

// End to end over HTTP with the real providers' parsers.
func TestRun_HTTPProviders(t *testing.T) {
	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<div class="result"><a class="result__a" href="https://example.com/d">D</a></div>`))
	}))
	defer ddg.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	pl, err := New(&fetch.Client{}, []*Engine{
		engine(&search.DuckDuckGo{BaseURL: ddg.URL}),
		engine(&search.StartPage{BaseURL: down.URL}),
	}, DefaultOptions())
	require.NoError(t, err)

	outs := pl.Run(context.Background(), "python programming")
	require.NoError(t, outs[0].Err)
	require.Len(t, outs[0].Results, 1)
	assert.Equal(t, search.Result{Title: "D", URL: "https://example.com/d", Source: "DuckDuckGo"}, outs[0].Results[0])

	var se *fetch.StatusError
	require.ErrorAs(t, outs[1].Err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}
