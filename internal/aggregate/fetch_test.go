package aggregate

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_CapIsStrictPrefix(t *testing.T) {
	p := &fakeProvider{name: "Big", count: 25}
	for _, k := range []int{0, 1, 5, 20, 25, 30} {
		got, err := Fetch(context.Background(), &fakeDoer{}, engine(p), "chicken", k)
		require.NoError(t, err)
		require.Len(t, got, min(k, 25), "k=%d", k)
		for i, r := range got {
			assert.Equal(t, "https://example.com/Big/"+strconv.Itoa(i+1), r.URL)
			assert.Equal(t, "Big", r.Source)
		}
	}
}

func TestFetch_ZeroCapSkipsRequest(t *testing.T) {
	d := &fakeDoer{}
	got, err := Fetch(context.Background(), d, engine(&fakeProvider{name: "P", count: 3}), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, d.callsFor("P"))
}

func TestFetch_NegativeCap(t *testing.T) {
	_, err := Fetch(context.Background(), &fakeDoer{}, engine(&fakeProvider{name: "P"}), "q", -1)
	require.Error(t, err)
}

func TestFetch_PassesQueryUnchanged(t *testing.T) {
	d := &fakeDoer{}
	_, err := Fetch(context.Background(), d, engine(&fakeProvider{name: "P", count: 1}), "web-scraping tips", 20)
	require.NoError(t, err)
	calls := d.callsFor("P")
	require.Len(t, calls, 1)
	assert.Equal(t, "web-scraping tips", calls[0].query)
}

func TestFetch_TransportFailure(t *testing.T) {
	d := &fakeDoer{errs: map[string]error{"P": errors.New("connection refused")}}
	_, err := Fetch(context.Background(), d, engine(&fakeProvider{name: "P", count: 3}), "q", 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestFetch_ParseFailure(t *testing.T) {
	p := &fakeProvider{name: "P", parseErr: errors.New("no result container")}
	_, err := Fetch(context.Background(), &fakeDoer{}, engine(p), "q", 20)
	require.ErrorIs(t, err, ErrParse)
}

func TestFetch_ConnectTimeout(t *testing.T) {
	d := &fakeDoer{delays: map[string]time.Duration{"Slow": time.Second}}
	e := NewEngine(&fakeProvider{name: "Slow", count: 1}, -1, 30*time.Millisecond)
	start := time.Now()
	_, err := Fetch(context.Background(), d, e, "q", 20)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestFetch_RateLimitSpacesRequests(t *testing.T) {
	d := &fakeDoer{}
	e := NewEngine(&fakeProvider{name: "P", count: 1}, 80*time.Millisecond, time.Second)
	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), d, e, "q", 20)
		require.NoError(t, err)
	}
	calls := d.callsFor("P")
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		gap := calls[i].at.Sub(calls[i-1].at)
		assert.GreaterOrEqual(t, gap, 70*time.Millisecond, "gap %d", i)
	}
}

func TestFetch_TimestampAdvancesOnFailure(t *testing.T) {
	d := &fakeDoer{errs: map[string]error{"P": errors.New("boom")}}
	e := NewEngine(&fakeProvider{name: "P"}, time.Millisecond, time.Second)
	require.True(t, e.LastRequest().IsZero())
	_, err := Fetch(context.Background(), d, e, "q", 20)
	require.Error(t, err)
	assert.False(t, e.LastRequest().IsZero())
}

func TestFetch_RateLimitWaitHonoursContext(t *testing.T) {
	e := NewEngine(&fakeProvider{name: "P", count: 1}, time.Hour, time.Second)
	e.reserve(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Fetch(ctx, &fakeDoer{}, e, "q", 20)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestEngine_ConcurrentReservationsDoNotShareSlots(t *testing.T) {
	e := NewEngine(&fakeProvider{name: "P"}, 10*time.Millisecond, time.Second)
	now := time.Now()
	slots := make(chan time.Time, 50)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- e.reserve(now)
		}()
	}
	wg.Wait()
	close(slots)

	seen := map[time.Time]bool{}
	for s := range slots {
		require.False(t, seen[s], "slot %v reserved twice", s)
		seen[s] = true
	}
	assert.Equal(t, now.Add(49*10*time.Millisecond), e.LastRequest())
}
