package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/searchdash/internal/aggregate"
	"github.com/hyperifyio/searchdash/internal/search"
)

func results(provider string, n int) []search.Result {
	out := make([]search.Result, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, search.Result{
			Title:   fmt.Sprintf("Result %d for chicken", i),
			URL:     fmt.Sprintf("https://example.com/%s/%d", strings.ToLower(provider), i),
			Snippet: fmt.Sprintf("Snippet %d", i),
			Source:  provider,
		})
	}
	return out
}

func sampleRun() Run {
	return Run{ID: "run-1", Query: "chicken", Outcomes: []aggregate.Outcome{
		{Provider: "DuckDuckGo", Query: "chicken", Results: results("DuckDuckGo", 3), Elapsed: 120 * time.Millisecond},
		{Provider: "StartPage", Query: "chicken", Err: errors.New("timed out: no response within 10s")},
		{Provider: "SearxNG", Query: "chicken", Results: []search.Result{}},
	}}
}

func TestText_ResultsToOutFailuresToErr(t *testing.T) {
	var out, errOut bytes.Buffer
	w, err := New("text", &out, &errOut, "")
	require.NoError(t, err)
	require.NoError(t, w.WriteRun(sampleRun()))
	require.NoError(t, w.Close())

	s := out.String()
	assert.Contains(t, s, "Searching for: chicken")
	assert.Contains(t, s, "[DuckDuckGo] Found 3 results")
	assert.Contains(t, s, "Result 1 for chicken")
	assert.Contains(t, s, "https://example.com/duckduckgo/3")
	assert.Contains(t, s, "[SearxNG] No results found.")
	assert.NotContains(t, s, "StartPage")

	assert.Contains(t, errOut.String(), "[StartPage] search failed")
	assert.Contains(t, errOut.String(), "no response within 10s")
}

func TestText_ProviderOrderPreserved(t *testing.T) {
	var out bytes.Buffer
	w, err := New("", &out, &bytes.Buffer{}, "")
	require.NoError(t, err)
	run := Run{Query: "q", Outcomes: []aggregate.Outcome{
		{Provider: "DuckDuckGo", Results: results("DuckDuckGo", 2)},
		{Provider: "StartPage", Results: results("StartPage", 2)},
	}}
	require.NoError(t, w.WriteRun(run))
	s := out.String()
	assert.Less(t, strings.Index(s, "[DuckDuckGo]"), strings.Index(s, "[StartPage]"))
}

func TestJSON_OneObjectPerRun(t *testing.T) {
	var out bytes.Buffer
	w, err := New("json", &out, &bytes.Buffer{}, "")
	require.NoError(t, err)
	require.NoError(t, w.WriteRun(sampleRun()))
	require.NoError(t, w.WriteRun(Run{ID: "run-2", Query: "again"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var got jsonRun
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Providers, 3)
	assert.Len(t, got.Providers[0].Results, 3)
	assert.Equal(t, int64(120), got.Providers[0].ElapsedMS)
	assert.Contains(t, got.Providers[1].Error, "timed out")
	assert.NotNil(t, got.Providers[1].Results)
}

func TestMarkdown_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	w, err := New("markdown", &bytes.Buffer{}, &bytes.Buffer{}, path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRun(sampleRun()))
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(b)
	assert.Contains(t, md, "## chicken")
	assert.Contains(t, md, "### DuckDuckGo")
	assert.Contains(t, md, "1. [Result 1 for chicken](https://example.com/duckduckgo/1) - Snippet 1")
	assert.Contains(t, md, "Search failed: timed out")
	assert.Contains(t, md, "No results found.")
}

func TestPDF_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	w, err := New("pdf", &bytes.Buffer{}, &bytes.Buffer{}, path)
	require.NoError(t, err)
	run := sampleRun()
	run.Outcomes[0].Results[0].Title = "Café [draft]"
	require.NoError(t, w.WriteRun(run))
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestPDF_LinksKeepParentheses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	w, err := New("pdf", &bytes.Buffer{}, &bytes.Buffer{}, path)
	require.NoError(t, err)
	run := Run{Query: "go", Outcomes: []aggregate.Outcome{{Provider: "DuckDuckGo", Results: []search.Result{{
		Title:  "Go (programming language)",
		URL:    "https://en.wikipedia.org/wiki/Go_(programming_language)",
		Source: "DuckDuckGo",
	}}}}}
	require.NoError(t, w.WriteRun(run))
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	// Link annotations are stored uncompressed with PDF string escaping.
	assert.Contains(t, string(b), `/URI (https://en.wikipedia.org/wiki/Go_\(programming_language\))`)
}

func TestMarkdown_EscapesProviderText(t *testing.T) {
	run := Run{Query: "a_b", Outcomes: []aggregate.Outcome{{Provider: "StartPage", Results: []search.Result{{
		Title:   "*bold* [x] `code`",
		URL:     "https://en.wikipedia.org/wiki/Go_(programming_language)",
		Snippet: "snake_case and <b>tags</b>",
	}}}}}
	md := renderMarkdown(run)
	assert.Contains(t, md, `## a\_b`)
	assert.Contains(t, md, "1. [\\*bold\\* \\[x\\] \\`code\\`](https://en.wikipedia.org/wiki/Go_(programming_language))")
	assert.Contains(t, md, `- snake\_case and \<b\>tags\</b\>`)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New("pdf", &bytes.Buffer{}, &bytes.Buffer{}, "")
	require.Error(t, err)
	_, err = New("yaml", &bytes.Buffer{}, &bytes.Buffer{}, "")
	require.Error(t, err)

	assert.True(t, ValidFormat("Markdown"))
	assert.True(t, ValidFormat(""))
	assert.False(t, ValidFormat("yaml"))
}
