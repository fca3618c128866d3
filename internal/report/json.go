package report

import (
	"encoding/json"
	"io"

	"github.com/hyperifyio/searchdash/internal/search"
)

type jsonProvider struct {
	Provider  string          `json:"provider"`
	Results   []search.Result `json:"results"`
	Error     string          `json:"error,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

type jsonRun struct {
	RunID     string         `json:"run_id"`
	Query     string         `json:"query"`
	Providers []jsonProvider `json:"providers"`
}

// jsonWriter emits one JSON object per run (JSON lines).
type jsonWriter struct {
	enc    *json.Encoder
	closer io.Closer
}

func newJSONWriter(out io.Writer, closer io.Closer) *jsonWriter {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return &jsonWriter{enc: enc, closer: closer}
}

func (w *jsonWriter) WriteRun(r Run) error {
	jr := jsonRun{RunID: r.ID, Query: r.Query, Providers: make([]jsonProvider, 0, len(r.Outcomes))}
	for _, o := range r.Outcomes {
		p := jsonProvider{Provider: o.Provider, Results: o.Results, ElapsedMS: o.Elapsed.Milliseconds()}
		if p.Results == nil {
			p.Results = []search.Result{}
		}
		if o.Err != nil {
			p.Error = o.Err.Error()
		}
		jr.Providers = append(jr.Providers, p)
	}
	return w.enc.Encode(jr)
}

func (w *jsonWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
