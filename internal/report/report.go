// Package report renders pipeline outcomes for people and tools.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperifyio/searchdash/internal/aggregate"
)

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "markdown", "pdf"}

// Run is one pipeline run as handed to a Writer.
type Run struct {
	ID       string
	Query    string
	Outcomes []aggregate.Outcome
}

// Writer consumes runs in order. Close flushes buffered formats.
type Writer interface {
	WriteRun(r Run) error
	Close() error
}

// New returns a Writer for format. Results go to out, failure causes to
// errOut. When path is set, results are written to that file instead of
// out; pdf requires a path.
func New(format string, out, errOut io.Writer, path string) (Writer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "text"
	}
	if format == "pdf" {
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("pdf output requires an output path")
		}
		return &pdfWriter{path: path}, nil
	}

	if !ValidFormat(format) {
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}

	var closer io.Closer
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create output: %w", err)
		}
		out, closer = f, f
	}
	switch format {
	case "text":
		return &textWriter{out: out, errOut: errOut, closer: closer}, nil
	case "json":
		return newJSONWriter(out, closer), nil
	default:
		return &markdownWriter{out: out, closer: closer}, nil
	}
}

// ValidFormat reports whether New accepts format.
func ValidFormat(format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == "md" {
		return true
	}
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

type textWriter struct {
	out    io.Writer
	errOut io.Writer
	closer io.Closer
}

func (w *textWriter) WriteRun(r Run) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nSearching for: %s\n", r.Query)
	for _, o := range r.Outcomes {
		if o.Failed() {
			fmt.Fprintf(w.errOut, "[%s] search failed for %q: %v\n", o.Provider, o.Query, o.Err)
			continue
		}
		if len(o.Results) == 0 {
			fmt.Fprintf(&b, "\n[%s] No results found.\n", o.Provider)
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Found %d results:\n", o.Provider, len(o.Results))
		b.WriteString(strings.Repeat("=", 80) + "\n")
		for i, res := range o.Results {
			fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, res.Source, res.Title)
			fmt.Fprintf(&b, "   URL: %s\n", res.URL)
			if res.Snippet != "" {
				fmt.Fprintf(&b, "   %s\n", res.Snippet)
			}
		}
	}
	_, err := io.WriteString(w.out, b.String())
	return err
}

func (w *textWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
