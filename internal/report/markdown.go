package report

import (
	"fmt"
	"io"
	"strings"
)

type markdownWriter struct {
	out    io.Writer
	closer io.Closer
}

func (w *markdownWriter) WriteRun(r Run) error {
	_, err := io.WriteString(w.out, renderMarkdown(r))
	return err
}

func (w *markdownWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// renderMarkdown lays out one run as a level-2 section with one level-3
// subsection per provider. Provider text is escaped so it renders literally.
func renderMarkdown(r Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(r.Query))
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "### %s\n\n", o.Provider)
		switch {
		case o.Failed():
			fmt.Fprintf(&b, "Search failed: %v\n\n", o.Err)
		case len(o.Results) == 0:
			b.WriteString("No results found.\n\n")
		default:
			for i, res := range o.Results {
				fmt.Fprintf(&b, "%d. [%s](%s)", i+1, escapeLinkText(res.Title), res.URL)
				if res.Snippet != "" {
					fmt.Fprintf(&b, " - %s", escapeMarkdown(res.Snippet))
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

// escapeMarkdown backslash-escapes inline markdown syntax.
func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func escapeLinkText(s string) string {
	if s == "" {
		return "(untitled)"
	}
	return escapeMarkdown(s)
}
