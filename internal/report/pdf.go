package report

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// pdfWriter collects runs and lays them out on Close.
type pdfWriter struct {
	path string
	runs []Run
}

func (w *pdfWriter) WriteRun(r Run) error {
	w.runs = append(w.runs, r)
	return nil
}

func (w *pdfWriter) Close() error {
	return writeSimplePDF(w.runs, w.path)
}

// writeSimplePDF renders runs with the same structure as the markdown
// output. Result titles become clickable links to the result URL.
func writeSimplePDF(runs []Run, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // core fonts are cp1252
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	heading := func(text string, size float64) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	heading("searchdash results", 16)
	for _, r := range runs {
		pdf.Ln(3)
		heading(r.Query, 14)
		for _, o := range r.Outcomes {
			heading(o.Provider, 12)
			switch {
			case o.Failed():
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("Search failed: %v", o.Err)), "", "L", false)
			case len(o.Results) == 0:
				pdf.MultiCell(0, 5, tr("No results found."), "", "L", false)
			default:
				for i, res := range o.Results {
					title := res.Title
					if title == "" {
						title = "(untitled)"
					}
					pdf.Write(5, tr(fmt.Sprintf("%d. ", i+1)))
					pdf.WriteLinkString(5, tr(title), res.URL)
					if res.Snippet != "" {
						pdf.Write(5, tr(" - "+res.Snippet))
					}
					pdf.Ln(6)
				}
			}
			pdf.Ln(3)
		}
	}
	return pdf.OutputFileAndClose(outPath)
}
