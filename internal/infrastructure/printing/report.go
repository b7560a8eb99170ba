package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/dibaisales/central/internal/domain/transcription"
)

//go:embed templates/*.html
var templateFS embed.FS

// ReportTitle is the document title of the transcription report.
const ReportTitle = "Relatório de transcrições"

var reportTemplate = template.Must(
	template.New("transcription_report.html").
		Funcs(template.FuncMap{"paragraphs": paragraphs}).
		ParseFS(templateFS, "templates/transcription_report.html"),
)

type reportView struct {
	Title   string
	Long    []transcription.Outcome
	Summary []transcription.Outcome
}

// ReportPrinter prints transcription reports through a PDFRenderer.
type ReportPrinter struct {
	renderer PDFRenderer
	margins  Margins
}

// NewReportPrinter creates a printer using A4 pages with default margins.
func NewReportPrinter(renderer PDFRenderer) *ReportPrinter {
	return &ReportPrinter{renderer: renderer, margins: DefaultMargins()}
}

// RenderHTML executes the report template.
func RenderHTML(r transcription.Report) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, reportView{
		Title:   ReportTitle,
		Long:    r.Long,
		Summary: r.Summary,
	})
	if err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to execute report template", err)
	}
	return buf.String(), nil
}

// Print renders r to PDF: one page per long transcript, then the summary page.
func (p *ReportPrinter) Print(ctx context.Context, r transcription.Report) ([]byte, error) {
	doc, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}
	res, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       doc,
		Title:      ReportTitle,
		Margins:    p.margins,
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span>/<span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, fmt.Errorf("print transcription report: %w", err)
	}
	return res.PDFData, nil
}

// paragraphs splits text on line breaks, dropping blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

var _ transcription.ReportPrinter = (*ReportPrinter)(nil)
