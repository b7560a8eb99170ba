package printing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibaisales/central/internal/domain/transcription"
)

type fakeRenderer struct {
	got *RenderRequest
	err error
}

func (f *fakeRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.4"), PageCount: 1}, nil
}

func (f *fakeRenderer) Close() error { return nil }

func sampleReport() transcription.Report {
	return transcription.NewReport([]transcription.Outcome{
		{
			Call:       transcription.Call{ID: "10", Attendant: "Ana", Link: "https://calls/10.mp3"},
			Kind:       transcription.KindLong,
			Transcript: "Ana: Bom dia\n\nCliente: <b>Olá</b>",
		},
		transcription.Failed(transcription.Call{ID: "11", Attendant: "Bia"}, transcription.StatusTooShort),
	})
}

func TestRenderHTML(t *testing.T) {
	doc, err := RenderHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, doc, "<p>ID: 10</p>")
	assert.Contains(t, doc, "<p>Atendente: Ana</p>")
	assert.Contains(t, doc, "<p>Link: https://calls/10.mp3</p>")
	assert.Contains(t, doc, "<p>Ana: Bom dia</p>")
	assert.Contains(t, doc, "Cliente: &lt;b&gt;Olá&lt;/b&gt;")
	assert.Contains(t, doc, "Resumo de transcrições curtas / falhas:")
	assert.Contains(t, doc, "ID: 11 | Atendente: Bia | Status: Áudio muito curto (&lt;30s)")
	assert.Equal(t, 2, strings.Count(doc, `<section class="call`))
}

func TestRenderHTML_NoSummary(t *testing.T) {
	doc, err := RenderHTML(transcription.Report{})
	require.NoError(t, err)
	assert.NotContains(t, doc, "Resumo")
}

func TestReportPrinter_Print(t *testing.T) {
	r := &fakeRenderer{}
	pdf, err := NewReportPrinter(r).Print(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	require.NotNil(t, r.got)
	assert.Equal(t, ReportTitle, r.got.Title)
	assert.Equal(t, DefaultMargins(), r.got.Margins)

	r.err = NewRenderError(ErrCodeRenderFailed, "boom", nil)
	_, err = NewReportPrinter(r).Print(context.Background(), sampleReport())
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeRenderFailed, renderErr.Code)
}

func TestBuildPrintParams(t *testing.T) {
	p := buildPrintParams(&RenderRequest{Margins: Margins{Top: 15, Right: 15, Bottom: 5, Left: 15}, FooterHTML: "<span></span>"})
	assert.InDelta(t, mmToInches(210), p.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), p.paperHeight, 0.01)
	assert.True(t, p.displayHeaderFooter)
	assert.InDelta(t, mmToInches(10), p.marginBottom, 0.001)

	p = buildPrintParams(&RenderRequest{Margins: DefaultMargins()})
	assert.False(t, p.displayHeaderFooter)
}

func TestBuildCompleteHTML(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))

	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>x</p>", Title: "A & B"})
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("nothing")))
	assert.Equal(t, 2, estimatePageCount([]byte("/Type /Pages /Type /Page /Type /Page")))
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), &RenderRequest{HTML: "  "})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}
