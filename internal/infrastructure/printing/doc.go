// Package printing renders the transcription report to PDF.
//
// The report is an html/template document printed by headless Chrome through
// the DevTools protocol:
//
//	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//
//	pdf, err := printing.NewReportPrinter(renderer).Print(ctx, report)
package printing
