// Package transcription models the outcome of transcribing a batch of call
// recordings.
package transcription

import (
	"context"
	"strings"
)

// Kind classifies one call's outcome.
type Kind string

const (
	// KindLong transcripts get a report page of their own.
	KindLong Kind = "long"
	// KindShort transcripts are summarized on the closing page.
	KindShort Kind = "short"
	// KindFailed calls could not be transcribed; Status says why.
	KindFailed Kind = "failed"
)

// Status texts shown on the summary page.
const (
	StatusTooShort        = "Áudio muito curto (<30s)"
	StatusDownloadFailure = "Erro no download: "
	StatusDownloadError   = "Exceção download: "
	StatusModelFailure    = "ERRO na Transcrição: "
	StatusShortPrefix     = "CURTA: "
)

// shortPreview is how many characters of a short transcript are kept.
const shortPreview = 120

// Call is one input row.
type Call struct {
	ID        string
	Attendant string
	Link      string
}

// Outcome is the processed result of one call.
type Outcome struct {
	Call       Call
	Kind       Kind
	Status     string
	Transcript string
}

// Failed builds a failed outcome with a status text.
func Failed(c Call, status string) Outcome {
	return Outcome{Call: c, Kind: KindFailed, Status: status}
}

// Classify turns a transcript into a long or short outcome. Transcripts with
// fewer than threshold characters are short and keep a one-line preview.
func Classify(c Call, text string, threshold int) Outcome {
	if len([]rune(text)) >= threshold {
		return Outcome{Call: c, Kind: KindLong, Transcript: text}
	}
	return Outcome{Call: c, Kind: KindShort, Status: StatusShortPrefix + Preview(text), Transcript: text}
}

// Preview flattens newlines and cuts text to a short summary ending in "...".
func Preview(text string) string {
	flat := []rune(strings.TrimSpace(strings.ReplaceAll(text, "\n", " ")))
	if len(flat) > shortPreview {
		flat = flat[:shortPreview]
	}
	return string(flat) + "..."
}

// Report groups outcomes for printing. Long outcomes get one page each; the
// rest are listed on a summary page.
type Report struct {
	Long    []Outcome
	Summary []Outcome
}

// NewReport splits outcomes, keeping their order.
func NewReport(outcomes []Outcome) Report {
	var r Report
	for _, o := range outcomes {
		if o.Kind == KindLong {
			r.Long = append(r.Long, o)
		} else {
			r.Summary = append(r.Summary, o)
		}
	}
	return r
}

// Empty reports whether there is nothing to print.
func (r Report) Empty() bool {
	return len(r.Long) == 0 && len(r.Summary) == 0
}

// Transcriber turns a local recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// ReportPrinter renders a report to PDF.
type ReportPrinter interface {
	Print(ctx context.Context, r Report) ([]byte, error)
}
