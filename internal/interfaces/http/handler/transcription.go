package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dibaisales/central/internal/application/conversion"
	apptranscription "github.com/dibaisales/central/internal/application/transcription"
)

// Transcriber turns a spreadsheet of call recordings into a PDF report.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, content []byte) (*apptranscription.Report, error)
}

// TranscriptionHandler handles the call transcription endpoint
type TranscriptionHandler struct {
	BaseHandler
	svc Transcriber
}

// NewTranscriptionHandler creates a new TranscriptionHandler
func NewTranscriptionHandler(svc Transcriber) *TranscriptionHandler {
	return &TranscriptionHandler{svc: svc}
}

// Transcribe handles POST /transcrever_audios
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	up, ok := h.Upload(c)
	if !ok {
		return
	}
	report, err := h.svc.Transcribe(c.Request.Context(), up.Filename, up.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Download(c, &conversion.Archive{
		Name:        report.Name,
		ContentType: report.ContentType,
		Body:        report.Body,
	})
}
