// Package gemini transcribes call recordings with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/dibaisales/central/internal/infrastructure/config"
	"github.com/dibaisales/central/internal/infrastructure/telemetry"
)

// Prompt instructs the model how to render the dialogue.
const Prompt = "Transcreva o áudio completo em Português do Brasil.\n" +
	"Identifique os locutores pelo nome se possível.\n" +
	"Formate como diálogo: Nome: fala do participante.\n" +
	"Evite linhas longas e remova espaços extras.\n"

// AudioMIMEType is the MIME type sent with every recording.
const AudioMIMEType = "audio/mpeg"

// inlineLimit is the largest recording sent inline; bigger files go through the Files API.
const inlineLimit = 18 << 20

// ErrEmptyTranscript is returned when the model answers without text.
var ErrEmptyTranscript = errors.New("nenhum texto retornado pelo modelo")

// Transcriber sends recordings to a Gemini model.
type Transcriber struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithMetrics records model latency.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(t *Transcriber) {
		t.metrics = m
	}
}

// WithLogger sets the transcriber logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transcriber) {
		t.logger = l
	}
}

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) func(*genai.ClientConfig) {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

// NewTranscriber creates a transcriber for cfg.Model.
func NewTranscriber(ctx context.Context, cfg config.GeminiConfig, clientOpts []func(*genai.ClientConfig), opts ...Option) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, o := range clientOpts {
		o(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	t := &Transcriber{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Model returns the configured model name.
func (t *Transcriber) Model() string {
	return t.model
}

// Transcribe returns the dialogue transcript of the MP3 file at path.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (text string, err error) {
	ctx, span := telemetry.StartClientSpan(ctx, "gemini.transcribe", attribute.String("model", t.model))
	defer span.End()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		t.metrics.RecordExternalCall(ctx, "gemini", time.Since(start), err)
		telemetry.RecordError(span, err)
	}()

	audio, cleanup, err := t.audioPart(ctx, path)
	if err != nil {
		return "", err
	}
	defer cleanup()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(Prompt), audio}, genai.RoleUser),
	}
	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text = strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyTranscript
	}
	span.SetAttributes(attribute.Int("transcript.length", len(text)))
	return text, nil
}

// audioPart sends small recordings inline and uploads larger ones, returning
// a cleanup that deletes the remote copy.
func (t *Transcriber) audioPart(ctx context.Context, path string) (*genai.Part, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	if info.Size() <= inlineLimit {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return genai.NewPartFromBytes(data, AudioMIMEType), func() {}, nil
	}

	file, err := t.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: AudioMIMEType})
	if err != nil {
		return nil, nil, fmt.Errorf("upload recording: %w", err)
	}
	cleanup := func() {
		if _, err := t.client.Files.Delete(context.WithoutCancel(ctx), file.Name, nil); err != nil {
			t.logger.Warn("failed to delete uploaded recording", zap.String("file", file.Name), zap.Error(err))
		}
	}
	return genai.NewPartFromURI(file.URI, file.MIMEType), cleanup, nil
}
