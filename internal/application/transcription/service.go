package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/domain/transcription"
	"github.com/dibaisales/central/internal/infrastructure/audio"
	"github.com/dibaisales/central/internal/infrastructure/config"
	"github.com/dibaisales/central/internal/infrastructure/sheetio"
	"github.com/dibaisales/central/internal/infrastructure/telemetry"
	"github.com/dibaisales/central/internal/infrastructure/worker"
)

// Required input columns, after trimming and upper-casing.
const (
	ColumnRecording = "GRAVAÇÃO"
	ColumnID        = "ID"
	ColumnAttendant = "ATENDENTE"
)

// ReportFile is the name of the produced PDF.
const ReportFile = "transcricoes_relatorio.pdf"

// Feature is the metrics label of this use case.
const Feature = "transcription"

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultMinDuration    = 30 * time.Second
	DefaultShortThreshold = 100
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Downloader copies a recording to a local file.
type Downloader interface {
	Supports(link string) bool
	Fetch(ctx context.Context, link, dst string) error
}

// DurationProbe measures a local recording.
type DurationProbe func(path string) (time.Duration, error)

// Report is the produced PDF together with the per-call outcomes it was built from.
type Report struct {
	Name        string
	ContentType string
	Body        []byte
	Outcomes    []transcription.Outcome
}

// Service transcribes a spreadsheet of call recordings into a PDF report.
type Service struct {
	downloader  Downloader
	transcriber transcription.Transcriber
	printer     transcription.ReportPrinter
	pool        *worker.Pool
	probe       DurationProbe
	cfg         config.TranscriptionConfig
	metrics     *telemetry.Metrics
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDurationProbe replaces the MP3 frame-based duration probe.
func WithDurationProbe(p DurationProbe) Option {
	return func(s *Service) {
		s.probe = p
	}
}

// WithMetrics records per-call outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a transcription service. Calls are processed on pool;
// a nil pool uses cfg.Concurrency.
func NewService(
	downloader Downloader,
	transcriber transcription.Transcriber,
	printer transcription.ReportPrinter,
	pool *worker.Pool,
	cfg config.TranscriptionConfig,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if cfg.ShortThreshold <= 0 {
		cfg.ShortThreshold = DefaultShortThreshold
	}
	if pool == nil {
		pool = worker.New(Feature, cfg.Concurrency, worker.WithLogger(logger))
	}
	s := &Service{
		downloader:  downloader,
		transcriber: transcriber,
		printer:     printer,
		pool:        pool,
		probe:       audio.Duration,
		cfg:         cfg,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calls reads the call rows of an uploaded workbook. Headers are trimmed and
// upper-cased; rows without an ID or a recording link are dropped.
func Calls(filename string, content []byte) ([]transcription.Call, error) {
	src, err := sheetio.NewDecoder(sheetio.WithFormats(sheetio.FormatXLSX, sheetio.FormatXLS)).
		Decode(filename, content)
	if err != nil {
		return nil, err
	}
	src.NormalizeHeaders(sheetio.UpperHeader)
	if err := src.Require(ColumnRecording, ColumnID, ColumnAttendant); err != nil {
		return nil, err
	}

	calls := make([]transcription.Call, 0, src.Len())
	for _, rec := range src.Records {
		if rec.IsBlank(ColumnID) || rec.IsBlank(ColumnRecording) {
			continue
		}
		calls = append(calls, transcription.Call{
			ID:        strings.TrimSpace(rec.Get(ColumnID)),
			Attendant: strings.TrimSpace(rec.Get(ColumnAttendant)),
			Link:      strings.TrimSpace(rec.Get(ColumnRecording)),
		})
	}
	return calls, nil
}

// Transcribe processes every call of the workbook and prints the report.
// Per-call failures end up on the summary page; only structural problems
// with the workbook and report rendering failures are returned as errors.
func (s *Service) Transcribe(ctx context.Context, filename string, content []byte) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "transcription.batch", attribute.String("file", filename))
	defer span.End()

	calls, err := Calls(filename, content)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	supported := make([]transcription.Call, 0, len(calls))
	for _, c := range calls {
		if !s.downloader.Supports(c.Link) {
			s.logger.Info("skipping call with unsupported link",
				zap.String("id", c.ID),
				zap.String("link", c.Link))
			continue
		}
		supported = append(supported, c)
	}
	span.SetAttributes(attribute.Int("calls", len(supported)))

	dir, err := s.tempDir()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove temp dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	type job struct {
		index int
		call  transcription.Call
	}
	jobs := make([]job, len(supported))
	for i, c := range supported {
		jobs[i] = job{index: i, call: c}
	}

	start := time.Now()
	results := worker.Run(ctx, s.pool, jobs,
		func(j job) int { return j.index },
		func(ctx context.Context, j job) (transcription.Outcome, error) {
			return s.process(ctx, dir, j.index, j.call), nil
		})
	byIndex := worker.ByKey(results)

	outcomes := make([]transcription.Outcome, len(jobs))
	kinds := make(map[transcription.Kind]int)
	for _, j := range jobs {
		r, ok := byIndex[j.index]
		switch {
		case !ok:
			outcomes[j.index] = transcription.Failed(j.call, transcription.StatusModelFailure+"not processed")
		case r.Err != nil:
			outcomes[j.index] = transcription.Failed(j.call, transcription.StatusModelFailure+r.Err.Error())
		default:
			outcomes[j.index] = r.Value
		}
		kinds[outcomes[j.index].Kind]++
		s.metrics.RecordOutcome(ctx, Feature, string(outcomes[j.index].Kind))
	}

	s.logger.Info("transcription batch processed",
		zap.String("file", filename),
		zap.Int("rows", len(calls)),
		zap.Int("calls", len(supported)),
		zap.Int("long", kinds[transcription.KindLong]),
		zap.Int("short", kinds[transcription.KindShort]),
		zap.Int("failed", kinds[transcription.KindFailed]),
		zap.Duration("elapsed", time.Since(start)))

	pdf, err := s.printer.Print(ctx, transcription.NewReport(outcomes))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to print transcription report: %w", err)
	}

	return &Report{
		Name:        ReportFile,
		ContentType: sheetio.ContentTypePDF,
		Body:        pdf,
		Outcomes:    outcomes,
	}, nil
}

// process downloads, measures and transcribes one call. The local file is
// removed on every path.
func (s *Service) process(ctx context.Context, dir string, index int, c transcription.Call) transcription.Outcome {
	path := filepath.Join(dir, fmt.Sprintf("%d-%s.mp3", index, unsafeFileChars.ReplaceAllString(c.ID, "_")))
	defer os.Remove(path)

	log := s.logger.With(zap.String("id", c.ID), zap.String("attendant", c.Attendant))

	if err := s.downloader.Fetch(ctx, c.Link, path); err != nil {
		log.Warn("recording download failed", zap.Error(err))
		var statusErr *audio.HTTPStatusError
		if errors.As(err, &statusErr) {
			return transcription.Failed(c, transcription.StatusDownloadFailure+statusErr.Error())
		}
		return transcription.Failed(c, transcription.StatusDownloadError+err.Error())
	}

	length, err := s.probe(path)
	if err != nil {
		log.Warn("could not measure recording", zap.Error(err))
	}
	if length < s.cfg.MinDuration {
		return transcription.Failed(c, transcription.StatusTooShort)
	}

	text, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		log.Warn("transcription failed", zap.Error(err))
		return transcription.Failed(c, transcription.StatusModelFailure+err.Error())
	}
	return transcription.Classify(c, text, s.cfg.ShortThreshold)
}

func (s *Service) tempDir() (string, error) {
	base := s.cfg.TempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "transcricao-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	return dir, nil
}

var _ Downloader = (*audio.Fetcher)(nil)
