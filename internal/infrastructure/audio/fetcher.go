// Package audio downloads call recordings and probes their length.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/infrastructure/telemetry"
)

// ErrUnsupportedLink is returned for links that are neither http(s) nor s3://.
var ErrUnsupportedLink = errors.New("unsupported recording link")

// HTTPStatusError is returned when the recording server answers with a non-200 status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// ObjectOpener opens s3:// links.
type ObjectOpener interface {
	OpenURI(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Fetcher copies a recording from its link into a local file.
type Fetcher struct {
	httpClient *http.Client
	objects    ObjectOpener
	metrics    *telemetry.Metrics
	logger     *zap.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithObjectStorage enables s3:// links.
func WithObjectStorage(o ObjectOpener) FetcherOption {
	return func(f *Fetcher) {
		f.objects = o
	}
}

// WithMetrics records download latency.
func WithMetrics(m *telemetry.Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a fetcher whose HTTP downloads time out after timeout.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Supports reports whether link can be fetched.
func (f *Fetcher) Supports(link string) bool {
	switch {
	case strings.HasPrefix(link, "http"):
		return true
	case strings.HasPrefix(link, "s3://"):
		return f.objects != nil
	default:
		return false
	}
}

// Fetch writes the recording at link to dst. A partially written dst is
// removed on failure.
func (f *Fetcher) Fetch(ctx context.Context, link, dst string) (err error) {
	ctx, span := telemetry.StartClientSpan(ctx, "audio.fetch", attribute.String("link", link))
	defer span.End()

	start := time.Now()
	defer func() {
		f.metrics.RecordExternalCall(ctx, "recording_download", time.Since(start), err)
		telemetry.RecordError(span, err)
	}()

	body, err := f.open(ctx, link)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err = io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to write recording: %w", err)
	}
	if err = out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}

func (f *Fetcher) open(ctx context.Context, link string) (io.ReadCloser, error) {
	if strings.HasPrefix(link, "s3://") {
		if f.objects == nil {
			return nil, fmt.Errorf("%w: object storage not configured", ErrUnsupportedLink)
		}
		return f.objects.OpenURI(ctx, link)
	}
	if !strings.HasPrefix(link, "http") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLink, link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
