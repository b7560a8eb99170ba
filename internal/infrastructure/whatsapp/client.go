// Package whatsapp calls the RapidAPI WhatsApp number validation endpoint.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dibaisales/central/internal/domain/validation"
	"github.com/dibaisales/central/internal/infrastructure/config"
	"github.com/dibaisales/central/internal/infrastructure/telemetry"
)

const maxResponseSize = 1 << 20

// ErrNotConfigured is returned when the endpoint URL is missing.
var ErrNotConfigured = errors.New("whatsapp: validation endpoint not configured")

type checkRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type checkResponse struct {
	Status    string `json:"status"`
	SubStatus string `json:"sub_status"`
}

// Client implements validation.Checker over HTTP.
type Client struct {
	url        string
	apiKey     string
	host       string
	httpClient *http.Client
	metrics    *telemetry.Metrics
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithMetrics records call latency.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a client from configuration.
func NewClient(cfg config.WhatsAppConfig, opts ...Option) *Client {
	c := &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		host:       cfg.Host,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates number. It never fails: transport and decoding errors
// produce an unknown result carrying the error text.
func (c *Client) Check(ctx context.Context, number string) validation.Result {
	ctx, span := telemetry.StartClientSpan(ctx, "whatsapp.check", attribute.String("phone_number", number))
	defer span.End()

	start := time.Now()
	resp, err := c.post(ctx, number)
	c.metrics.RecordExternalCall(ctx, "whatsapp", time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		c.logger.Warn("whatsapp validation failed", zap.String("number", number), zap.Error(err))
		return validation.Unknown(number, err)
	}

	result := validation.Result{
		Number:    number,
		Status:    validation.ParseStatus(resp.Status),
		SubStatus: resp.SubStatus,
	}
	span.SetAttributes(attribute.String("status", string(result.Status)))
	return result
}

func (c *Client) post(ctx context.Context, number string) (*checkResponse, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(checkRequest{PhoneNumber: number})
	if err != nil {
		return nil, fmt.Errorf("whatsapp: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), c.url)
	}

	var out checkResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("whatsapp: invalid response body: %w", err)
	}
	return &out, nil
}

var _ validation.Checker = (*Client)(nil)
