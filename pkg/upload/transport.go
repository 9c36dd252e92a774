package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/connectsphere/clientkit/pkg/logger"
)

// DefaultTimeout bounds a single transfer.
const DefaultTimeout = 30 * time.Second

// SendOptions controls a single transfer.
type SendOptions struct {
	// Endpoint is the path appended to the transport base URL. Defaults to
	// EndpointDocuments.
	Endpoint string

	// OnProgress is invoked on every transport-level progress tick. Loaded
	// is monotonically non-decreasing. May be nil.
	OnProgress func(Progress)

	// Timeout bounds the whole transfer. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Transport performs a single-file transfer to a remote endpoint.
// Idempotency is not guaranteed: callers must not retry blindly without
// server-side dedup.
type Transport interface {
	Send(ctx context.Context, f File, opts SendOptions) (*Result, error)
}

// HTTPTransport streams one file as a multipart payload over HTTP.
type HTTPTransport struct {
	baseURL   string
	client    *http.Client
	authToken func() string
	timeout   time.Duration
	logger    *slog.Logger
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithAuthToken supplies a bearer token source attached to every request.
// The function is called per request so rotated tokens are picked up.
func WithAuthToken(fn func() string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if fn != nil {
			t.authToken = fn
		}
	}
}

// WithTimeout sets the default per-transfer timeout, used when SendOptions
// does not carry one.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithTransportLogger sets the logger.
func WithTransportLogger(log *slog.Logger) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if log != nil {
			t.logger = log
		}
	}
}

// NewHTTPTransport creates a transport posting to baseURL.
func NewHTTPTransport(baseURL string, opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts f as a multipart body and decodes the server's Result.
// Non-2xx responses and transport failures produce a *TransportError
// carrying the server-supplied message where one exists.
func (t *HTTPTransport) Send(ctx context.Context, f File, opts SendOptions) (*Result, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = EndpointDocuments
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = t.timeout
	}

	body, contentType, err := encodeMultipart(f)
	if err != nil {
		return nil, fmt.Errorf("encode multipart body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	total := int64(body.Len())
	reader := &progressReader{
		r:     body,
		total: total,
		tick:  opts.OnProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = total
	if t.authToken != nil {
		if token := t.authToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TransportError{Message: "upload timed out", Err: err}
		}
		return nil, &TransportError{Message: "network failure", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		terr := &TransportError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(resp.Body),
		}
		t.logger.Warn("file upload rejected by server",
			logger.Component("upload"),
			logger.Filename(f.Name),
			logger.FileSize(f.Size),
			logger.Endpoint(endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return nil, terr
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    "invalid server response",
			Err:        err,
		}
	}

	return &result, nil
}

// encodeMultipart builds the multipart payload the upload API expects:
// the file part plus filename and mimeType fields.
func encodeMultipart(f File) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("filename", f.Name); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("mimeType", f.MIMEType); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return body, w.FormDataContentType(), nil
}

// decodeErrorMessage extracts the JSON error body's message field, falling
// back to a generic reason so raw payloads never reach the user.
func decodeErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "file upload failed"
}

// progressReader counts bytes flowing into the HTTP request and reports
// each tick. Loaded never decreases.
type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	tick   func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.tick != nil {
			p.tick(Progress{
				Loaded:     p.loaded,
				Total:      p.total,
				Percentage: percentage(p.loaded, p.total),
			})
		}
	}
	return n, err
}
