package labels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"preprocessor/internal/logging"
	"preprocessor/internal/services"
	"preprocessor/internal/textutil"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 8 * time.Second
	maxErrorBody          = 4096
)

// Record is one image label as served by the API.
type Record struct {
	ID        ID     `json:"id"`
	ClassName string `json:"classname"`
}

// ID accepts both JSON strings and numbers so "12" and 12 address the same
// image.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("label id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// StatusError reports a non-success HTTP response from the label API.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("label api %s returned %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the JSON label API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff overrides the retry backoff bounds.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		if initial > 0 {
			c.initialBackoff = initial
		}
		if max > 0 {
			c.maxBackoff = max
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "labels")
	}
}

// New creates a label API client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "labels", "new client", "label api url required", nil)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "labels", "new client", "invalid label api url", err)
	}
	client := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		logger:         logging.NewComponentLogger(nil, "labels"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchAll retrieves every label with a single request to the API root and
// returns them keyed by image ID. Records without an ID or class name are
// dropped; on duplicate IDs the later record wins.
func (c *Client) FetchAll(ctx context.Context) (map[string]string, error) {
	var records []Record
	err := c.withRetry(ctx, "fetch all", func() error {
		records = nil
		status, err := c.getJSON(ctx, c.baseURL, &records)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return &StatusError{StatusCode: status, URL: c.baseURL}
		}
		return nil
	})
	if err != nil {
		return nil, classify("fetch all", err)
	}

	labels := make(map[string]string, len(records))
	for _, record := range records {
		id := strings.TrimSpace(string(record.ID))
		label := textutil.NormalizeLabel(record.ClassName)
		if id == "" || label == "" {
			continue
		}
		labels[id] = label
	}
	return labels, nil
}

// Lookup retrieves the label for a single image ID from {base}/{id}. An ID
// the API does not know returns found=false with a nil error.
func (c *Client) Lookup(ctx context.Context, id string) (string, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false, nil
	}
	endpoint := c.baseURL + "/" + url.PathEscape(id)

	var (
		record Record
		found  bool
	)
	err := c.withRetry(ctx, "lookup", func() error {
		record = Record{}
		status, err := c.getJSON(ctx, endpoint, &record)
		if err != nil {
			return err
		}
		switch status {
		case http.StatusOK:
			found = true
			return nil
		case http.StatusNotFound:
			found = false
			return nil
		default:
			return &StatusError{StatusCode: status, URL: endpoint}
		}
	})
	if err != nil {
		return "", false, classify("lookup", err)
	}
	if !found {
		return "", false, nil
	}
	label := textutil.NormalizeLabel(record.ClassName)
	if label == "" {
		return "", false, nil
	}
	return label, true, nil
}

// Ping checks that the API root answers at all. Any HTTP response counts as
// reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify("ping", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return classify("ping", &StatusError{StatusCode: resp.StatusCode, URL: c.baseURL})
	}
	return nil
}

// getJSON performs a GET and decodes a 200 body into dst. Non-200 statuses
// are returned without decoding; 429 and 5xx become StatusErrors so the
// retry loop sees them.
func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, URL: endpoint, Body: strings.TrimSpace(string(body))}
		}
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("decode label response: %w", err)
	}
	c.logger.Debug("label api request",
		logging.String("url", endpoint),
		logging.Duration("latency", latency),
	)
	return resp.StatusCode, nil
}

func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if isTimeout(err) {
		return services.Wrap(services.ErrTimeout, "labels", operation, "label api timed out", err)
	}
	return services.Wrap(services.ErrExternal, "labels", operation, "label api request failed", err)
}
