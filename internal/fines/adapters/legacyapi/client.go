// Package legacyapi reads the roster, offence catalog and fine records from the
// legacy fine-management REST API and normalises its response shapes.
package legacyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"finetrack/pkg/platform/circuit"
)

// Endpoints of the legacy API.
const (
	PathUsers     = "/users/"
	PathOffences  = "/fine/all"
	PathFines     = "/policeIssueFine/all"
	PathIssueFine = "/policeIssueFine/add"
)

const maxBodyBytes = 8 << 20

// Client calls the legacy API with a service token. While its breaker is open
// it fails fast, letting one probe through per probe interval.
type Client struct {
	baseURL       string
	token         string
	http          *http.Client
	breaker       *circuit.Breaker
	logger        *slog.Logger
	probeInterval time.Duration

	mu        sync.Mutex
	lastProbe time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

func WithProbeInterval(d time.Duration) Option {
	return func(cl *Client) { cl.probeInterval = d }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 10 * time.Second},
		breaker:       circuit.New("legacy-api"),
		logger:        slog.New(slog.DiscardHandler),
		probeInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getList fetches path and returns its items, whatever envelope they came in.
func (c *Client) getList(ctx context.Context, path string) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(body)
	if err != nil {
		return nil, NewProviderError(ErrorBadData, path, "unreadable response", err)
	}
	return items, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return NewProviderError(ErrorBadData, path, "encode request", err)
	}
	_, err = c.do(ctx, http.MethodPost, path, body)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if !c.allow() {
		return nil, NewProviderError(ErrorCircuitOpen, path, "upstream marked down", nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytesReader(payload))
	if err != nil {
		return nil, NewProviderError(ErrorBadData, path, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, classifyTransport(path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail(ctx, NewProviderError(ErrorOutage, path, "read response", err))
	}
	if perr := classifyStatus(path, resp.StatusCode); perr != nil {
		return nil, c.fail(ctx, perr)
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "legacy api recovered, circuit closed", "breaker", c.breaker.Name())
	}
	return body, nil
}

// allow is false while the breaker is open, except for one probe per interval.
func (c *Client) allow() bool {
	if !c.breaker.IsOpen() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastProbe) < c.probeInterval {
		return false
	}
	c.lastProbe = time.Now()
	return true
}

// fail counts retryable failures against the breaker. Client errors such as a
// rejected write say nothing about upstream health.
func (c *Client) fail(ctx context.Context, perr *ProviderError) error {
	if !perr.Retryable {
		return perr
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.mu.Lock()
		c.lastProbe = time.Now()
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "legacy api failing, circuit opened",
			"breaker", c.breaker.Name(),
			"error", perr,
		)
	}
	return perr
}

func classifyTransport(path string, err error) *ProviderError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ErrorTimeout, path, "request timed out", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewProviderError(ErrorTimeout, path, "request timed out", err)
	default:
		return NewProviderError(ErrorOutage, path, "request failed", err)
	}
}

func classifyStatus(path string, status int) *ProviderError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewProviderError(ErrorAuthentication, path, fmt.Sprintf("status %d", status), nil)
	case status == http.StatusNotFound:
		return NewProviderError(ErrorNotFound, path, "not found", nil)
	case status == http.StatusTooManyRequests:
		return NewProviderError(ErrorRateLimited, path, "rate limited", nil)
	case status >= 500:
		return NewProviderError(ErrorOutage, path, fmt.Sprintf("status %d", status), nil)
	default:
		return NewProviderError(ErrorRejected, path, fmt.Sprintf("status %d", status), nil)
	}
}

func bytesReader(b []byte) io.Reader {
	if b == nil {
		return http.NoBody
	}
	return bytes.NewReader(b)
}
