package listings

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spigell/resume-matcher/internal/utils"

	"go.uber.org/zap"
)

const (
	userAgent      = "spigell/resume-matcher (spigelly@gmail.com)"
	acceptHTML     = "text/html,application/xhtml+xml"
	acceptEncoding = "gzip"

	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultRetryWait  = 500 * time.Millisecond
	maxRetryWait      = 10 * time.Second
)

var ErrBadStatus = errors.New("bad status")

// FetchError records one listing URL or job id that could not be fetched.
type FetchError struct {
	URL string `json:"url"`
	// ID is empty for listing pages.
	ID     string `json:"id,omitempty"`
	Status int    `json:"status,omitempty"`
	Err    error  `json:"-"`
}

func (e *FetchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("fetching job %s (%s): %v", e.ID, e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	MaxRetries int
	// RetryWait is the first wait between retries. It doubles on every attempt.
	RetryWait time.Duration

	limiter *HostLimiter
	logger  *zap.Logger
}

func NewClient(limiter *HostLimiter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		UserAgent:  userAgent,
		MaxRetries: defaultMaxRetries,
		RetryWait:  defaultRetryWait,
		limiter:    limiter,
		logger:     logger,
	}
}

// Get returns the decoded body of a 2xx response. Transport errors and
// 429/5xx responses are retried with exponential wait. Failures are
// returned as *FetchError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, status, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, &FetchError{URL: url, Status: status, Err: ctx.Err()}
		}

		var permanent *permanentError
		if attempt >= c.MaxRetries || errors.As(err, &permanent) || !retryable(status) {
			return nil, &FetchError{URL: url, Status: status, Err: err}
		}

		wait := c.backoff(attempt)
		c.logger.Debug("retrying request",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("status", status),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		if err := utils.WaitFor(ctx, wait); err != nil {
			return nil, &FetchError{URL: url, Status: status, Err: err}
		}
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	if err := c.limiter.WaitURL(ctx, url); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &permanentError{err}
	}
	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, 0, fmt.Errorf("reading body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	return req
}

func (c *Client) backoff(attempt int) time.Duration {
	wait := c.RetryWait
	for i := 0; i < attempt && wait < maxRetryWait; i++ {
		wait *= 2
	}
	if wait > maxRetryWait {
		wait = maxRetryWait
	}
	return wait
}

// permanentError marks failures that retrying cannot fix.
type permanentError struct {
	error
}

func (e *permanentError) Unwrap() error {
	return e.error
}

func readBody(resp *http.Response) ([]byte, error) {
	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}
	return io.ReadAll(body)
}

// retryable reports whether a failed attempt may succeed later. A zero
// status means the request never got a response.
func retryable(status int) bool {
	switch status {
	case 0,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
