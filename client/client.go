package client

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// Client sends requests to the service under test. It holds only run-wide settings; every
// request is built separately with NewRequest.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     framework.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests. The default is http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero or less means no limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(math.Max(1, math.Ceil(rps))))
	}
}

// WithLogger sets the logger used for requests that were not given a logger of their own.
func WithLogger(logger framework.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     framework.NullLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewRequest starts a request against one of the service's resources, such as
// servicedef.ProductPath. Request and response are written to logger, or to the client's
// logger if it is nil.
func (c *Client) NewRequest(basePath string, logger framework.Logger) *Request {
	if logger == nil {
		logger = c.logger
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	return &Request{
		client:   c,
		basePath: basePath,
		header:   header,
		logger:   logger,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for request rate limiter: %w", err)
	}
	return nil
}
