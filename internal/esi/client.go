package esi

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

// Default client settings.
const (
	DefaultBaseURL   = "https://esi.evetech.net/latest"
	DefaultUserAgent = "evemarket/0.1"
	DefaultPermits   = 20
	DefaultTimeout   = 30 * time.Second
)

// Client provides access to the ESI market endpoints. One Client is shared by
// all region tasks; its permit pool is the single global throttle on outbound
// request volume.
type Client struct {
	baseURL      string
	userAgent    string
	httpClient   *http.Client
	logger       *slog.Logger
	permits      *semaphore.Weighted
	publishCheck bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new ESI client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:  slog.Default(),
		permits: semaphore.NewWeighted(DefaultPermits),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the ESI base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithPermits sets the number of concurrency permits for in-flight requests.
func WithPermits(n int64) ClientOption {
	return func(c *Client) {
		c.permits = semaphore.NewWeighted(n)
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPublishCheck enables the publish check before history fetches. An
// unpublished item then yields a NotPublished error instead of its history.
func WithPublishCheck(enabled bool) ClientOption {
	return func(c *Client) {
		c.publishCheck = enabled
	}
}
