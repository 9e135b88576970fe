// Package http provides the HTTP transport shared by all API calls.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/soql/internal/auth"
	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/hashicorp/go-retryablehttp"
)

// Client executes API requests against one instance URL. Requests are
// single-shot unless retries are explicitly configured via WithRetryConfig.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	retryClient  *retryablehttp.Client
	logger       soql.Logger
	debug        bool
	userAgent    string
}

// Request describes one API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response carries the raw result of a request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithHTTPTimeout sets the timeout for individual requests.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.retryClient.HTTPClient.Timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger soql.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries for connection errors, 5xx responses, and
// rate limiting. Client errors are never retried.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = retryMax
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a transport rooted at baseURL. tokenManager may be nil
// for unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	// Request logging goes through our own logger, not retryablehttp's.
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		retryClient:  retryClient,
		userAgent:    constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the URL the transport is rooted at.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes the request. Non-2xx responses return both the response and a
// *soql.FetchError carrying the status and raw body; network-level failures
// return a *soql.TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	var body []byte

	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	err = c.applyHeaders(ctx, httpReq, req.Headers)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, &soql.TransportError{URL: fullURL, Err: err}
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &soql.TransportError{URL: fullURL, Err: err}
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"url":    fullURL,
		})
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return response, soql.NewFetchError(httpResp.StatusCode, respBody)
	}

	return response, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// buildURL resolves the request path against the base URL. An absolute URL
// in Path is used as-is, so server-supplied page references work unchanged.
func (c *Client) buildURL(req *Request) (string, error) {
	target := req.Path

	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		base, err := url.Parse(c.baseURL)
		if err != nil {
			return "", fmt.Errorf("parsing base URL: %w", err)
		}

		ref, err := url.Parse(target)
		if err != nil {
			return "", fmt.Errorf("parsing request path: %w", err)
		}

		target = base.ResolveReference(ref).String()
	}

	if len(req.Query) > 0 {
		parsed, err := url.Parse(target)
		if err != nil {
			return "", fmt.Errorf("parsing request URL: %w", err)
		}

		query := parsed.Query()

		for key, values := range req.Query {
			for _, value := range values {
				query.Add(key, value)
			}
		}

		parsed.RawQuery = query.Encode()
		target = parsed.String()
	}

	return target, nil
}

// applyHeaders sets the standard headers, the Bearer credential, and any
// per-request overrides.
func (c *Client) applyHeaders(ctx context.Context, httpReq *retryablehttp.Request, headers map[string]string) error {
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("getting access token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	return nil
}
