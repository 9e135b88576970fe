package soql

import (
	"context"
	"errors"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrDeprecatedClientConstructor = errors.New("use github.com/fivetwenty-io/soql/pkg/sfclient.New to create a client")
)

// Client is the query surface of a connected org.
type Client interface {
	// Query executes a query and aggregates results according to the
	// options. An empty result set is not an error; check Empty() on the
	// returned aggregate.
	Query(ctx context.Context, query string, opts *QueryOptions) (*AggregatedResult, error)

	// FetchPage retrieves a single result page by URL. The URL may be
	// absolute or relative to the instance URL.
	FetchPage(ctx context.Context, pageURL string) (*QueryResult, error)

	// Iterate returns a lazy record iterator over the result set.
	Iterate(ctx context.Context, query string, opts *QueryOptions) (*QueryIterator, error)

	// BaseURL returns the normalized instance URL.
	BaseURL() string

	// APIVersion returns the version used when options omit one.
	APIVersion() string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a soql.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/sfclient and internal/client):
//  1. AccessToken + InstanceURL: used directly as a static Bearer token.
//  2. CredentialsJSON: a raw authentication document. The access token and
//     instance URL are resolved from it, accepting both snake_case and
//     camelCase field names.
//  3. CredentialsFile: path to the same document on disk.
//
// Token refresh is out of scope. An expired or revoked session surfaces as a
// fetch failure carrying the server status and body.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Requests are not retried unless RetryMax is set above zero;
// retries then apply only to connection errors and 5xx/429 responses.
type Config struct {
	// Required fields
	// InstanceURL: base URL of the org (e.g. "https://my-org.my.salesforce.com").
	// sfclient.New normalizes this value by trimming whitespace and
	// surrounding it with "https://" if no scheme is present.
	InstanceURL string

	// Authentication options (provide one)
	// AccessToken: session token sent as a Bearer credential.
	AccessToken string
	// CredentialsJSON: raw authentication document to resolve credentials from.
	CredentialsJSON []byte
	// CredentialsFile: path to an authentication document on disk.
	CredentialsFile string

	// Optional configurations
	// APIVersion: REST API version, without the "v" prefix (e.g. "60.0").
	APIVersion string
	// HTTPTimeout: optional default HTTP timeout where supported.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures. Zero keeps
	// every request single-shot.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}

// NewClient creates a new query client
// Deprecated: Use github.com/fivetwenty-io/soql/pkg/sfclient.New instead.
func NewClient(config *Config) (Client, error) {
	return nil, ErrDeprecatedClientConstructor
}
