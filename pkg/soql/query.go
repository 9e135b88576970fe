package soql

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/soql/internal/constants"
)

// QueryOptions controls how a single query execution behaves. One value per
// execution; treat as immutable once the query has been issued.
type QueryOptions struct {
	// APIVersion selects the REST API version, e.g. "60.0".
	APIVersion string

	// Tooling routes the query to the Tooling API surface.
	Tooling bool

	// AllPages follows nextRecordsUrl until the server stops returning one.
	// When false, exactly one request is issued.
	AllPages bool

	// MaxPages caps the number of pages fetched when AllPages is set.
	// Zero means no cap.
	MaxPages int
}

// NewQueryOptions creates query options with defaults. The API version is
// left empty so client configuration can supply one; Version falls back to
// the package default.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{
		MaxPages: constants.UnlimitedPages,
	}
}

// WithAPIVersion sets the API version.
func (o *QueryOptions) WithAPIVersion(version string) *QueryOptions {
	o.APIVersion = version

	return o
}

// WithTooling routes the query to the Tooling API.
func (o *QueryOptions) WithTooling() *QueryOptions {
	o.Tooling = true

	return o
}

// WithAllPages fetches every page of the result set.
func (o *QueryOptions) WithAllPages() *QueryOptions {
	o.AllPages = true

	return o
}

// WithMaxPages caps the number of pages fetched.
func (o *QueryOptions) WithMaxPages(maxPages int) *QueryOptions {
	o.MaxPages = maxPages

	return o
}

// Version returns the effective API version.
func (o *QueryOptions) Version() string {
	if o == nil || o.APIVersion == "" {
		return constants.DefaultAPIVersion
	}

	return o.APIVersion
}

// QueryPath returns the query endpoint path for an API version. The version
// string is not validated; a malformed version is rejected by the server.
func QueryPath(apiVersion string, tooling bool) string {
	if tooling {
		return fmt.Sprintf(constants.ToolingQueryPathTemplate, apiVersion)
	}

	return fmt.Sprintf(constants.QueryPathTemplate, apiVersion)
}

// NormalizeInstanceURL normalizes a raw instance URL: incidental whitespace
// is stripped, a missing scheme defaults to https, and a trailing slash is
// trimmed so later relative resolution is stable. Idempotent.
func NormalizeInstanceURL(raw string) string {
	instanceURL := strings.TrimSpace(raw)
	if instanceURL == "" {
		return ""
	}

	if !strings.HasPrefix(instanceURL, "http://") && !strings.HasPrefix(instanceURL, "https://") {
		instanceURL = "https://" + instanceURL
	}

	return strings.TrimSuffix(instanceURL, "/")
}

// BuildQueryURL builds the fully-qualified initial request URL for a query.
// The SOQL text travels percent-encoded under the "q" parameter.
func BuildQueryURL(instanceURL, query string, opts *QueryOptions) (string, error) {
	if opts == nil {
		opts = NewQueryOptions()
	}

	if strings.TrimSpace(query) == "" {
		return "", ErrQueryRequired
	}

	base, err := parseBaseURL(instanceURL)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set(constants.QueryParamName, query)

	ref := &url.URL{
		Path:     QueryPath(opts.Version(), opts.Tooling),
		RawQuery: values.Encode(),
	}

	return base.ResolveReference(ref).String(), nil
}

// ResolveContinuationURL resolves a server-supplied continuation reference
// against the instance URL. The server may return either an absolute URL or
// a base-relative path; both resolve with standard relative-URL semantics.
func ResolveContinuationURL(instanceURL, nextRecordsURL string) (string, error) {
	base, err := parseBaseURL(instanceURL)
	if err != nil {
		return "", err
	}

	ref, err := url.Parse(nextRecordsURL)
	if err != nil {
		return "", fmt.Errorf("parsing continuation reference: %w", err)
	}

	return base.ResolveReference(ref).String(), nil
}

func parseBaseURL(instanceURL string) (*url.URL, error) {
	if strings.TrimSpace(instanceURL) == "" {
		return nil, ErrInstanceURLRequired
	}

	base, err := url.Parse(instanceURL)
	if err != nil {
		return nil, fmt.Errorf("parsing instance URL: %w", err)
	}

	if base.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoHostInURL, instanceURL)
	}

	return base, nil
}
