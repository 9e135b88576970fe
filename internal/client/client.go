package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/soql/internal/auth"
	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/internal/http"
	"github.com/fivetwenty-io/soql/pkg/soql"
)

// New creates a query client from the given configuration.
//
// Credentials are resolved exactly once, before any request is made, and the
// resulting client is immutable. Construction issues no network call; an
// invalid token or instance URL surfaces on the first query instead.
func New(ctx context.Context, config *soql.Config) (*QueryClient, error) {
	if config == nil {
		return nil, soql.ErrConfigRequired
	}

	credentials, err := resolveConfigCredentials(config)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewStaticTokenManager(credentials.AccessToken)

	// Create HTTP client options
	httpOpts := createHTTPClientOptions(config)

	// Create HTTP client
	httpClient := http.NewClient(credentials.InstanceURL, tokenManager, httpOpts...)

	apiVersion := config.APIVersion
	if apiVersion == "" {
		apiVersion = constants.DefaultAPIVersion
	}

	return &QueryClient{
		httpClient: httpClient,
		baseURL:    httpClient.BaseURL(),
		apiVersion: apiVersion,
		logger:     config.Logger,
	}, nil
}

// resolveConfigCredentials applies the authentication precedence documented
// on soql.Config: an explicit access token first, then a raw credential
// document, then a document on disk. An instance URL set on the config wins
// over one carried by a document.
func resolveConfigCredentials(config *soql.Config) (*soql.Credentials, error) {
	configURL := soql.NormalizeInstanceURL(config.InstanceURL)

	if config.AccessToken != "" {
		if configURL == "" {
			return nil, soql.ErrInstanceURLRequired
		}

		return &soql.Credentials{
			AccessToken: config.AccessToken,
			InstanceURL: configURL,
		}, nil
	}

	var (
		credentials *soql.Credentials
		err         error
	)

	switch {
	case len(config.CredentialsJSON) > 0:
		credentials, err = soql.ResolveCredentials(config.CredentialsJSON)
	case config.CredentialsFile != "":
		credentials, err = soql.LoadCredentialsFile(config.CredentialsFile)
	default:
		return nil, soql.ErrAccessTokenRequired
	}

	if err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}

	if configURL != "" {
		credentials.InstanceURL = configURL
	}

	return credentials, nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *soql.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}
