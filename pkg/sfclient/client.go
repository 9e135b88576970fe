// Package sfclient provides the main entry point for creating Salesforce query clients
package sfclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/soql/internal/client"
	"github.com/fivetwenty-io/soql/pkg/soql"
)

// New creates a new Salesforce query client from the given configuration.
//
// Credential material is resolved once, during construction, following the
// precedence documented on soql.Config. The instance URL is normalized by
// trimming whitespace and prefixing "https://" when no scheme is present.
// Construction performs no network call.
func New(ctx context.Context, config *soql.Config) (soql.Client, error) {
	if config == nil {
		return nil, soql.ErrConfigRequired
	}

	queryClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return queryClient, nil
}

// NewWithToken creates a new client from an instance URL and a session
// access token.
func NewWithToken(ctx context.Context, instanceURL, token string) (soql.Client, error) {
	return New(ctx, &soql.Config{
		InstanceURL: instanceURL,
		AccessToken: token,
	})
}

// NewFromCredentials creates a new client from a raw authentication
// document, such as the JSON printed by `sf org display --json`. Both
// snake_case and camelCase field names are accepted.
func NewFromCredentials(ctx context.Context, doc []byte) (soql.Client, error) {
	return New(ctx, &soql.Config{
		CredentialsJSON: doc,
	})
}

// NewFromCredentialsFile creates a new client from an authentication
// document stored on disk.
func NewFromCredentialsFile(ctx context.Context, path string) (soql.Client, error) {
	return New(ctx, &soql.Config{
		CredentialsFile: path,
	})
}
