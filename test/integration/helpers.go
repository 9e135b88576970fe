//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/fivetwenty-io/soql/pkg/sfclient"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	InstanceURL string
	Token       string
	AuthFile    string
	APIVersion  string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		InstanceURL: os.Getenv("SOQL_TEST_INSTANCE_URL"),
		Token:       os.Getenv("SOQL_TEST_TOKEN"),
		AuthFile:    os.Getenv("SOQL_TEST_AUTH_FILE"),
		APIVersion:  os.Getenv("SOQL_TEST_API_VERSION"),
		Verbose:     os.Getenv("SOQL_TEST_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test when no org credentials are configured
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.AuthFile != "" {
		return
	}

	if config.InstanceURL == "" || config.Token == "" {
		t.Skip("SOQL_TEST_INSTANCE_URL and SOQL_TEST_TOKEN not set, skipping integration test")
	}
}

// NewTestClient creates a client against the configured test org
func NewTestClient(t *testing.T, config *TestConfig) soql.Client {
	t.Helper()

	clientConfig := &soql.Config{
		InstanceURL:     config.InstanceURL,
		AccessToken:     config.Token,
		CredentialsFile: config.AuthFile,
		APIVersion:      config.APIVersion,
	}

	client, err := sfclient.New(context.Background(), clientConfig)
	require.NoError(t, err, "failed to create test client")

	return client
}
