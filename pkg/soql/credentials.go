package soql

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Accepted key names per credential concept, in precedence order. Different
// tooling emits snake_case or camelCase documents; both are accepted and the
// first non-empty match wins.
var (
	accessTokenAliases = []string{"access_token", "accessToken"}
	instanceURLAliases = []string{"instance_url", "instanceUrl"}
)

// ResolveCredentials extracts credentials from a raw authentication document
// such as the output of `sf org display --json` or an auth.json file. The
// instance URL is normalized to carry an explicit scheme. An empty-string
// value counts as absent. The transform is pure; the document is never
// mutated or retained.
func ResolveCredentials(doc []byte) (*Credentials, error) {
	var fields map[string]interface{}

	err := json.Unmarshal(doc, &fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentialDoc, err)
	}

	return ResolveCredentialFields(fields)
}

// ResolveCredentialFields resolves credentials from an already-decoded
// document.
func ResolveCredentialFields(fields map[string]interface{}) (*Credentials, error) {
	accessToken := firstNonEmpty(fields, accessTokenAliases)
	if accessToken == "" {
		return nil, &CredentialError{Field: "access_token"}
	}

	instanceURL := NormalizeInstanceURL(firstNonEmpty(fields, instanceURLAliases))
	if instanceURL == "" {
		return nil, &CredentialError{Field: "instance_url"}
	}

	return &Credentials{
		AccessToken: accessToken,
		InstanceURL: instanceURL,
	}, nil
}

// LoadCredentialsFile reads and resolves an authentication document from
// disk.
func LoadCredentialsFile(path string) (*Credentials, error) {
	doc, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading auth document: %w", err)
	}

	return ResolveCredentials(doc)
}

// firstNonEmpty returns the value of the first alias holding a non-empty
// string.
func firstNonEmpty(fields map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		value, ok := fields[alias].(string)
		if ok && value != "" {
			return value
		}
	}

	return ""
}
