package soql

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a single error object from the Salesforce REST API.
// Error responses carry an array of these.
type APIError struct {
	Message   string   `json:"message"          yaml:"message"`
	ErrorCode string   `json:"errorCode"        yaml:"errorCode"`
	Fields    []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Common Salesforce error codes.
const (
	ErrorCodeInvalidSession       = "INVALID_SESSION_ID"
	ErrorCodeMalformedQuery       = "MALFORMED_QUERY"
	ErrorCodeInvalidField         = "INVALID_FIELD"
	ErrorCodeInvalidType          = "INVALID_TYPE"
	ErrorCodeNotFound             = "NOT_FOUND"
	ErrorCodeRequestLimitExceeded = "REQUEST_LIMIT_EXCEEDED"
	ErrorCodeInsufficientAccess   = "INSUFFICIENT_ACCESS_OR_READONLY"
	ErrorCodeAPIDisabledForOrg    = "API_DISABLED_FOR_ORG"
)

// FetchError is a non-success HTTP response on any page request. It aborts
// the pagination loop immediately; no partial aggregate is returned alongside
// it. Errors holds the parsed Salesforce error array when the body allows.
type FetchError struct {
	StatusCode int        `json:"status_code"      yaml:"status_code"`
	Body       string     `json:"body"             yaml:"body"`
	Errors     []APIError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if first := e.FirstError(); first != nil {
		return fmt.Sprintf("failed to fetch data: %d %s", e.StatusCode, first.Error())
	}

	return fmt.Sprintf("failed to fetch data: %d %s", e.StatusCode, e.Body)
}

// FirstError returns the first parsed API error or nil.
func (e *FetchError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// HasErrorCode reports whether any parsed API error carries the given code.
func (e *FetchError) HasErrorCode(code string) bool {
	for i := range e.Errors {
		if e.Errors[i].ErrorCode == code {
			return true
		}
	}

	return false
}

// NewFetchError builds a FetchError from a response status and body,
// parsing the Salesforce error array when present.
func NewFetchError(statusCode int, body []byte) *FetchError {
	return &FetchError{
		StatusCode: statusCode,
		Body:       string(body),
		Errors:     ParseErrorBody(body),
	}
}

// CredentialError is a required credential concept missing or empty after
// alias resolution. It is surfaced before any network call is made.
type CredentialError struct {
	// Field is the canonical name of the missing concept, e.g. "access_token".
	Field string
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("missing required credential: %s", e.Field)
}

// TransportError is a network-level failure (connection refused, DNS,
// timeout) on any page request. No automatic retry is attempted.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrInstanceURLRequired  = errors.New("instance URL is required")
	ErrAccessTokenRequired  = errors.New("access token is required")
	ErrQueryRequired        = errors.New("query text is required")
	ErrNoMoreRecords        = errors.New("no more records")
	ErrPagerRequired        = errors.New("pager is required")
	ErrNoHostInURL          = errors.New("no host specified in URL")
	ErrInvalidCredentialDoc = errors.New("credential document is not a JSON object")
)

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	fetchErr := &FetchError{}
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode == http.StatusUnauthorized ||
			fetchErr.HasErrorCode(ErrorCodeInvalidSession)
	}

	return false
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	fetchErr := &FetchError{}
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode == http.StatusForbidden ||
			fetchErr.HasErrorCode(ErrorCodeInsufficientAccess)
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	fetchErr := &FetchError{}
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode == http.StatusNotFound ||
			fetchErr.HasErrorCode(ErrorCodeNotFound)
	}

	return false
}

// IsMalformedQuery checks if the server rejected the query text.
func IsMalformedQuery(err error) bool {
	fetchErr := &FetchError{}
	if errors.As(err, &fetchErr) {
		return fetchErr.HasErrorCode(ErrorCodeMalformedQuery)
	}

	return false
}

// IsRateLimited checks if the error is a request limit rejection.
func IsRateLimited(err error) bool {
	fetchErr := &FetchError{}
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode == http.StatusTooManyRequests ||
			fetchErr.HasErrorCode(ErrorCodeRequestLimitExceeded)
	}

	return false
}

// IsCredentialError checks if the error is a missing-credential failure.
func IsCredentialError(err error) bool {
	credErr := &CredentialError{}

	return errors.As(err, &credErr)
}

// IsTransportError checks if the error is a network-level failure.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// ParseErrorBody parses a Salesforce error response body. The API returns a
// JSON array of error objects; a single object is tolerated as well. Returns
// nil when the body is not parseable as either.
func ParseErrorBody(data []byte) []APIError {
	var apiErrors []APIError

	err := json.Unmarshal(data, &apiErrors)
	if err == nil {
		return apiErrors
	}

	var single APIError

	err = json.Unmarshal(data, &single)
	if err == nil && (single.Message != "" || single.ErrorCode != "") {
		return []APIError{single}
	}

	return nil
}
