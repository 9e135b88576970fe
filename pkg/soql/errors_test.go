package soql

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name: "with error code",
			err: &APIError{
				Message:   "unexpected token: FRM",
				ErrorCode: ErrorCodeMalformedQuery,
			},
			expected: "MALFORMED_QUERY: unexpected token: FRM",
		},
		{
			name: "message only",
			err: &APIError{
				Message: "expired",
			},
			expected: "expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestFetchError_Error(t *testing.T) {
	t.Run("with parsed errors", func(t *testing.T) {
		err := &FetchError{
			StatusCode: http.StatusUnauthorized,
			Body:       `[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`,
			Errors: []APIError{
				{Message: "Session expired or invalid", ErrorCode: ErrorCodeInvalidSession},
			},
		}

		assert.Equal(t, "failed to fetch data: 401 INVALID_SESSION_ID: Session expired or invalid", err.Error())
	})

	t.Run("falls back to raw body", func(t *testing.T) {
		err := &FetchError{
			StatusCode: http.StatusBadGateway,
			Body:       "<html>gateway error</html>",
		}

		assert.Equal(t, "failed to fetch data: 502 <html>gateway error</html>", err.Error())
	})
}

func TestFetchError_FirstError(t *testing.T) {
	t.Run("with errors", func(t *testing.T) {
		err := &FetchError{
			Errors: []APIError{
				{Message: "first", ErrorCode: ErrorCodeInvalidField},
				{Message: "second", ErrorCode: ErrorCodeMalformedQuery},
			},
		}

		first := err.FirstError()
		require.NotNil(t, first)
		assert.Equal(t, "first", first.Message)
		assert.Equal(t, ErrorCodeInvalidField, first.ErrorCode)
	})

	t.Run("without errors", func(t *testing.T) {
		err := &FetchError{StatusCode: http.StatusInternalServerError}
		assert.Nil(t, err.FirstError())
	})
}

func TestFetchError_HasErrorCode(t *testing.T) {
	err := &FetchError{
		Errors: []APIError{
			{Message: "bad field", ErrorCode: ErrorCodeInvalidField},
			{Message: "bad query", ErrorCode: ErrorCodeMalformedQuery},
		},
	}

	assert.True(t, err.HasErrorCode(ErrorCodeMalformedQuery))
	assert.True(t, err.HasErrorCode(ErrorCodeInvalidField))
	assert.False(t, err.HasErrorCode(ErrorCodeNotFound))
}

func TestNewFetchError(t *testing.T) {
	t.Run("parses the standard error array", func(t *testing.T) {
		body := []byte(`[{"message":"\nSELECT Id FRM Account\n          ^\nERROR","errorCode":"MALFORMED_QUERY"}]`)

		err := NewFetchError(http.StatusBadRequest, body)
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Equal(t, string(body), err.Body)
		require.Len(t, err.Errors, 1)
		assert.Equal(t, ErrorCodeMalformedQuery, err.Errors[0].ErrorCode)
	})

	t.Run("tolerates a single error object", func(t *testing.T) {
		body := []byte(`{"message": "expired"}`)

		err := NewFetchError(http.StatusForbidden, body)
		assert.Equal(t, http.StatusForbidden, err.StatusCode)
		assert.Equal(t, `{"message": "expired"}`, err.Body)
		require.Len(t, err.Errors, 1)
		assert.Equal(t, "expired", err.Errors[0].Message)
	})

	t.Run("keeps unparseable bodies verbatim", func(t *testing.T) {
		body := []byte("<html>maintenance</html>")

		err := NewFetchError(http.StatusServiceUnavailable, body)
		assert.Equal(t, "<html>maintenance</html>", err.Body)
		assert.Empty(t, err.Errors)
	})
}

func TestCredentialError_Error(t *testing.T) {
	err := &CredentialError{Field: "access_token"}
	assert.Equal(t, "missing required credential: access_token", err.Error())
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{URL: "https://my-org.my.salesforce.com", Err: cause}

	assert.Equal(t, "request to https://my-org.my.salesforce.com failed: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "401 status",
			err:      &FetchError{StatusCode: http.StatusUnauthorized},
			expected: true,
		},
		{
			name: "invalid session code on another status",
			err: &FetchError{
				StatusCode: http.StatusForbidden,
				Errors:     []APIError{{ErrorCode: ErrorCodeInvalidSession}},
			},
			expected: true,
		},
		{
			name:     "wrapped fetch error",
			err:      fmt.Errorf("fetching page: %w", &FetchError{StatusCode: http.StatusUnauthorized}),
			expected: true,
		},
		{
			name:     "other status",
			err:      &FetchError{StatusCode: http.StatusBadRequest},
			expected: false,
		},
		{
			name:     "unrelated error",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUnauthorized(tt.err))
		})
	}
}

func TestIsForbidden(t *testing.T) {
	assert.True(t, IsForbidden(&FetchError{StatusCode: http.StatusForbidden}))
	assert.True(t, IsForbidden(&FetchError{
		StatusCode: http.StatusBadRequest,
		Errors:     []APIError{{ErrorCode: ErrorCodeInsufficientAccess}},
	}))
	assert.False(t, IsForbidden(&FetchError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsForbidden(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&FetchError{StatusCode: http.StatusNotFound}))
	assert.True(t, IsNotFound(&FetchError{
		StatusCode: http.StatusBadRequest,
		Errors:     []APIError{{ErrorCode: ErrorCodeNotFound}},
	}))
	assert.False(t, IsNotFound(&FetchError{StatusCode: http.StatusForbidden}))
	assert.False(t, IsNotFound(errors.New("not a fetch error")))
}

func TestIsMalformedQuery(t *testing.T) {
	err := &FetchError{
		StatusCode: http.StatusBadRequest,
		Errors:     []APIError{{Message: "unexpected token", ErrorCode: ErrorCodeMalformedQuery}},
	}

	assert.True(t, IsMalformedQuery(err))
	assert.False(t, IsMalformedQuery(&FetchError{StatusCode: http.StatusBadRequest}))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(&FetchError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRateLimited(&FetchError{
		StatusCode: http.StatusForbidden,
		Errors:     []APIError{{ErrorCode: ErrorCodeRequestLimitExceeded}},
	}))
	assert.False(t, IsRateLimited(&FetchError{StatusCode: http.StatusForbidden}))
}

func TestIsCredentialError(t *testing.T) {
	assert.True(t, IsCredentialError(&CredentialError{Field: "access_token"}))
	assert.True(t, IsCredentialError(fmt.Errorf("resolving credentials: %w", &CredentialError{Field: "instance_url"})))
	assert.False(t, IsCredentialError(errors.New("boom")))
	assert.False(t, IsCredentialError(nil))
}

func TestIsTransportError(t *testing.T) {
	assert.True(t, IsTransportError(&TransportError{URL: "https://example.com", Err: errors.New("timeout")}))
	assert.False(t, IsTransportError(&FetchError{StatusCode: http.StatusBadGateway}))
	assert.False(t, IsTransportError(nil))
}

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []APIError
	}{
		{
			name: "error array",
			body: `[{"message":"No such column 'Foo'","errorCode":"INVALID_FIELD","fields":["Foo"]}]`,
			expected: []APIError{
				{Message: "No such column 'Foo'", ErrorCode: ErrorCodeInvalidField, Fields: []string{"Foo"}},
			},
		},
		{
			name: "multiple errors",
			body: `[{"message":"first","errorCode":"INVALID_FIELD"},{"message":"second","errorCode":"MALFORMED_QUERY"}]`,
			expected: []APIError{
				{Message: "first", ErrorCode: ErrorCodeInvalidField},
				{Message: "second", ErrorCode: ErrorCodeMalformedQuery},
			},
		},
		{
			name:     "single object",
			body:     `{"message": "expired"}`,
			expected: []APIError{{Message: "expired"}},
		},
		{
			name:     "object without error fields",
			body:     `{"foo": "bar"}`,
			expected: nil,
		},
		{
			name:     "not JSON",
			body:     "<html>gateway error</html>",
			expected: nil,
		},
		{
			name:     "empty body",
			body:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseErrorBody([]byte(tt.body)))
		})
	}
}
