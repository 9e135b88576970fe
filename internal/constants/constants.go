package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// ExportFilePerm is the permission for exported data files.
	ExportFilePerm = 0644
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations such as large exports.
	ExtendedHTTPTimeout = 120 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits for the opt-in retry decorator.
const (
	// DefaultRetryMax is the number of retries when none is configured.
	// Zero keeps transient failures visible to the caller.
	DefaultRetryMax = 0

	// OptInRetryMax is a sensible retry count for callers that enable retries.
	OptInRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch queries.
	DefaultConcurrencyLimit = 3

	// PageBufferSize is the channel buffer used when streaming pages.
	PageBufferSize = 10
)

// Salesforce API defaults.
const (
	// DefaultAPIVersion is the query API version used when none is supplied.
	DefaultAPIVersion = "60.0"

	// QueryPathTemplate is the standard query endpoint, parameterized by API version.
	QueryPathTemplate = "/services/data/v%s/query"

	// ToolingQueryPathTemplate is the Tooling API query endpoint.
	ToolingQueryPathTemplate = "/services/data/v%s/tooling/query"

	// QueryParamName is the query-string key carrying the SOQL text.
	QueryParamName = "q"

	// ServerBatchSize is the number of records Salesforce returns per page by default.
	ServerBatchSize = 2000

	// DefaultUserAgent identifies this client in outgoing requests.
	DefaultUserAgent = "soql-client/1.0"
)

// Pagination limits.
const (
	// UnlimitedPages follows nextRecordsUrl until the server omits it.
	UnlimitedPages = 0

	// SafetyMaxPages is a cap for callers that want protection against a
	// server returning a repeating continuation reference.
	SafetyMaxPages = 50
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400

	// HTTPStatusInternalServerError represents server errors.
	HTTPStatusInternalServerError = 500
)

// Export artifacts.
const (
	// ExportFileName is the default name for exported CSV data.
	ExportFileName = "salesforce_data.csv"

	// ExportMIMEType is the MIME type of exported CSV data.
	ExportMIMEType = "text/csv"
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// MsgNoDataFound is printed when a query succeeds with zero records.
	MsgNoDataFound = "No data found."

	// CellDisplayLength is the default length for truncating table cells.
	CellDisplayLength = 60

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Format constants.
const (
	// FormatTable for tabular output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatCSV for CSV output format.
	FormatCSV = "csv"
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Command argument counts.
const (
	// MinimumArgumentCount is the minimum number of command line arguments
	// for key/value commands.
	MinimumArgumentCount = 2
)

// Configuration locations.
const (
	// ConfigDirName is the directory under the user home holding CLI config.
	ConfigDirName = ".soql"

	// ConfigFileName is the name of the CLI configuration file.
	ConfigFileName = "config.yml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "SOQL"
)

// Batch execution defaults.
const (
	// DefaultBatchTimeout bounds a single query inside a batch run.
	DefaultBatchTimeout = 5 * time.Minute
)

// NATS export defaults.
const (
	// DefaultNATSSubject is the subject used when none is configured.
	DefaultNATSSubject = "soql.records"

	// NATSFlushTimeout bounds the final flush when closing a NATS sink.
	NATSFlushTimeout = 5 * time.Second
)
