package constants

import "errors"

// Org and configuration errors.
var (
	ErrNoOrgsConfigured    = errors.New("no orgs configured, use 'soql orgs add' to add one")
	ErrOrgConfigNotFound   = errors.New("org configuration not found")
	ErrCurrentOrgNotFound  = errors.New("current org not found in configuration")
	ErrOrgNameRequired     = errors.New("org name or instance URL required")
	ErrNoInstanceURL       = errors.New("no instance URL configured")
	ErrNotAuthenticated    = errors.New("not authenticated, use 'soql auth login' first")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrTokenCannotUnset    = errors.New("token fields cannot be unset via config, use 'soql auth logout' instead")
	ErrOrgAlreadyExists    = errors.New("org already exists")
	ErrCannotRemoveOnlyOrg = errors.New("cannot remove the only configured org")
	ErrAuthFileRequired    = errors.New("credential file path required")
	ErrInteractiveDisabled = errors.New("interactive prompt unavailable, supply --token")
)

// Query errors.
var (
	ErrEmptyQuery           = errors.New("query text is empty")
	ErrInvalidOutputFormat  = errors.New("invalid output format")
	ErrQueryFileRequired    = errors.New("query file path required")
	ErrNoQueriesInBatchFile = errors.New("no queries defined in batch file")
	ErrBatchQueriesFailed   = errors.New("batch queries failed")
	ErrUnknownPresetObject  = errors.New("unknown preset object")
)

// Export errors.
var (
	ErrNoExportSink     = errors.New("no export sink configured")
	ErrExportFileExists = errors.New("export file already exists")
)

// File system errors.
var (
	ErrNotRegularFile             = errors.New("path is not a regular file")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)
