package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Handshake and session errors
	ErrNetwork     = fmt.Errorf("network failure")
	ErrProtocol    = fmt.Errorf("login protocol failure")
	ErrAuthMissing = fmt.Errorf("authentication expired or missing")

	// API and pipeline errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrValidation         = fmt.Errorf("validation failed")
	ErrTranslation        = fmt.Errorf("translation failed")
	ErrAssetPipeline      = fmt.Errorf("image pipeline failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
