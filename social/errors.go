package social

import "errors"

var (
	// ErrMissingClientID is returned when a provider is configured without a client id.
	ErrMissingClientID = errors.New("social: client id is required")
	// ErrMissingClientSecret is returned when a provider is configured without a client secret.
	ErrMissingClientSecret = errors.New("social: client secret is required")
	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("social: authorization code is required")
	// ErrExchangeFailed wraps a failed code exchange.
	ErrExchangeFailed = errors.New("social: code exchange failed")
)
