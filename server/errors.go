package server

import "errors"

var (
	// ErrMissingAPIKey is returned by New without an API key id and secret.
	ErrMissingAPIKey = errors.New("server: API key id and secret are required")
	// ErrMissingAPIURL is returned by New without the identity API URL.
	ErrMissingAPIURL = errors.New("server: identity API URL is required")
	// ErrInvalidState is returned when an OAuth callback state does not match.
	ErrInvalidState = errors.New("server: oauth state mismatch")
	// ErrSocialDisabled is returned when a social route is hit without a provider.
	ErrSocialDisabled = errors.New("server: social login is not configured")
)
