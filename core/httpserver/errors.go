package httpserver

import "errors"

var (
	// ErrMissingAddress is returned when no listen address is configured.
	ErrMissingAddress = errors.New("httpserver: listen address is required")
	// ErrServerAlreadyRunning is returned by Start on a running server.
	ErrServerAlreadyRunning = errors.New("httpserver: server is already running")
	// ErrFailedLoadCert wraps certificate loading failures.
	ErrFailedLoadCert = errors.New("httpserver: failed to load certificate")
)
