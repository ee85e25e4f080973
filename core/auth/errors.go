package auth

import "errors"

var (
	// ErrSessionNotEstablished is returned when the API accepted the credentials
	// but the current user could not be loaded afterwards.
	ErrSessionNotEstablished = errors.New("auth: session not established after login")
	// ErrLogoutFailed wraps a failed logout request. The local session is ended regardless.
	ErrLogoutFailed = errors.New("auth: logout request failed")
)
