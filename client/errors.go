package client

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidBaseURL is returned by New when the base URL is empty or not absolute.
	ErrInvalidBaseURL = errors.New("client: base URL must be an absolute http(s) URL")
	// ErrMissingToken is returned when a token-consuming call receives an empty token.
	ErrMissingToken = errors.New("client: token is required")
	// ErrMissingCredentials is returned when login is attempted without a username or password.
	ErrMissingCredentials = errors.New("client: username and password are required")
	// ErrUnexpectedStatus is wrapped when the API answers with a status the call does not expect.
	ErrUnexpectedStatus = errors.New("client: unexpected response status")
)

// Error is a non-2xx answer from the hosted API.
type Error struct {
	Response *Response
	// Message is the API's errorMessage (or message) field, falling back to the status text.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status of the failed response.
func (e *Error) StatusCode() int {
	if e == nil || e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode()
	}
	return 0
}

// IsUnauthorized reports whether err is an authentication-required answer.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// ResponseOf returns the raw response carried by err, if any.
func ResponseOf(err error) *Response {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Response
	}
	return nil
}
