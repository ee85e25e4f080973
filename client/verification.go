package client

import (
	"context"
	"net/http"
	"net/url"
)

// VerifyEmail consumes an email verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string, opts ...RequestOption) (*Response, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.EmailVerification,
		query:  url.Values{"sptoken": {token}},
		opts:   opts,
	})
}

// ResendVerificationEmail asks the API to send a new verification email to
// the account identified by login (email or username).
func (c *Client) ResendVerificationEmail(ctx context.Context, login string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.EmailVerification,
		body:   map[string]any{"login": login},
		opts:   opts,
	})
}
