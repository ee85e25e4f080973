package client

import (
	"context"
	"net/http"
	"net/url"
)

// ForgotPassword asks the API to email a password reset token.
func (c *Client) ForgotPassword(ctx context.Context, email string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.ForgotPassword,
		body:   map[string]any{"email": email},
		opts:   opts,
	})
}

// VerifyPasswordResetToken checks that a reset token is still valid.
func (c *Client) VerifyPasswordResetToken(ctx context.Context, token string, opts ...RequestOption) (*Response, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.ChangePassword,
		query:  url.Values{"sptoken": {token}},
		opts:   opts,
	})
}

// ResetPassword consumes a reset token and sets a new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string, opts ...RequestOption) (*Response, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.ChangePassword,
		body:   map[string]any{"sptoken": token, "password": password},
		opts:   opts,
	})
}
