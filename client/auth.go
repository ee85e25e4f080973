package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/stormpath/pkg/formenc"
)

// CurrentUser fetches the account bound to the current session.
// A missing session yields an *Error with status 401.
func (c *Client) CurrentUser(ctx context.Context, opts ...RequestOption) (Account, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.CurrentUser,
		opts:   opts,
	})
	if err != nil {
		return nil, err
	}

	acct, err := decodeAccount(resp)
	if err != nil {
		return nil, fmt.Errorf("client: decode current user: %w", err)
	}
	return acct, nil
}

// Login exchanges a username and password for session cookies using the
// password grant. The raw response is returned on success and carried inside
// *Error on failure.
func (c *Client) Login(ctx context.Context, username, password string, opts ...RequestOption) (*Response, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Authentication,
		query:  url.Values{"grant_type": {"password"}},
		body: formenc.Ordered{
			{Key: "username", Value: username},
			{Key: "password", Value: password},
		},
		opts: opts,
	})
}

// SocialLogin exchanges a third-party provider access token for session cookies.
func (c *Client) SocialLogin(ctx context.Context, providerID, accessToken string, opts ...RequestOption) (*Response, error) {
	if providerID == "" || accessToken == "" {
		return nil, ErrMissingToken
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Authentication,
		query:  url.Values{"grant_type": {"social"}},
		body: formenc.Ordered{
			{Key: "providerData", Value: formenc.Ordered{
				{Key: "providerId", Value: providerID},
				{Key: "accessToken", Value: accessToken},
			}},
		},
		opts: opts,
	})
}

// Logout ends the current session; the API clears the auth cookies.
func (c *Client) Logout(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   c.endpoints.DestroySession,
		opts:   opts,
	})
}
