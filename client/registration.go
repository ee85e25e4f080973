package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Registration is the outcome of creating an account.
type Registration struct {
	Account Account
	// Status is StatusEnabled for 201 answers and StatusUnverified for 202
	// (the account awaits email verification).
	Status   AccountStatus
	Response *Response
}

// Register creates an account from the given fields (email, password,
// givenName, surname, customData, ...).
func (c *Client) Register(ctx context.Context, fields map[string]any, opts ...RequestOption) (*Registration, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.UserCollection,
		body:   fields,
		opts:   opts,
	})
	if err != nil {
		return nil, err
	}

	reg := &Registration{Response: resp}
	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		reg.Status = StatusEnabled
	case http.StatusAccepted:
		reg.Status = StatusUnverified
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	acct, err := decodeAccount(resp)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("client: decode registration: %w", err)
	}
	reg.Account = acct
	if st := acct.Status(); st != StatusUnknown {
		reg.Status = st
	}
	return reg, nil
}
