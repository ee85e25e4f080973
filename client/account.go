package client

// Account is the attribute bag the API returns for a user.
type Account map[string]any

// String returns the string attribute key, or "".
func (a Account) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Href returns the account's canonical resource URL.
func (a Account) Href() string {
	return a.String("href")
}

// Email returns the account email.
func (a Account) Email() string {
	return a.String("email")
}

// Username returns the account username.
func (a Account) Username() string {
	return a.String("username")
}

// Status returns the account status attribute, normalized.
func (a Account) Status() AccountStatus {
	return ParseAccountStatus(a.String("status"))
}

// decodeAccount accepts both a bare account object and one wrapped as
// {"account": {...}}.
func decodeAccount(resp *Response) (Account, error) {
	var body map[string]any
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if inner, ok := body["account"].(map[string]any); ok {
		return Account(inner), nil
	}
	return Account(body), nil
}
