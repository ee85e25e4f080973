package user

import (
	"maps"
	"regexp"
	"slices"

	"github.com/dmitrymomot/stormpath/client"
)

// User is the account entity returned by the API plus group membership tests.
// A User is immutable; the cache replaces it wholesale on every fetch.
type User struct {
	attrs  client.Account
	groups []string
}

// New builds a User from an account attribute bag. Group names are read from
// the embedded "groups" attribute, either a list or a collection with "items".
func New(acct client.Account) *User {
	attrs := maps.Clone(acct)
	if attrs == nil {
		attrs = client.Account{}
	}
	return &User{attrs: attrs, groups: groupNames(attrs["groups"])}
}

func groupNames(v any) []string {
	var items []any
	switch g := v.(type) {
	case []any:
		items = g
	case []string:
		return slices.Clone(g)
	case map[string]any:
		items, _ = g["items"].([]any)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		switch g := it.(type) {
		case string:
			names = append(names, g)
		case map[string]any:
			if name, ok := g["name"].(string); ok && name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// Get returns a single attribute.
func (u *User) Get(key string) any {
	return u.attrs[key]
}

// Attributes returns a copy of the attribute bag.
func (u *User) Attributes() client.Account {
	return maps.Clone(u.attrs)
}

// Href returns the account resource URL.
func (u *User) Href() string {
	return u.attrs.Href()
}

// Email returns the account email.
func (u *User) Email() string {
	return u.attrs.Email()
}

// Username returns the account username.
func (u *User) Username() string {
	return u.attrs.Username()
}

// Groups returns the names of the groups the user belongs to.
func (u *User) Groups() []string {
	return slices.Clone(u.groups)
}

// InGroup reports whether the user belongs to the named group.
func (u *User) InGroup(name string) bool {
	return slices.Contains(u.groups, name)
}

// MatchesGroupExpression reports whether any group name matches re.
func (u *User) MatchesGroupExpression(re *regexp.Regexp) bool {
	if re == nil {
		return false
	}
	return slices.ContainsFunc(u.groups, re.MatchString)
}
