package guard

import (
	"fmt"
	"maps"
	"sync"
)

// Authorization restricts a route to members of a group.
type Authorization struct {
	Group string `json:"group"`
}

// Access is the per-route access descriptor.
type Access struct {
	Authenticate bool           `json:"authenticate,omitempty"`
	Authorize    *Authorization `json:"authorize,omitempty"`
	// WaitForUser delays navigation until the session state is known,
	// without requiring a logged-in user.
	WaitForUser bool `json:"waitForUser,omitempty"`
}

// RequiresAuthentication reports whether the route needs a logged-in user.
// An authorize rule implies authentication.
func (a Access) RequiresAuthentication() bool {
	return a.Authenticate || a.Authorize != nil
}

// Validate rejects descriptor shapes the guard cannot enforce.
func (a Access) Validate() error {
	if a.Authorize != nil && a.Authorize.Group == "" {
		return ErrUnsupportedAuthorization
	}
	return nil
}

// Route is a named navigation target with its access rules.
type Route struct {
	Name   string `json:"name"`
	Access Access `json:"access"`
}

// Registry holds validated route descriptors. Unregistered routes are public.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]Route
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]Route)}
}

// Register validates and adds routes. Nothing is added if any route is invalid.
func (r *Registry) Register(routes ...Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		if rt.Name == "" {
			return ErrEmptyRouteName
		}
		if _, ok := r.routes[rt.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRoute, rt.Name)
		}
		if _, ok := seen[rt.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRoute, rt.Name)
		}
		if err := rt.Access.Validate(); err != nil {
			return fmt.Errorf("route %s: %w", rt.Name, err)
		}
		seen[rt.Name] = struct{}{}
	}

	for _, rt := range routes {
		r.routes[rt.Name] = rt
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(routes ...Route) {
	if err := r.Register(routes...); err != nil {
		panic(err)
	}
}

// Lookup returns the route registered under name. Unknown names yield a
// public route with that name.
func (r *Registry) Lookup(name string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[name]
	if !ok {
		return Route{Name: name}, false
	}
	return rt, true
}

// Params are the navigation parameters of a transition.
type Params map[string]string

// Clone returns a copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}
