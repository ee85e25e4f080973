package guard

import (
	"context"
	"sync/atomic"
)

// Transition is a navigation attempt reported by a Router before it happens.
type Transition struct {
	To     string
	Params Params

	prevented atomic.Bool
}

// NewTransition creates a transition towards route to.
func NewTransition(to string, params Params) *Transition {
	return &Transition{To: to, Params: params}
}

// Prevent cancels the navigation.
func (t *Transition) Prevent() {
	t.prevented.Store(true)
}

// Prevented reports whether a listener cancelled the navigation.
func (t *Transition) Prevented() bool {
	return t.prevented.Load()
}

// Router is the navigation host the guard plugs into.
type Router interface {
	// OnTransitionStart registers fn to run synchronously before every
	// navigation and returns a function that removes it.
	OnTransitionStart(fn func(ctx context.Context, t *Transition)) (unsubscribe func())
	// Go starts a navigation to route. The new transition is reported to
	// OnTransitionStart listeners like any other.
	Go(ctx context.Context, route string, params Params) error
}

// Target is a remembered navigation destination.
type Target struct {
	Route  string `json:"route"`
	Params Params `json:"params,omitempty"`
}

// Denial is the payload of StateChangeUnauthenticated and
// StateChangeUnauthorized events.
type Denial struct {
	Route  string `json:"route"`
	Params Params `json:"params,omitempty"`
	// Err is the fetch failure for unauthenticated denials.
	Err error `json:"-"`
}
