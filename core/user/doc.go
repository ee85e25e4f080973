// Package user owns the "who is logged in" state of a client session.
//
// Service is a cache with three states: StateUnknown until the first fetch
// completes, StateAuthenticated with a *User, or StateUnauthenticated.
// Get returns a future for the current user:
//
//   - Authenticated: an already-resolved future, no network call.
//   - Unknown or Unauthenticated: one request to the current-user endpoint.
//     Concurrent callers share that request and its outcome.
//
// A completed fetch updates the state before any event is emitted: a
// CurrentUser event on success, NotLoggedIn when the API answers 401. The
// in-flight marker is cleared first, so calling Get from an event handler
// never joins the fetch that triggered it.
//
// Refresh always starts a new request. A fetch overtaken by Refresh no longer
// updates the state and its callers get the newer answer.
//
// A SessionEnd event on the bus forces StateUnauthenticated without a network
// call; the next Get fetches again and fetches still in flight are rejected
// with ErrSessionEnded.
//
//	svc := user.NewService(apiClient, user.WithBus(bus))
//	u, err := svc.Get(ctx).Await()
//	if err != nil {
//		// not logged in, or the API failed
//	}
//	if u.InGroup("admins") { ... }
package user
