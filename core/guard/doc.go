// Package guard intercepts navigation and enforces per-route authentication
// and group rules against the session cache.
//
// Routes declare their requirements once, at registration time:
//
//	routes := guard.NewRegistry()
//	routes.MustRegister(
//		guard.Route{Name: "secrets", Access: guard.Access{Authenticate: true}},
//		guard.Route{Name: "admin", Access: guard.Access{Authorize: &guard.Authorization{Group: "admins"}}},
//		guard.Route{Name: "profile", Access: guard.Access{WaitForUser: true}},
//	)
//
// The guard hooks into any router that reports transition starts and can
// navigate programmatically:
//
//	g := guard.New(users, routes, guard.Config{LoginRoute: "login", DefaultPostLoginRoute: "home"})
//	g.Start(router)
//	defer g.Stop()
//
// When the session state is already known the decision is made inline. When
// it is not, the transition is prevented, the current user is fetched in the
// background and the guard navigates once the answer arrives. Denials never
// surface as errors: they are broadcast as StateChangeUnauthenticated or
// StateChangeUnauthorized events carrying a Denial.
//
// A denied target is remembered and, after the next successful login, the
// guard navigates there instead of the default post-login route.
package guard
