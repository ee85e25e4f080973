// Package stormpath is a client-side session layer for a Stormpath-style
// identity API. It keeps one cached view of the current user, exposes the
// login, logout, registration and password flows, and guards named routes
// by authentication state and group membership.
//
// # Package Organization
//
//   - client: HTTP client for the identity API (/me, /oauth/token, /logout,
//     /register, /forgot, /change, /verify)
//   - core/user: session cache with single-flight fetches of the current user
//   - core/auth: login, social login and logout actions that keep the cache
//     and the event bus consistent
//   - core/guard: route access rules, deferred navigation and the
//     post-login redirect
//   - core/event: synchronous event bus shared by the components
//   - social: OAuth2 providers that yield an access token for social login
//   - server: HTTP server that proxies the identity flows for browsers
//   - middleware: net/http middleware, including the current user resolver
//     and group guards
//
// # Usage
//
//	cfg, err := stormpath.LoadConfig()
//	if err != nil {
//		return err
//	}
//	sdk, err := stormpath.New(cfg,
//		stormpath.WithLogger(log),
//		stormpath.WithRoutes(
//			guard.Route{Name: "profile", Access: guard.Access{Authenticate: true}},
//			guard.Route{Name: "admin", Access: guard.Access{Authorize: &guard.Authorization{Group: "admins"}}},
//		),
//	)
//	if err != nil {
//		return err
//	}
//	defer sdk.Close()
//
//	sdk.Guard.Start(router)
//
//	if _, err := sdk.Auth.Authenticate(ctx, auth.Credentials{Username: u, Password: p}); err != nil {
//		return err
//	}
//
// # Events
//
// Every component emits on SDK.Bus. Names default to the values of
// event.DefaultNames and can be renamed through Config.Events or the
// STORMPATH_EVENT_* variables. Subscribe with a typed payload:
//
//	event.On(sdk.Bus, event.DefaultNames().CurrentUser, func(ctx context.Context, u *user.User) {
//		log.Info("signed in", "email", u.Email())
//	})
//
// # Configuration
//
// LoadConfig reads STORMPATH_BASE_URL, STORMPATH_FORM_CONTENT_TYPE, the
// endpoint paths (STORMPATH_CURRENT_USER_URI, STORMPATH_AUTHENTICATION_ENDPOINT
// and the rest) and the guard settings from the environment and an optional
// .env file.
package stormpath
