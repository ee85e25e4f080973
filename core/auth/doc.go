// Package auth performs the login and logout calls against the hosted identity
// API and keeps the session cache and the event bus consistent with them.
//
// A successful login refreshes the current user before the Authenticated event
// is emitted, so listeners always observe an authenticated session:
//
//	svc := auth.NewService(apiClient, users)
//	resp, err := svc.Authenticate(ctx, auth.Credentials{Username: "a", Password: "b"})
//	if err != nil {
//		// AuthenticationFailure was emitted with the same response
//	}
//
// EndSession always emits SessionEnd, even when the logout request fails, so
// the local session is never left authenticated after the user asked to leave.
package auth
