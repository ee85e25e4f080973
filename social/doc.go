// Package social exchanges third-party OAuth 2.0 authorization codes for
// provider access tokens, which the identity API then turns into a session.
//
//	google, err := social.Google(social.Config{
//		ClientID:     "...",
//		ClientSecret: "...",
//		RedirectURL:  "https://app.example.com/callbacks/google",
//	})
//	http.Redirect(w, r, google.AuthCodeURL(state), http.StatusFound)
//
//	// in the callback handler
//	tok, err := google.Exchange(ctx, r.URL.Query().Get("code"))
//	resp, err := apiClient.SocialLogin(ctx, google.ID(), tok.AccessToken)
package social
