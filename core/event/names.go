package event

// Names is the set of configurable event names emitted by the SDK. The
// comment on each field gives the payload type.
type Names struct {
	// *user.User, after every successful current-user fetch.
	CurrentUser string `env:"CURRENT_USER" envDefault:"$currentUser"`
	// error, when the API answers 401 to a current-user fetch.
	NotLoggedIn string `env:"NOT_LOGGED_IN" envDefault:"$notLoggedin"`
	// *client.Response, after a login whose session was confirmed.
	Authenticated string `env:"AUTHENTICATED" envDefault:"$authenticated"`
	// auth.Failure, after a rejected login.
	AuthenticationFailure string `env:"AUTHENTICATION_FAILURE" envDefault:"$authenticationFailure"`
	// nil, after every logout attempt.
	SessionEnd string `env:"SESSION_END" envDefault:"$sessionEnd"`
	// guard.Denial, when a route needs a session.
	StateChangeUnauthenticated string `env:"STATE_CHANGE_UNAUTHENTICATED" envDefault:"$stateChangeUnauthenticated"`
	// guard.Denial, when the user lacks the required group.
	StateChangeUnauthorized string `env:"STATE_CHANGE_UNAUTHORIZED" envDefault:"$stateChangeUnauthorized"`
}

// DefaultNames returns the conventional event names.
func DefaultNames() Names {
	return Names{
		CurrentUser:                "$currentUser",
		NotLoggedIn:                "$notLoggedin",
		Authenticated:              "$authenticated",
		AuthenticationFailure:      "$authenticationFailure",
		SessionEnd:                 "$sessionEnd",
		StateChangeUnauthenticated: "$stateChangeUnauthenticated",
		StateChangeUnauthorized:    "$stateChangeUnauthorized",
	}
}

// WithDefaults fills empty fields from DefaultNames.
func (n Names) WithDefaults() Names {
	d := DefaultNames()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&n.CurrentUser, d.CurrentUser)
	fill(&n.NotLoggedIn, d.NotLoggedIn)
	fill(&n.Authenticated, d.Authenticated)
	fill(&n.AuthenticationFailure, d.AuthenticationFailure)
	fill(&n.SessionEnd, d.SessionEnd)
	fill(&n.StateChangeUnauthenticated, d.StateChangeUnauthenticated)
	fill(&n.StateChangeUnauthorized, d.StateChangeUnauthorized)
	return n
}
