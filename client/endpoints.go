package client

// Endpoints are the API paths, relative to the base URL.
type Endpoints struct {
	CurrentUser       string `env:"CURRENT_USER_URI" envDefault:"/me"`
	Authentication    string `env:"AUTHENTICATION_ENDPOINT" envDefault:"/oauth/token"`
	DestroySession    string `env:"DESTROY_SESSION_ENDPOINT" envDefault:"/logout"`
	UserCollection    string `env:"USER_COLLECTION_URI" envDefault:"/register"`
	ForgotPassword    string `env:"FORGOT_PASSWORD_ENDPOINT" envDefault:"/forgot"`
	ChangePassword    string `env:"CHANGE_PASSWORD_ENDPOINT" envDefault:"/change"`
	EmailVerification string `env:"EMAIL_VERIFICATION_ENDPOINT" envDefault:"/verify"`
}

// DefaultEndpoints returns the conventional endpoint paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		CurrentUser:       "/me",
		Authentication:    "/oauth/token",
		DestroySession:    "/logout",
		UserCollection:    "/register",
		ForgotPassword:    "/forgot",
		ChangePassword:    "/change",
		EmailVerification: "/verify",
	}
}

// WithDefaults fills empty paths from DefaultEndpoints.
func (e Endpoints) WithDefaults() Endpoints {
	d := DefaultEndpoints()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&e.CurrentUser, d.CurrentUser)
	fill(&e.Authentication, d.Authentication)
	fill(&e.DestroySession, d.DestroySession)
	fill(&e.UserCollection, d.UserCollection)
	fill(&e.ForgotPassword, d.ForgotPassword)
	fill(&e.ChangePassword, d.ChangePassword)
	fill(&e.EmailVerification, d.EmailVerification)
	return e
}
