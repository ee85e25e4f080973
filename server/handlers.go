package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/handler"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/response"
	"github.com/dmitrymomot/stormpath/middleware"
	"github.com/dmitrymomot/stormpath/social"
)

const stateCookie = "oauth_state"

func (s *Server) me(r *http.Request) handler.Response {
	acct, err := s.currentAccount(r)
	if err != nil {
		if errors.Is(err, middleware.ErrNoSession) {
			return handler.Error(response.ErrUnauthorized)
		}
		return handler.Error(err)
	}
	return response.JSON(acct)
}

func (s *Server) login(r *http.Request) handler.Response {
	fields, err := readFields(r)
	if err != nil {
		return handler.Error(err)
	}

	username := fields.get("username")
	if username == "" {
		username = fields.get("login")
	}

	resp, err := s.api.Login(r.Context(), username, fields.get("password"), s.apiOptions(r)...)
	if err != nil {
		s.metrics.Logins.WithLabelValues("password", "failure").Inc()
		s.logger.DebugContext(r.Context(), "login rejected",
			logger.Component("server"),
			logger.StatusCode(client.StatusCode(err)),
		)
		return handler.Error(err)
	}
	s.metrics.Logins.WithLabelValues("password", "success").Inc()

	// The previous session, if any, is replaced
	s.forgetSession(r)

	if wantsHTML(r) {
		return redirectWithCookies(resp, localTarget(fields.get("next"), s.cfg.PostLoginRedirect))
	}
	return response.Forward(resp)
}

func (s *Server) logout(r *http.Request) handler.Response {
	resp, err := s.api.Logout(r.Context(), s.apiOptions(r)...)
	if err != nil {
		// The local session ends regardless of the API answer
		s.apiFailed("logout", err)
		s.logger.WarnContext(r.Context(), "logout request failed",
			logger.Component("server"),
			logger.Error(err),
		)
	}
	s.forgetSession(r)

	return func(w http.ResponseWriter, req *http.Request) error {
		if err == nil {
			response.SetCookies(w, resp)
		}
		s.expireSessionCookies(w, resp)

		if wantsHTML(req) {
			http.Redirect(w, req, s.cfg.PostLogoutRedirect, http.StatusFound)
			return nil
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

func (s *Server) register(r *http.Request) handler.Response {
	fields, err := readFields(r)
	if err != nil {
		return handler.Error(err)
	}
	if fields.get("email") == "" || fields.get("password") == "" {
		return handler.Error(response.ErrUnprocessableEntity.WithMessage("email and password are required"))
	}

	reg, err := s.api.Register(r.Context(), fields, s.apiOptions(r)...)
	if err != nil {
		s.apiFailed("register", err)
		return handler.Error(err)
	}

	status := http.StatusCreated
	if reg.Status == client.StatusUnverified {
		status = http.StatusAccepted
	}
	return withCookies(reg.Response, response.JSONWithStatus(map[string]any{
		"account": reg.Account,
		"status":  reg.Status,
	}, status))
}

func (s *Server) forgotPassword(r *http.Request) handler.Response {
	fields, err := readFields(r)
	if err != nil {
		return handler.Error(err)
	}
	email := fields.get("email")
	if email == "" {
		return handler.Error(response.ErrUnprocessableEntity.WithMessage("email is required"))
	}

	resp, err := s.api.ForgotPassword(r.Context(), email, s.apiOptions(r)...)
	if err != nil {
		s.apiFailed("forgot_password", err)
		return handler.Error(err)
	}
	return response.Forward(resp)
}

func (s *Server) verifyResetToken(r *http.Request) handler.Response {
	resp, err := s.api.VerifyPasswordResetToken(r.Context(), r.URL.Query().Get("sptoken"), s.apiOptions(r)...)
	if err != nil {
		return handler.Error(err)
	}
	return response.Forward(resp)
}

func (s *Server) resetPassword(r *http.Request) handler.Response {
	fields, err := readFields(r)
	if err != nil {
		return handler.Error(err)
	}
	token := fields.get("sptoken")
	if token == "" {
		token = r.URL.Query().Get("sptoken")
	}
	if fields.get("password") == "" {
		return handler.Error(response.ErrUnprocessableEntity.WithMessage("password is required"))
	}

	resp, err := s.api.ResetPassword(r.Context(), token, fields.get("password"), s.apiOptions(r)...)
	if err != nil {
		s.apiFailed("reset_password", err)
		return handler.Error(err)
	}
	return response.Forward(resp)
}

func (s *Server) verifyEmail(r *http.Request) handler.Response {
	resp, err := s.api.VerifyEmail(r.Context(), r.URL.Query().Get("sptoken"), s.apiOptions(r)...)
	if err != nil {
		return handler.Error(err)
	}
	if wantsHTML(r) {
		return redirectWithCookies(resp, s.cfg.PostLoginRedirect)
	}
	return response.Forward(resp)
}

func (s *Server) resendVerification(r *http.Request) handler.Response {
	fields, err := readFields(r)
	if err != nil {
		return handler.Error(err)
	}
	login := fields.get("login")
	if login == "" {
		login = fields.get("email")
	}
	if login == "" {
		return handler.Error(response.ErrUnprocessableEntity.WithMessage("login is required"))
	}

	resp, err := s.api.ResendVerificationEmail(r.Context(), login, s.apiOptions(r)...)
	if err != nil {
		s.apiFailed("resend_verification", err)
		return handler.Error(err)
	}
	return response.Forward(resp)
}

func (s *Server) googleLogin(r *http.Request) handler.Response {
	if s.google == nil {
		return handler.Error(ErrSocialDisabled)
	}

	state := uuid.NewString()
	return func(w http.ResponseWriter, req *http.Request) error {
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/callbacks/",
			MaxAge:   600,
			HttpOnly: true,
			Secure:   req.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, req, s.google.AuthCodeURL(state), http.StatusFound)
		return nil
	}
}

func (s *Server) googleCallback(r *http.Request) handler.Response {
	if s.google == nil {
		return handler.Error(ErrSocialDisabled)
	}

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		s.metrics.Logins.WithLabelValues(social.GoogleProviderID, "failure").Inc()
		return handler.Error(response.ErrUnauthorized.WithMessage("google login was cancelled: " + reason))
	}
	ck, err := r.Cookie(stateCookie)
	if err != nil || ck.Value == "" || ck.Value != q.Get("state") {
		return handler.Error(response.ErrBadRequest.WithError(ErrInvalidState))
	}

	tok, err := s.google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		s.metrics.Logins.WithLabelValues(social.GoogleProviderID, "failure").Inc()
		if errors.Is(err, social.ErrMissingCode) {
			return handler.Error(response.ErrBadRequest.WithError(err))
		}
		return handler.Error(response.ErrBadGateway.WithError(err))
	}

	resp, err := s.api.SocialLogin(r.Context(), s.google.ID(), tok.AccessToken, s.apiOptions(r)...)
	if err != nil {
		s.metrics.Logins.WithLabelValues(social.GoogleProviderID, "failure").Inc()
		return handler.Error(err)
	}
	s.metrics.Logins.WithLabelValues(social.GoogleProviderID, "success").Inc()
	s.forgetSession(r)

	return func(w http.ResponseWriter, req *http.Request) error {
		http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/callbacks/", MaxAge: -1})
		return redirectWithCookies(resp, s.cfg.PostLoginRedirect)(w, req)
	}
}

// renderError maps handler errors to JSON error bodies.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr response.HTTPError
	var apiErr *client.Error
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &httpErr), errors.As(err, &apiErr):
	case errors.As(err, &maxErr):
		err = response.ErrRequestEntityTooLarge
	case errors.Is(err, client.ErrMissingCredentials), errors.Is(err, client.ErrMissingToken):
		err = response.ErrUnprocessableEntity.WithMessage(err.Error())
	case errors.Is(err, ErrSocialDisabled):
		err = response.ErrNotFound.WithMessage(err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "identity api unreachable",
			logger.Component("server"),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		err = response.ErrBadGateway
	}
	response.JSONErrorHandler(w, r, err)
}

func (s *Server) apiFailed(operation string, err error) {
	status := client.StatusCode(err)
	s.metrics.APIErrors.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// expireSessionCookies clears the session cookies the API did not clear itself.
func (s *Server) expireSessionCookies(w http.ResponseWriter, resp *client.Response) {
	set := make(map[string]bool)
	if resp != nil {
		for _, ck := range resp.Cookies {
			set[ck.Name] = true
		}
	}
	for _, name := range s.cfg.SessionCookies {
		if set[name] {
			continue
		}
		http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true})
	}
}

type fields map[string]any

func (f fields) get(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// readFields decodes a JSON or form body into a flat field map.
func readFields(r *http.Request) (fields, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == client.ContentTypeJSON {
		out := make(fields)
		if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, err
			}
			return nil, response.ErrBadRequest.WithMessage("malformed JSON body")
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, response.ErrBadRequest.WithError(err)
	}
	out := make(fields, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// localTarget returns next when it is a local absolute path, fallback otherwise.
func localTarget(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return fallback
}

func withCookies(resp *client.Response, next handler.Response) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		response.SetCookies(w, resp)
		return next(w, r)
	}
}

func redirectWithCookies(resp *client.Response, target string) handler.Response {
	return withCookies(resp, response.Redirect(target, http.StatusFound))
}
