package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/stormpath/core/logger"
)

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
// Rendering errors are handled by the handler's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// Func produces the response for a request.
type Func func(r *http.Request) Response

// ErrorHandler writes the response for a failed handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// Option configures Handle.
type Option func(*config)

// WithErrorHandler sets how errors returned by a Response are rendered.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithLogger sets the logger used for failed responses.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger.Default(l)
	}
}

// Handle adapts fn to net/http. A nil Response renders nothing.
func Handle(fn Func, opts ...Option) http.HandlerFunc {
	cfg := config{
		errorHandler: plainError,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		if resp == nil {
			return
		}
		if err := resp(w, r); err != nil {
			cfg.logger.DebugContext(r.Context(), "handler returned error",
				logger.Component("handler"),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Error(err),
			)
			cfg.errorHandler(w, r, err)
		}
	}
}

// Error returns a Response that fails with err.
func Error(err error) Response {
	return func(http.ResponseWriter, *http.Request) error {
		return err
	}
}

func plainError(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
