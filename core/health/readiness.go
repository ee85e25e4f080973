package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/stormpath/core/handler"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/response"
)

// Readiness answers "READY" when every check passes and 503 otherwise.
func Readiness(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	log = logger.Default(log)

	return handler.Handle(func(r *http.Request) handler.Response {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component("health"),
					logger.Error(err),
				)
				return handler.Error(response.ErrServiceUnavailable)
			}
		}
		return response.String("READY")
	}, handler.WithErrorHandler(response.ErrorHandler))
}
