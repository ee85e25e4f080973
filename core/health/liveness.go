package health

import (
	"net/http"

	"github.com/dmitrymomot/stormpath/core/handler"
	"github.com/dmitrymomot/stormpath/core/response"
)

// Liveness answers "ALIVE" while the process runs. No dependency checks.
func Liveness() http.HandlerFunc {
	return handler.Handle(func(*http.Request) handler.Response {
		return response.String("ALIVE")
	})
}
