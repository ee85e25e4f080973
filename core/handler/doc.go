// Package handler adapts handlers that return a renderable Response, or an
// error, to net/http.
//
//	r.Get("/me", handler.Handle(func(r *http.Request) handler.Response {
//		acct, err := api.CurrentUser(r.Context())
//		if err != nil {
//			return handler.Error(err)
//		}
//		return response.JSON(acct)
//	}, handler.WithErrorHandler(response.JSONErrorHandler)))
//
// Errors returned while rendering are passed to the configured ErrorHandler,
// which defaults to a plain-text 500.
package handler
