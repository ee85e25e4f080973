package response

import (
	"net/http"
)

// ErrorHandler renders err as plain text.
func ErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := ToHTTPError(err)
	http.Error(w, httpErr.Error(), httpErr.Status)
}

// JSONErrorHandler renders err as a JSON HTTPError body.
func JSONErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := ToHTTPError(err)
	// Headers are already sent if this fails, so the error has nowhere to go
	_ = JSONWithStatus(httpErr, httpErr.Status)(w, r)
}
