package middleware

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/stormpath/core/response"
)

// DefaultBodyLimit caps credential and registration payloads.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit rejects requests whose declared body exceeds maxSize and caps
// reads of the rest. Zero or negative maxSize means DefaultBodyLimit.
func BodyLimit(maxSize int64) func(http.Handler) http.Handler {
	if maxSize <= 0 {
		maxSize = DefaultBodyLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxSize {
				response.JSONErrorHandler(w, r, response.ErrRequestEntityTooLarge.
					WithMessage(fmt.Sprintf("request body too large, limit is %d bytes", maxSize)).
					WithDetails(map[string]any{"limit": maxSize, "size": r.ContentLength}))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
