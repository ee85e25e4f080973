package handler_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/stormpath/core/handler"
)

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("renders response", func(t *testing.T) {
		t.Parallel()

		h := handler.Handle(func(*http.Request) handler.Response {
			return func(w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusAccepted)
				_, err := io.WriteString(w, "ok")
				return err
			}
		})

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("default error handler", func(t *testing.T) {
		t.Parallel()

		h := handler.Handle(func(*http.Request) handler.Response {
			return handler.Error(errors.New("boom"))
		})

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "boom")
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		var got error
		h := handler.Handle(func(*http.Request) handler.Response {
			return handler.Error(errors.New("boom"))
		}, handler.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.EqualError(t, got, "boom")
	})

	t.Run("nil response writes nothing", func(t *testing.T) {
		t.Parallel()

		h := handler.Handle(func(*http.Request) handler.Response { return nil })
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}
