package response

import (
	"net/http"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/handler"
)

// SetCookies copies the cookies the identity API set onto w.
func SetCookies(w http.ResponseWriter, resp *client.Response) {
	if resp == nil {
		return
	}
	for _, ck := range resp.Cookies {
		http.SetCookie(w, ck)
	}
}

// Forward relays an identity API answer: cookies, content type, status and body.
func Forward(resp *client.Response) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		SetCookies(w, resp)
		if ct := resp.Header.Get("Content-Type"); ct != "" && len(resp.Body) > 0 {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		if len(resp.Body) == 0 || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		_, err := w.Write(resp.Body)
		return err
	}
}
