package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/stormpath/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.10:5000", want: "192.0.2.10"},
		{name: "remote addr without port", remote: "192.0.2.10", want: "192.0.2.10"},
		{
			name:    "cloudflare wins over forwarded for",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Forwarded-For": "203.0.113.5"},
			remote:  "10.0.0.1:80",
			want:    "198.51.100.1",
		},
		{
			name:    "leftmost forwarded for",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.2, 10.0.0.3"},
			remote:  "10.0.0.1:80",
			want:    "203.0.113.5",
		},
		{
			name:    "invalid header skipped",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "203.0.113.9"},
			remote:  "10.0.0.1:80",
			want:    "203.0.113.9",
		},
		{
			name:    "unspecified address skipped",
			headers: map[string]string{"X-Real-IP": "0.0.0.0"},
			remote:  "10.0.0.1:80",
			want:    "10.0.0.1",
		},
		{
			name:    "ipv6 normalized",
			headers: map[string]string{"X-Real-IP": "2001:0db8:0000::1"},
			remote:  "10.0.0.1:80",
			want:    "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}

func TestRemoteIPIgnoresHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	assert.Equal(t, "::1", clientip.RemoteIP(req))
}
