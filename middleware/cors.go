package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// Skip bypasses CORS handling for specific requests
	Skip func(r *http.Request) bool
	// AllowOrigins lists allowed origins. Empty or "*" allows all origins
	AllowOrigins []string
	// AllowMethods lists allowed methods (default: GET, HEAD, PUT, PATCH, POST, DELETE)
	AllowMethods []string
	// AllowHeaders lists allowed request headers (default: common headers)
	AllowHeaders []string
	// ExposeHeaders lists headers readable by the browser
	ExposeHeaders []string
	// AllowCredentials lets browsers send session cookies. Never combined
	// with a wildcard origin.
	AllowCredentials bool
	// MaxAge caches preflight answers, in seconds
	MaxAge int
	// AllowOriginFunc validates origins and takes precedence over AllowOrigins
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS allows cross-origin requests from any origin without credentials.
func CORS() func(http.Handler) http.Handler {
	return CORSWithConfig(CORSConfig{})
}

// CORSWithConfig answers preflight requests and decorates actual requests
// with the Access-Control-* headers. A preflight from a disallowed origin or
// for a disallowed method gets 403.
//
//	r.Use(middleware.CORSWithConfig(middleware.CORSConfig{
//		AllowOrigins:     []string{"https://app.example.com"},
//		AllowCredentials: true,
//		MaxAge:           600,
//	}))
func CORSWithConfig(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")

	origins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		origins[o] = true
	}

	allowOrigin := func(origin string) (string, bool) {
		switch {
		case cfg.AllowOriginFunc != nil:
			return cfg.AllowOriginFunc(origin)
		case len(cfg.AllowOrigins) == 0 || origins["*"]:
			return "*", true
		case origins[origin]:
			return origin, true
		}
		return "", false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			allowedOrigin, allowed := allowOrigin(r.Header.Get("Origin"))
			headers := w.Header()

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				headers.Add("Vary", "Origin")
				headers.Add("Vary", "Access-Control-Request-Method")
				headers.Add("Vary", "Access-Control-Request-Headers")

				method := r.Header.Get("Access-Control-Request-Method")
				if !allowed || !slices.Contains(cfg.AllowMethods, method) {
					w.WriteHeader(http.StatusForbidden)
					return
				}

				headers.Set("Access-Control-Allow-Origin", allowedOrigin)
				headers.Set("Access-Control-Allow-Methods", allowMethods)
				if r.Header.Get("Access-Control-Request-Headers") != "" {
					headers.Set("Access-Control-Allow-Headers", allowHeaders)
				}
				if cfg.AllowCredentials && allowedOrigin != "*" {
					headers.Set("Access-Control-Allow-Credentials", "true")
				}
				if cfg.MaxAge > 0 {
					headers.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			headers.Add("Vary", "Origin")
			if allowed {
				headers.Set("Access-Control-Allow-Origin", allowedOrigin)
				if cfg.AllowCredentials && allowedOrigin != "*" {
					headers.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposeHeaders != "" {
					headers.Set("Access-Control-Expose-Headers", exposeHeaders)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AllowOriginSubdomain allows domain and all its subdomains, with or without
// a port. domain is given without scheme, e.g. "example.com".
func AllowOriginSubdomain(domain string) func(origin string) (string, bool) {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(domain, "*."), "."))
	suffix := "." + domain

	return func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return "", false
		}
		host := strings.ToLower(u.Hostname())
		if host == domain || strings.HasSuffix(host, suffix) {
			return origin, true
		}
		return "", false
	}
}
