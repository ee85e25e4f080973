// Package clientip extracts the client IP address from HTTP requests.
//
// GetIP checks proxy headers in priority order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost address)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Headers are only trustworthy behind a proxy that overwrites them. Use
// RemoteIP for directly exposed servers.
//
//	limiter := middleware.RateLimit(middleware.RateLimitConfig{
//		KeyFunc: clientip.GetIP,
//	})
//
// Addresses are validated and normalized with net.ParseIP; 0.0.0.0 and
// malformed values are skipped.
package clientip
