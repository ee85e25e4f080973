package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/stormpath/core/handler"
	"github.com/dmitrymomot/stormpath/core/response"
	"github.com/dmitrymomot/stormpath/pkg/clientip"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Rate is the sustained number of requests per second allowed per key (default: 1)
	Rate rate.Limit
	// Burst is the number of requests allowed at once (default: 5)
	Burst int
	// KeyFunc extracts the limiting key from requests (default: clientip.RemoteIP)
	KeyFunc func(r *http.Request) string
	// IdleTTL drops limiters for keys not seen for this long (default: 10m)
	IdleTTL time.Duration
	// ErrorHandler renders rejected requests (default: JSON 429)
	ErrorHandler handler.ErrorHandler
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	swept    time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > s.idleTTL {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > s.idleTTL {
				delete(s.visitors, k)
			}
		}
		s.swept = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimit throttles credential endpoints per client. Rejected requests get
// 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientip.RemoteIP
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = response.JSONErrorHandler
	}

	set := &limiterSet{
		visitors: make(map[string]*visitor),
		rate:     cfg.Rate,
		burst:    cfg.Burst,
		idleTTL:  cfg.IdleTTL,
		swept:    time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			res := set.get(cfg.KeyFunc(r), now).ReserveN(now, 1)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				retry := int(math.Ceil(delay.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				cfg.ErrorHandler(w, r, response.ErrTooManyRequests.
					WithDetails(map[string]any{"retry_after": retry}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
