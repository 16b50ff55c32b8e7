package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/threadly-dev/threadly/shared/middleware/metrics"
	"github.com/threadly-dev/threadly/shared/middleware/ratelimiter"
	"github.com/threadly-dev/threadly/shared/utils"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				metrics.RateLimitHits.WithLabelValues(r.Method).Inc()
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetCallerKey keys limits by the verified external identity.
// Possible only after NeedAuth.
func GetCallerKey(r *http.Request) (string, error) {
	identity := GetIdentityFromContext(r)
	if identity == nil {
		return "", errors.New("can't get caller identity")
	}
	return "user_" + identity.ExternalId, nil
}

// GetIP extracts the client IP from RemoteAddr.
// Proxy headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}
