package middleware

import (
	"net"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/showcase-api/shared/ratelimit"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

// RateLimit rejects callers over budget with 429. Callers are keyed by remote IP, so chi's RealIP
// should run first behind a proxy. A limiter backend error lets the request through.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				response.Message(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
