package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/web/response"
)

// Rate limit response headers.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Middleware rejects clients that ran out of tokens with 429. Clients
// are keyed by remote IP.
func Middleware(tb *TokenBucket, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			info := tb.Allow(key)

			h := w.Header()
			h.Set(HeaderLimit, strconv.Itoa(info.Limit))
			h.Set(HeaderRemaining, strconv.Itoa(info.Remaining))
			h.Set(HeaderReset, strconv.FormatInt(info.ResetAt.Unix(), 10))

			if !info.Allowed {
				retry := max(int(time.Until(info.ResetAt).Seconds()), 1)
				h.Set("Retry-After", strconv.Itoa(retry))
				logger.Debug("rate limited", zap.String("client", key), zap.String("path", r.URL.Path))
				response.RenderError(w, response.NewHTTPError(http.StatusTooManyRequests, "Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey returns the host part of RemoteAddr.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
