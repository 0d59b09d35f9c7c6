package middleware

import (
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/router/inbuilt"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 Too Many Requests once the rate is exceeded. The
// limiter is shared by all the requests going through the middleware.
func RateLimit(limit rate.Limit, burst int) inbuilt.Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next inbuilt.Handler, request *http.Request, response *http.Response) {
		if !limiter.Allow() {
			response.Error(status.ErrTooManyRequests)
			return
		}

		next(request, response)
	}
}
