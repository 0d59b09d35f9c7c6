package middleware

import (
	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/router/inbuilt"
)

// LogRequests logs every request once its handler returns. Responses completed
// asynchronously are logged as pending, the transport records their final code.
func LogRequests(logger hclog.Logger) inbuilt.Middleware {
	return func(next inbuilt.Handler, request *http.Request, response *http.Response) {
		next(request, response)

		args := []any{
			"id", request.ID,
			"method", request.Method.String(),
			"path", request.Path,
			"remote", request.RemoteAddress(),
		}

		if response.Ended() {
			args = append(args, "code", int(response.Code()))
		} else {
			args = append(args, "pending", true)
		}

		logger.Info("request", args...)
	}
}
