package middleware

import (
	"fmt"

	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/router/inbuilt"
)

var _ inbuilt.Middleware = Recover

// Recover catches panics raised by the handler and responds with 500 Internal Server Error
// instead. A response whose status line was already written is aborted, and a completed
// one is left as it is.
func Recover(next inbuilt.Handler, request *http.Request, response *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			response.Fail(fmt.Errorf("handler panicked: %v", r))
		}
	}()

	next(request, response)
}
