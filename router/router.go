package router

import (
	"github.com/indigo-web/lantern/http"
)

// Router is the entity the transport dispatches every parsed request to.
type Router interface {
	// OnStart is called once, before the first request is served. Registration isn't
	// possible afterwards.
	OnStart() error
	// OnRequest runs exactly one handler for the request. If no handler could be found,
	// an error is returned and the response is left untouched.
	OnRequest(request *http.Request, response *http.Response) error
	// OnError renders the error as a response.
	OnError(request *http.Request, response *http.Response, err error)
}
