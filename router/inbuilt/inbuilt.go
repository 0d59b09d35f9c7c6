package inbuilt

import (
	"errors"

	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/method"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/router"
)

var _ router.Router = new(Router)

var ErrFrozen = errors.New("router is already started, routes cannot be registered anymore")

type (
	// Handler serves a request by completing the response. It may return before the response
	// is complete, as long as something (a flush callback, a goroutine) completes it later.
	Handler    = func(request *http.Request, response *http.Response)
	Middleware = func(next Handler, request *http.Request, response *http.Response)
)

// Router is a built-in implementation of router.Router interface. It matches requests
// against regular expressions, falls back to a per-method default handler and supports
// middlewares.
type Router struct {
	table       *Table
	defaults    [method.Count + 1]Handler
	middlewares []Middleware
	frozen      bool
}

// New constructs a new instance of inbuilt router
func New() *Router {
	return &Router{
		table: NewTable(),
	}
}

// Route registers a new handler. The pattern is a regular expression which must match
// the whole path. Captured groups are available via request.PathMatch. Passed middlewares
// are applied to this route only, after the global ones.
//
// Route panics if the pattern is invalid or the router has already been started.
func (r *Router) Route(m method.Method, pattern string, handler Handler, middlewares ...Middleware) *Router {
	if r.frozen {
		panic(ErrFrozen)
	}

	if err := r.table.Register(m, pattern, compose(handler, middlewares)); err != nil {
		panic(err)
	}

	return r
}

// Default sets the handler which is called if no route matched a request with the method.
// Only one default handler per method is kept, the latest wins.
func (r *Router) Default(m method.Method, handler Handler) *Router {
	if r.frozen {
		panic(ErrFrozen)
	}

	if m == method.Unknown || int(m) > method.Count {
		panic("default handler: unsupported method " + m.String())
	}

	r.defaults[m] = handler

	return r
}

// Use adds middlewares into the global list. They are applied to every route and
// default handler, no matter whether they were registered before or after the call.
func (r *Router) Use(middlewares ...Middleware) *Router {
	if r.frozen {
		panic(ErrFrozen)
	}

	r.middlewares = append(r.middlewares, middlewares...)

	return r
}

// OnStart composes the middlewares and freezes the router.
func (r *Router) OnStart() error {
	if r.frozen {
		return nil
	}

	for _, m := range method.List {
		routes := r.table.Routes(m)
		for i := range routes {
			routes[i].Handler = compose(routes[i].Handler, r.middlewares)
		}

		if r.defaults[m] != nil {
			r.defaults[m] = compose(r.defaults[m], r.middlewares)
		}
	}

	r.frozen = true

	return nil
}

// OnRequest routes the request. Matching routes are preferred over the default handler.
func (r *Router) OnRequest(request *http.Request, response *http.Response) error {
	if handler, match, found := r.table.Match(request.Method, request.Path); found {
		request.PathMatch = match
		handler(request, response)
		return nil
	}

	if int(request.Method) <= method.Count {
		if handler := r.defaults[request.Method]; handler != nil {
			request.PathMatch = nil
			handler(request, response)
			return nil
		}
	}

	return status.ErrNotFound
}

// OnError responds with the error's code and message.
func (r *Router) OnError(_ *http.Request, response *http.Response, err error) {
	response.Error(err)
}

// compose makes a single handler out of a chain of middlewares. The first middleware
// is the outermost one.
func compose(handler Handler, middlewares []Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = wrap(handler, middlewares[i])
	}

	return handler
}

func wrap(next Handler, mw Middleware) Handler {
	return func(request *http.Request, response *http.Response) {
		mw(next, request, response)
	}
}
