package inbuilt

import (
	"github.com/indigo-web/lantern/http/method"
)

func (r *Router) Get(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.GET, pattern, handler, middlewares...)
}

func (r *Router) Head(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.HEAD, pattern, handler, middlewares...)
}

func (r *Router) Post(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.POST, pattern, handler, middlewares...)
}

func (r *Router) Put(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.PUT, pattern, handler, middlewares...)
}

func (r *Router) Delete(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.DELETE, pattern, handler, middlewares...)
}

func (r *Router) Connect(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.CONNECT, pattern, handler, middlewares...)
}

func (r *Router) Options(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.OPTIONS, pattern, handler, middlewares...)
}

func (r *Router) Trace(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.TRACE, pattern, handler, middlewares...)
}

func (r *Router) Patch(pattern string, handler Handler, middlewares ...Middleware) *Router {
	return r.Route(method.PATCH, pattern, handler, middlewares...)
}
