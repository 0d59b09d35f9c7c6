package inbuilt

import (
	"github.com/indigo-web/lantern/http/method"
	"github.com/indigo-web/lantern/static"
)

// DefaultIndex is the file served for requests to directories.
const DefaultIndex = "index.html"

// Static serves files from root for every GET request no route matched. It panics if the
// root doesn't exist or isn't a directory.
func (r *Router) Static(root string, opts ...static.Option) *Router {
	return r.StaticIndex(root, DefaultIndex, opts...)
}

// StaticIndex is Static with a custom directory index file name.
func (r *Router) StaticIndex(root, index string, opts ...static.Option) *Router {
	resolver, err := static.NewResolver(root, index)
	if err != nil {
		panic(err)
	}

	return r.Default(method.GET, static.Handler(resolver, opts...))
}
