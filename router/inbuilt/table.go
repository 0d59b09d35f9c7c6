package inbuilt

import (
	"fmt"
	"regexp"

	"github.com/indigo-web/lantern/http/method"
)

// Route binds a handler to a method and a path pattern.
type Route struct {
	Method  method.Method
	Pattern *regexp.Regexp
	Handler Handler
}

// Table is an ordered collection of routes. Routes are looked up in the order they were
// registered, the first matching one wins. Duplicates are kept as they are, so a broad
// pattern registered early shadows everything that comes after it.
type Table struct {
	routes [method.Count + 1][]Route
}

func NewTable() *Table {
	return new(Table)
}

// Register compiles the pattern and appends the route. The pattern must match the whole
// path, so it's implicitly anchored on both sides. Capture groups keep their numbering.
func (t *Table) Register(m method.Method, pattern string, handler Handler) error {
	if m == method.Unknown || int(m) > method.Count {
		return fmt.Errorf("register %q: unsupported method", pattern)
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return fmt.Errorf("register %q: %w", pattern, err)
	}

	t.routes[m] = append(t.routes[m], Route{
		Method:  m,
		Pattern: re,
		Handler: handler,
	})

	return nil
}

// Match returns the handler of the first route whose pattern matches the path, along with
// the captures. The first capture is always the whole path.
func (t *Table) Match(m method.Method, path string) (Handler, []string, bool) {
	if int(m) > method.Count {
		return nil, nil, false
	}

	for _, route := range t.routes[m] {
		if match := route.Pattern.FindStringSubmatch(path); match != nil {
			return route.Handler, match, true
		}
	}

	return nil, nil, false
}

// Routes returns all the routes registered for the method, in registration order.
func (t *Table) Routes(m method.Method) []Route {
	if int(m) > method.Count {
		return nil
	}

	return t.routes[m]
}

// Len returns the total number of registered routes.
func (t *Table) Len() (n int) {
	for _, routes := range t.routes {
		n += len(routes)
	}

	return n
}
