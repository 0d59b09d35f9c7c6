package inbuilt

import (
	"testing"

	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/method"
	"github.com/stretchr/testify/require"
)

func marker(id *int, value int) Handler {
	return func(*http.Request, *http.Response) {
		*id = value
	}
}

func TestTable(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		var called int
		table := NewTable()
		require.NoError(t, table.Register(method.GET, "/match/([0-9]+)", marker(&called, 1)))
		require.NoError(t, table.Register(method.GET, "/match/(.*)", marker(&called, 2)))
		require.NoError(t, table.Register(method.GET, "/match/([0-9]+)", marker(&called, 3)))

		handler, match, found := table.Match(method.GET, "/match/123")
		require.True(t, found)
		handler(nil, nil)
		require.Equal(t, 1, called)
		require.Equal(t, []string{"/match/123", "123"}, match)

		handler, match, found = table.Match(method.GET, "/match/abc")
		require.True(t, found)
		handler(nil, nil)
		require.Equal(t, 2, called)
		require.Equal(t, []string{"/match/abc", "abc"}, match)
		require.Equal(t, 3, table.Len())
	})

	t.Run("full match only", func(t *testing.T) {
		table := NewTable()
		require.NoError(t, table.Register(method.GET, "/string", func(*http.Request, *http.Response) {}))

		for _, path := range []string{"/string/", "/strings", "/api/string", ""} {
			_, _, found := table.Match(method.GET, path)
			require.False(t, found, path)
		}

		_, _, found := table.Match(method.GET, "/string")
		require.True(t, found)
	})

	t.Run("alternation is anchored as a whole", func(t *testing.T) {
		table := NewTable()
		require.NoError(t, table.Register(method.GET, "/a|/b", func(*http.Request, *http.Response) {}))

		_, _, found := table.Match(method.GET, "/a/tail")
		require.False(t, found)
		_, _, found = table.Match(method.GET, "/b")
		require.True(t, found)
	})

	t.Run("explicit anchors are harmless", func(t *testing.T) {
		table := NewTable()
		require.NoError(t, table.Register(method.GET, "^/x$", func(*http.Request, *http.Response) {}))
		_, _, found := table.Match(method.GET, "/x")
		require.True(t, found)
	})

	t.Run("method mismatch", func(t *testing.T) {
		table := NewTable()
		require.NoError(t, table.Register(method.POST, "/string", func(*http.Request, *http.Response) {}))
		_, _, found := table.Match(method.GET, "/string")
		require.False(t, found)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		table := NewTable()
		require.Error(t, table.Register(method.GET, "/(unclosed", nil))
		require.Error(t, table.Register(method.Unknown, "/", nil))
		require.Zero(t, table.Len())
	})
}
