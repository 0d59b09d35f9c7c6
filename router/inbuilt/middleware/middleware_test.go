package middleware

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern/http"
	"github.com/indigo-web/lantern/http/method"
	"github.com/indigo-web/lantern/http/status"
	"github.com/indigo-web/lantern/kv"
	"github.com/stretchr/testify/require"
)

type sink struct {
	data   []byte
	endErr error
}

func (s *sink) Flush(data []byte, cb func(error)) {
	s.data = append(s.data, data...)
	cb(nil)
}

func (s *sink) End(data []byte, err error) {
	s.endErr = err
	s.data = append(s.data, data...)
}

func newExchange() (*http.Request, *http.Response, *sink) {
	s := new(sink)
	request := http.NewRequest(kv.New(), nil)
	request.Method = method.GET
	request.Path = "/"

	return request, http.NewResponse(s), s
}

func TestRecover(t *testing.T) {
	t.Run("panic", func(t *testing.T) {
		request, response, s := newExchange()
		Recover(func(*http.Request, *http.Response) {
			panic("oops")
		}, request, response)

		require.Equal(t, status.InternalServerError, response.Code())
		require.Contains(t, string(s.data), "HTTP/1.1 500 Internal Server Error\r\n")
	})

	t.Run("panic after the response ended", func(t *testing.T) {
		request, response, s := newExchange()
		Recover(func(_ *http.Request, response *http.Response) {
			response.String(status.OK, "fine")
			panic("oops")
		}, request, response)

		require.Equal(t, status.OK, response.Code())
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nfine", string(s.data))
	})

	t.Run("panic after head", func(t *testing.T) {
		request, response, s := newExchange()
		Recover(func(_ *http.Request, response *http.Response) {
			response.Head(status.OK, 10)
			_, _ = response.Write([]byte("abc"))
			panic("oops")
		}, request, response)

		require.True(t, response.Ended())
		require.Error(t, s.endErr)
		require.Empty(t, s.data)
	})

	t.Run("panic after flush", func(t *testing.T) {
		request, response, s := newExchange()
		Recover(func(_ *http.Request, response *http.Response) {
			response.Head(status.OK, 10)
			_, _ = response.Write([]byte("abc"))
			response.Flush(func(error) {})
			panic("oops")
		}, request, response)

		require.Error(t, s.endErr)
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc", string(s.data))
	})
}

func TestLogRequests(t *testing.T) {
	var out bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &out, Level: hclog.Info})
	mw := LogRequests(logger)

	request, response, _ := newExchange()
	request.Path = "/hello"
	mw(func(_ *http.Request, response *http.Response) {
		response.String(status.Teapot, "")
	}, request, response)
	require.Contains(t, out.String(), "path=/hello")
	require.Contains(t, out.String(), "code=418")

	out.Reset()
	request, response, _ = newExchange()
	mw(func(*http.Request, *http.Response) {}, request, response)
	require.Contains(t, out.String(), "pending=true")
}

func TestRateLimit(t *testing.T) {
	mw := RateLimit(0, 2)
	calls := 0
	handler := func(_ *http.Request, response *http.Response) {
		calls++
		response.String(status.OK, "")
	}

	for i := 0; i < 2; i++ {
		request, response, _ := newExchange()
		mw(handler, request, response)
		require.Equal(t, status.OK, response.Code())
	}

	request, response, _ := newExchange()
	mw(handler, request, response)
	require.Equal(t, status.TooManyRequests, response.Code())
	require.Equal(t, 2, calls)
}
