package http

import (
	"errors"
	"testing"

	"github.com/indigo-web/lantern/http/status"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	flushed [][]byte
	ended   []byte
	endErr  error
	ends    int
}

func (r *recordingSink) Flush(data []byte, cb func(error)) {
	r.flushed = append(r.flushed, data)
	cb(nil)
}

func (r *recordingSink) End(data []byte, err error) {
	r.ends++
	r.ended, r.endErr = data, err
}

func TestResponse(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		require.True(t, resp.String(status.OK, "hello"))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello", string(sink.ended))
		require.Equal(t, status.OK, resp.Code())
		require.True(t, resp.Ended())
	})

	t.Run("end only once", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		require.True(t, resp.End())
		require.False(t, resp.End())
		require.False(t, resp.Abort(errors.New("late")))
		require.Equal(t, 1, sink.ends)
		require.NoError(t, sink.endErr)
	})

	t.Run("abort", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.Head(status.OK, 10)
		require.True(t, resp.Abort(nil))
		require.Empty(t, sink.ended)
		require.ErrorIs(t, sink.endErr, ErrResponseEnded)
		require.False(t, resp.End())
	})

	t.Run("flush then end", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.Head(status.OK, 6)
		_, err := resp.Write([]byte("abc"))
		require.NoError(t, err)

		var flushErr error
		called := false
		resp.Flush(func(err error) {
			called, flushErr = true, err
		})
		require.True(t, called)
		require.NoError(t, flushErr)
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 6\r\n\r\nabc", string(sink.flushed[0]))

		_, err = resp.Write([]byte("def"))
		require.NoError(t, err)
		resp.End()
		require.Equal(t, "def", string(sink.ended))

		_, err = resp.Write([]byte("x"))
		require.ErrorIs(t, err, ErrResponseEnded)
	})

	t.Run("flush after end", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.End()

		var flushErr error
		resp.Flush(func(err error) {
			flushErr = err
		})
		require.ErrorIs(t, flushErr, ErrResponseEnded)
		require.Empty(t, sink.flushed)
		require.Equal(t, 1, sink.ends)
	})

	t.Run("fail before head", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		require.True(t, resp.Fail(errors.New("boom")))
		require.Equal(t, status.InternalServerError, resp.Code())
		require.NoError(t, sink.endErr)
		require.Equal(t,
			"HTTP/1.1 500 Internal Server Error\r\nContent-Length: 21\r\n\r\ninternal server error",
			string(sink.ended),
		)
	})

	t.Run("fail after head", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.Head(status.OK, 10)
		_, err := resp.Write([]byte("abc"))
		require.NoError(t, err)

		boom := errors.New("boom")
		require.True(t, resp.Fail(boom))
		require.ErrorIs(t, sink.endErr, boom)
		require.Empty(t, sink.ended)
		require.Equal(t, 1, sink.ends)
	})

	t.Run("error", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.Error(status.ErrNotFound)
		require.Equal(t, "HTTP/1.1 404 Not Found\r\nContent-Length: 9\r\n\r\nnot found", string(sink.ended))

		sink = new(recordingSink)
		resp = NewResponse(sink)
		resp.Error(errors.New("boom"))
		require.Equal(t, status.InternalServerError, resp.Code())
	})

	t.Run("json", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.JSON(status.OK, map[string]int{"a": 1})
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 7\r\n\r\n{\"a\":1}", string(sink.ended))
	})

	t.Run("reset", func(t *testing.T) {
		sink := new(recordingSink)
		resp := NewResponse(sink)
		resp.String(status.OK, "first")
		resp.Reset()
		require.False(t, resp.Ended())
		require.Zero(t, resp.Code())
		resp.String(status.Created, "")
		require.Equal(t, "HTTP/1.1 201 Created\r\nContent-Length: 0\r\n\r\n", string(sink.ended))
	})
}
