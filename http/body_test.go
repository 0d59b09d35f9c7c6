package http

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type sliceRetriever struct {
	pieces []string
	err    error
}

func (s *sliceRetriever) Retrieve() ([]byte, error) {
	if len(s.pieces) == 0 {
		if s.err != nil {
			return nil, s.err
		}

		return nil, io.EOF
	}

	piece := s.pieces[0]
	s.pieces = s.pieces[1:]

	return []byte(piece), nil
}

func newBody(pieces ...string) *Body {
	return NewBody(&sliceRetriever{pieces: pieces})
}

func TestBody(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		body := newBody("Hello, ", "world")
		data, err := body.Bytes()
		require.NoError(t, err)
		require.Equal(t, "Hello, world", string(data))

		// idempotent
		str, err := body.String()
		require.NoError(t, err)
		require.Equal(t, "Hello, world", str)
	})

	t.Run("read", func(t *testing.T) {
		body := newBody("Hello, ", "world")
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, "Hello, world", string(data))
	})

	t.Run("read in small portions", func(t *testing.T) {
		body := newBody("Hello", "world")
		buff := make([]byte, 3)
		var result []byte
		for {
			n, err := body.Read(buff)
			result = append(result, buff[:n]...)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}
		require.Equal(t, "Helloworld", string(result))
	})

	t.Run("error", func(t *testing.T) {
		someErr := errors.New("some error")
		body := NewBody(&sliceRetriever{pieces: []string{"a"}, err: someErr})
		_, err := body.Bytes()
		require.ErrorIs(t, err, someErr)
		require.ErrorIs(t, body.Discard(), someErr)
	})

	t.Run("json", func(t *testing.T) {
		var model struct {
			FirstName string `json:"firstName"`
		}
		body := newBody(`{"firstName":`, `"John"}`)
		require.NoError(t, body.JSON(&model))
		require.Equal(t, "John", model.FirstName)
	})

	t.Run("malformed json", func(t *testing.T) {
		var model struct{}
		require.Error(t, newBody(`{"firstName"`).JSON(&model))
		require.Error(t, newBody().JSON(&model))
	})

	t.Run("discard and init", func(t *testing.T) {
		body := newBody("a", "b")
		require.NoError(t, body.Discard())
		body.Init(&sliceRetriever{pieces: []string{"c"}})
		data, err := body.Bytes()
		require.NoError(t, err)
		require.Equal(t, "c", string(data))
	})
}

func TestBodyReadAfterBytes(t *testing.T) {
	body := newBody("Hello, ", "world")
	_, err := body.Bytes()
	require.NoError(t, err)

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "Hello, world", string(data))
}
