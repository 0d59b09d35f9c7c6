package dummy

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("no looping", func(t *testing.T) {
		client := NewStringClient("Hello", "world!")

		for _, piece := range []string{"Hello", "world!"} {
			got, err := client.Read()
			require.NoError(t, err)
			require.Equal(t, piece, string(got))
		}

		_, err := client.Read()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("looped pieces", func(t *testing.T) {
		pieces := []string{"Hello", "world", "!"}
		client := NewStringClient(pieces...).LoopReads()
		for i := 0; i < len(pieces)*2; i++ {
			data, err := client.Read()
			require.NoError(t, err)
			require.Equal(t, pieces[i%len(pieces)], string(data))
		}
	})

	t.Run("pushback", func(t *testing.T) {
		client := NewStringClient("Hello")
		data, err := client.Read()
		require.NoError(t, err)
		client.Pushback(data[2:])
		data, err = client.Read()
		require.NoError(t, err)
		require.Equal(t, "llo", string(data))
	})

	t.Run("failing writes", func(t *testing.T) {
		client := NewClient().FailWritesAfter(1)
		_, err := client.Write([]byte("a"))
		require.NoError(t, err)
		_, err = client.Write([]byte("b"))
		require.ErrorIs(t, err, ErrWriteFailed)
		require.Equal(t, "a", client.Written())
	})
}
