package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "0.0.0.0:8080", Normalize(":8080"))
	require.Equal(t, "localhost:8080", Normalize("localhost:8080"))
}

func TestIsLocalhost(t *testing.T) {
	for _, addr := range []string{"localhost:443", "LOCALHOST", "127.0.0.1:8443", "[::1]:443", "0.0.0.0:80"} {
		require.True(t, IsLocalhost(addr), addr)
	}

	for _, addr := range []string{"example.com:443", "192.168.1.5:80", "example.com"} {
		require.False(t, IsLocalhost(addr), addr)
	}
}
