package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	for _, method := range List {
		assert.Equal(t, method, Parse(method.String()))
	}
}

func TestParseUnknown(t *testing.T) {
	for _, token := range []string{"", "get", "BREW", "PROPFIND", "GE"} {
		require.Equal(t, Unknown, Parse(token), token)
	}

	require.Equal(t, "UNKNOWN", Method(200).String())
}
