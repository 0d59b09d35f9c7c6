package status

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	require.Equal(t, Status("OK"), Text(OK))
	require.Equal(t, Status("Bad Request"), Text(BadRequest))
	require.Equal(t, Status("Unknown Status Code"), Text(299))
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, NotFound, CodeOf(ErrNotFound))
	require.Equal(t, BadRequest, CodeOf(fmt.Errorf("parse: %w", ErrBadHeader)))
	require.Equal(t, InternalServerError, CodeOf(fmt.Errorf("something else")))
}
