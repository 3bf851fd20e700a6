package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.NotEmpty(t, Commit())
	require.NotEmpty(t, Buildstamp())
	require.Contains(t, UserAgent(), homepage)
}
