package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	orig := version
	t.Cleanup(func() { version = orig })

	Set("")
	require.Equal(t, orig, version)
	Set("v1.2.3")
	require.NotEmpty(t, Version())
	require.Equal(t, "v1.2.3", version)
}
