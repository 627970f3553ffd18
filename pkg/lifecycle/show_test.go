package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/toolchain"
)

func TestActiveToolchainFallsBackToBuiltin(t *testing.T) {
	te := newTestEnv(t)

	tc, source, err := te.env.ActiveToolchain()
	require.NoError(t, err)
	assert.Equal(t, toolchain.SourceBuiltin, source)
	assert.Equal(t, manifest.UserStable, tc.Channel.Kind)
}

func TestListInstalled(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0",
		registryComponent(t, "stdlib", "1.0.0"),
		registryComponent(t, "vm", "1.0.0"),
	))
	_, err := te.env.Install(manifest.ParseUserChannel("stable"), []string{"vm"})
	require.NoError(t, err)

	rows, err := te.env.ListInstalled()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.15.0", rows[0].Name)
	assert.Equal(t, "stable", rows[0].Alias)
	assert.True(t, rows[0].Complete)
	assert.True(t, rows[0].Partial)

	// A missing completion marker shows up as incomplete.
	require.NoError(t, te.fs.Remove("/home/toolup/toolchains/0.15.0/installation-successful"))
	rows, err = te.env.ListInstalled()
	require.NoError(t, err)
	assert.False(t, rows[0].Complete)
}
