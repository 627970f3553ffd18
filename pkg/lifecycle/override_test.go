package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
)

func TestSetDefaultToVersion(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))
	_, err := te.env.Install(manifest.ParseUserChannel("0.15.0"), nil)
	require.NoError(t, err)

	require.NoError(t, te.env.SetDefault(manifest.ParseUserChannel("0.15.0")))

	target, err := te.fs.Readlink("/home/toolup/toolchains/default")
	require.NoError(t, err)
	assert.Equal(t, "/home/toolup/toolchains/0.15.0", target)
}

func TestSetDefaultStableTracksThePointer(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))
	_, err := te.env.Install(manifest.ParseUserChannel("stable"), nil)
	require.NoError(t, err)

	require.NoError(t, te.env.SetDefault(manifest.ParseUserChannel("stable")))

	// The default aims at the stable pointer itself, not its current
	// target, so it follows stable across updates.
	target, err := te.fs.Readlink("/home/toolup/toolchains/default")
	require.NoError(t, err)
	assert.Equal(t, "/home/toolup/toolchains/stable", target)
}

func TestSetDefaultReplacesPrevious(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t,
		stableChannel(t, "0.14.0", registryComponent(t, "vm", "0.9.0")),
		stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")),
	)
	_, err := te.env.Install(manifest.ParseUserChannel("0.14.0"), nil)
	require.NoError(t, err)
	_, err = te.env.Install(manifest.ParseUserChannel("0.15.0"), nil)
	require.NoError(t, err)

	require.NoError(t, te.env.SetDefault(manifest.ParseUserChannel("0.14.0")))
	require.NoError(t, te.env.SetDefault(manifest.ParseUserChannel("0.15.0")))

	target, err := te.fs.Readlink("/home/toolup/toolchains/default")
	require.NoError(t, err)
	assert.Equal(t, "/home/toolup/toolchains/0.15.0", target)
}

func TestSetDefaultNotInstalled(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))

	err := te.env.SetDefault(manifest.ParseUserChannel("0.15.0"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInstalled))
}
