package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/testutil"
)

func TestInstallStableChannel(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0",
		registryComponent(t, "vm", "1.0.0"),
		registryComponent(t, "compiler", "1.0.0"),
	))

	warnings, err := te.env.Install(manifest.ParseUserChannel("stable"), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Sysroot layout plus lifecycle files.
	for _, path := range []string{
		"/home/toolup/toolchains/0.15.0/bin",
		"/home/toolup/toolchains/0.15.0/lib",
		"/home/toolup/toolchains/0.15.0/opt",
		"/home/toolup/toolchains/0.15.0/var",
		"/home/toolup/toolchains/0.15.0/install.sh",
		"/home/toolup/toolchains/0.15.0/.installed_channel.json",
		"/home/toolup/toolchains/0.15.0/installation-successful",
		"/home/toolup/toolchains/0.15.0/bin/vm",
	} {
		assert.True(t, te.fs.Exists(path), "missing %s", path)
	}

	// The stable pointer aims at the new sysroot.
	target, err := te.fs.Readlink("/home/toolup/toolchains/stable")
	require.NoError(t, err)
	assert.Equal(t, "/home/toolup/toolchains/0.15.0", target)

	// The local manifest records the channel with the stable alias.
	local := te.localManifest(t)
	require.Len(t, local.Channels, 1)
	assert.True(t, local.Channels[0].IsStable())
	assert.Len(t, te.bld.Installs, 1)
}

func TestInstallFailsFastWhenComplete(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))

	_, err := te.env.Install(manifest.ParseUserChannel("0.15.0"), nil)
	require.NoError(t, err)

	_, err = te.env.Install(manifest.ParseUserChannel("0.15.0"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyInstalled))
	assert.Len(t, te.bld.Installs, 1, "no second build may run")
}

func TestInstallUnknownChannel(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t, stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))

	_, err := te.env.Install(manifest.ParseUserChannel("9.9.9"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrChannelNotFound))
}

func TestInstallComponentSubset(t *testing.T) {
	te := newTestEnv(t)
	stdlib := registryComponent(t, "stdlib", "1.0.0")
	vm := registryComponent(t, "vm", "1.0.0")
	vm.Requires = []string{"stdlib"}
	te.publishUpstream(t, stableChannel(t, "0.15.0", stdlib, vm, registryComponent(t, "compiler", "1.0.0")))

	warnings, err := te.env.Install(manifest.ParseUserChannel("0.15.0"), []string{"vm", "ghost"})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "ghost")

	snapshot := te.readSnapshotFile(t, "0.15.0")
	assert.NotNil(t, snapshot.Component("vm"))
	assert.NotNil(t, snapshot.Component("stdlib"))
	assert.Nil(t, snapshot.Component("compiler"))
	assert.True(t, snapshot.IsPartial())

	local := te.localManifest(t)
	require.Len(t, local.Channels, 1)
	assert.True(t, local.Channels[0].IsPartial())
}

func TestInstallNonLatestStableGetsNoPointer(t *testing.T) {
	te := newTestEnv(t)
	te.publishUpstream(t,
		stableChannel(t, "0.14.0", registryComponent(t, "vm", "1.0.0")),
		stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.1.0")),
	)

	_, err := te.env.Install(manifest.ParseUserChannel("0.14.0"), nil)
	require.NoError(t, err)

	assert.False(t, te.fs.Exists("/home/toolup/toolchains/stable"))
	local := te.localManifest(t)
	assert.False(t, local.Channels[0].IsStable(), "only the latest stable keeps the alias locally")
}

func TestInstallRecordsBranchTips(t *testing.T) {
	te := newTestEnv(t)
	te.env.Probes = &testutil.FakeProbe{Revisions: map[string]string{"https://example.com/vm.git main": "abc123"}}

	ch := stableChannel(t, "0.15.0", manifest.Component{
		Name:   "vm",
		Source: &manifest.Git{RepositoryURL: "https://example.com/vm.git", CrateName: "vm-cli", Target: &manifest.Branch{Name: "main"}},
	})
	te.publishUpstream(t, ch)

	_, err := te.env.Install(manifest.ParseUserChannel("stable"), nil)
	require.NoError(t, err)

	snapshot := te.readSnapshotFile(t, "0.15.0")
	git := snapshot.Component("vm").Source.(*manifest.Git)
	branch := git.Target.(*manifest.Branch)
	require.NotNil(t, branch.LatestRevision)
	assert.Equal(t, "abc123", *branch.LatestRevision)
}

func TestInstallRunsInitializationOnce(t *testing.T) {
	te := newTestEnv(t)
	vm := registryComponent(t, "vm", "1.0.0")
	vm.Initialization = []string{"setup", "--quiet"}
	te.publishUpstream(t, stableChannel(t, "0.15.0", vm))

	warnings, err := te.env.Install(manifest.ParseUserChannel("stable"), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, te.bld.Runs, 1)
	assert.Contains(t, te.bld.Runs[0], "/home/toolup/toolchains/0.15.0/bin/vm")
	assert.Contains(t, te.bld.Runs[0], "setup")

	local := te.localManifest(t)
	assert.True(t, local.Channels[0].Component("vm").Initialized)
}

func TestInstallInitializationFailureIsSwallowed(t *testing.T) {
	te := newTestEnv(t)
	te.bld.RunErr = assert.AnError
	vm := registryComponent(t, "vm", "1.0.0")
	vm.Initialization = []string{"setup"}
	te.publishUpstream(t, stableChannel(t, "0.15.0", vm))

	warnings, err := te.env.Install(manifest.ParseUserChannel("stable"), nil)
	require.NoError(t, err, "initialization failures never fail the install")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "vm")

	local := te.localManifest(t)
	assert.False(t, local.Channels[0].Component("vm").Initialized)
}

func TestInstallBuildFailureLeavesNoCompleteMarker(t *testing.T) {
	te := newTestEnv(t)
	te.bld.InstallErr = assert.AnError
	te.publishUpstream(t, stableChannel(t, "0.15.0", registryComponent(t, "vm", "1.0.0")))

	_, err := te.env.Install(manifest.ParseUserChannel("stable"), nil)
	require.Error(t, err)

	assert.False(t, te.fs.Exists("/home/toolup/toolchains/0.15.0/installation-successful"))
	// The snapshot survives for recovery.
	assert.True(t, te.fs.Exists("/home/toolup/toolchains/0.15.0/.installed_channel.json"))
	// Nothing was recorded as installed.
	local := te.localManifest(t)
	assert.Empty(t, local.Channels)
}
