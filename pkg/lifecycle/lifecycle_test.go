package lifecycle_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/config"
	"github.com/arthur-debert/toolup/pkg/lifecycle"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
	"github.com/arthur-debert/toolup/pkg/testutil"
)

// testEnv wires a lifecycle environment against an in-memory world.
type testEnv struct {
	env *lifecycle.Env
	fs  *testutil.MemoryFS
	bld *testutil.FakeBuilder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll("/work", 0755))
	require.NoError(t, fsys.MkdirAll("/upstream", 0755))

	cfg := &config.Config{
		WorkingDir:  "/work",
		Home:        "/home/toolup",
		ManifestURI: "file:///upstream/manifest.json",
	}
	bld := &testutil.FakeBuilder{}
	// Simulate what the generated script does: create each guarded
	// artifact and leave the completion marker behind.
	bld.OnInstall = func(sysroot, scriptPath string) error {
		data, err := fsys.ReadFile(scriptPath)
		if err != nil {
			return err
		}
		var names []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, `if [ ! -e "${SYSROOT}/`) {
				rel := strings.TrimSuffix(strings.TrimPrefix(line, `if [ ! -e "${SYSROOT}/`), `" ]; then`)
				if err := fsys.WriteFile(filepath.Join(sysroot, rel), []byte("artifact"), 0755); err != nil {
					return err
				}
			}
			if strings.HasPrefix(line, `echo "`) {
				names = append(names, strings.TrimSuffix(strings.TrimPrefix(line, `echo "`), `" >> "${PROGRESS}"`))
			}
		}
		return fsys.WriteFile(filepath.Join(sysroot, paths.CompleteName), []byte(strings.Join(names, "\n")+"\n"), 0644)
	}

	return &testEnv{
		env: &lifecycle.Env{Config: cfg, FS: fsys, Builder: bld},
		fs:  fsys,
		bld: bld,
	}
}

func (te *testEnv) publishUpstream(t *testing.T, channels ...manifest.Channel) {
	t.Helper()
	m := manifest.New()
	for _, ch := range channels {
		m.AddChannel(ch)
	}
	require.NoError(t, m.Save(te.fs, "/upstream/manifest.json"))
}

func (te *testEnv) localManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := te.env.LocalManifest()
	require.NoError(t, err)
	return m
}

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	require.NoError(t, err)
	return v
}

func stableChannel(t *testing.T, version string, components ...manifest.Component) manifest.Channel {
	t.Helper()
	alias := manifest.Stable()
	return manifest.Channel{Name: mustVersion(t, version), Alias: &alias, Components: components}
}

func registryComponent(t *testing.T, name, version string) manifest.Component {
	t.Helper()
	return manifest.Component{
		Name:   name,
		Source: &manifest.Registry{Package: name, Version: mustVersion(t, version)},
	}
}

func (te *testEnv) readSnapshotFile(t *testing.T, version string) *manifest.Channel {
	t.Helper()
	data, err := te.fs.ReadFile(filepath.Join("/home/toolup/toolchains", version, paths.SnapshotName))
	require.NoError(t, err)
	var ch manifest.Channel
	require.NoError(t, json.Unmarshal(data, &ch))
	return &ch
}
