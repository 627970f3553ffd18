package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/toolup/pkg/config"
)

func TestLoadDefaults(t *testing.T) {
	// Setenv registers the restore, Unsetenv makes sure the variable
	// is genuinely absent rather than empty.
	for _, name := range []string{"TOOLUP_HOME", "TOOLUP_MANIFEST_URI", "TOOLUP_DEBUG"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.WorkingDir)
	assert.Contains(t, cfg.Home, "toolup")
	assert.Equal(t, config.DefaultManifestURI, cfg.ManifestURI)
	assert.False(t, cfg.Debug)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TOOLUP_HOME", "/custom/toolup")
	t.Setenv("TOOLUP_MANIFEST_URI", "file:///tmp/manifest.json")
	t.Setenv("TOOLUP_DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/custom/toolup", cfg.Home)
	assert.Equal(t, "file:///tmp/manifest.json", cfg.ManifestURI)
	assert.True(t, cfg.Debug)
}

func TestPathsRootedAtHome(t *testing.T) {
	cfg := &config.Config{Home: "/custom/toolup"}
	p := cfg.Paths()
	assert.Equal(t, "/custom/toolup", p.Home())
	assert.Equal(t, "/custom/toolup/toolchains", p.ToolchainsDir())
}
