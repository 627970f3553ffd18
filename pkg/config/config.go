// Package config assembles toolup's runtime configuration from
// defaults and TOOLUP_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/toolup/pkg/paths"
)

// DefaultManifestURI is the published channel catalog.
const DefaultManifestURI = "https://arthur-debert.github.io/toolup/channel-manifest.json"

// Config holds everything the commands need to know about their
// environment.
type Config struct {
	// WorkingDir is where toolup was invoked, the starting point for
	// project toolchain file lookup.
	WorkingDir string `koanf:"-"`

	// Home is the toolup state directory holding sysroots, pointers
	// and the local manifest.
	Home string `koanf:"home"`

	// ManifestURI is where the upstream channel catalog lives.
	ManifestURI string `koanf:"manifest_uri"`

	Debug bool `koanf:"debug"`
}

// Load builds the configuration. Defaults put the home under the XDG
// data directory and point at the published manifest; TOOLUP_HOME,
// TOOLUP_MANIFEST_URI and TOOLUP_DEBUG override them.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"home":         filepath.Join(xdg.DataHome, "toolup"),
		"manifest_uri": DefaultManifestURI,
		"debug":        false,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	err := k.Load(env.Provider("TOOLUP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TOOLUP_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.WorkingDir = wd
	return cfg, nil
}

// Paths returns the path resolver for this configuration's home.
func (c *Config) Paths() paths.Paths {
	return paths.New(c.Home)
}
