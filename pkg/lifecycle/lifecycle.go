// Package lifecycle implements the channel lifecycle: install, update
// and uninstall, plus the small operations that maintain the toolup
// home around them.
package lifecycle

import (
	"path/filepath"

	"github.com/arthur-debert/toolup/pkg/builder"
	"github.com/arthur-debert/toolup/pkg/config"
	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/manifest"
	"github.com/arthur-debert/toolup/pkg/paths"
	"github.com/arthur-debert/toolup/pkg/types"
)

// Env bundles the collaborators every lifecycle operation needs.
type Env struct {
	Config  *config.Config
	FS      types.FS
	Builder builder.Builder
	Probes  manifest.RevisionProbe
}

// New wires an Env from a configuration with the real filesystem,
// builder and probes.
func New(cfg *config.Config, fsys types.FS) *Env {
	return &Env{
		Config:  cfg,
		FS:      fsys,
		Builder: builder.NewExec(),
		Probes:  builder.NewProbes(fsys),
	}
}

// Paths returns the home layout resolver.
func (e *Env) Paths() paths.Paths {
	return e.Config.Paths()
}

// EnsureHome creates the toolup home skeleton if it is missing.
func (e *Env) EnsureHome() error {
	p := e.Paths()
	for _, dir := range []string{p.Home(), p.BinDir(), p.ToolchainsDir()} {
		if err := e.FS.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
	}
	return nil
}

// UpstreamManifest loads the channel catalog the configuration points
// at.
func (e *Env) UpstreamManifest() (*manifest.Manifest, error) {
	return manifest.LoadFrom(e.FS, e.Config.ManifestURI)
}

// LocalManifest loads the record of installed channels. Nothing
// installed yet yields an empty manifest.
func (e *Env) LocalManifest() (*manifest.Manifest, error) {
	return manifest.LoadLocal(e.FS, e.Paths().LocalManifest())
}

// SaveLocalManifest persists the record of installed channels.
func (e *Env) SaveLocalManifest(m *manifest.Manifest) error {
	return m.Save(e.FS, e.Paths().LocalManifest())
}

// IsChannelComplete reports whether a sysroot carries the completion
// marker.
func (e *Env) IsChannelComplete(version string) bool {
	_, err := e.FS.Stat(e.Paths().CompleteMarker(version))
	return err == nil
}

// replaceSymlink points a symlink at target, replacing whatever was
// there.
func (e *Env) replaceSymlink(link, target string) error {
	if _, err := e.FS.Readlink(link); err == nil {
		if err := e.FS.Remove(link); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to remove old symlink %s", link)
		}
	}
	if err := e.FS.Symlink(target, link); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s to %s", link, target)
	}
	return nil
}

// removeSymlink drops a symlink if it exists.
func (e *Env) removeSymlink(link string) error {
	if _, err := e.FS.Readlink(link); err != nil {
		return nil
	}
	return e.FS.Remove(link)
}

// symlinkTargetName returns the basename of a symlink's target, or
// empty when the link does not exist.
func (e *Env) symlinkTargetName(link string) string {
	target, err := e.FS.Readlink(link)
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}
