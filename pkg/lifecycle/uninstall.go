package lifecycle

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
	"github.com/arthur-debert/toolup/pkg/manifest"
)

// Uninstall removes an installed channel: its executables are
// unregistered through the builder, its libraries deleted, and the
// sysroot itself is removed last so a crash leaves evidence of what
// was going on.
func (e *Env) Uninstall(selection manifest.UserChannel) ([]string, error) {
	logger := logging.GetLogger("uninstall")
	var warnings []string

	local, err := e.LocalManifest()
	if err != nil {
		return nil, err
	}
	installed := local.Channel(selection)
	if installed == nil {
		return nil, errors.Newf(errors.ErrNotInstalled, "channel %s is not installed", selection)
	}

	version := installed.Name.String()
	p := e.Paths()
	sysroot := p.ChannelDir(version)

	snapshot, err := e.readSnapshot(version)
	if err != nil {
		// Without a snapshot the sysroot contents are unknown, so
		// fall back to removing the tree wholesale.
		warnings = append(warnings, fmt.Sprintf("channel %s has no usable snapshot, removing its directory as-is: %v", version, err))
		snapshot = installed
	}

	// Only components the install script actually recorded get the
	// per-component treatment; a crashed install may have built a
	// fraction of the snapshot. No record at all means the sysroot is
	// in an unknown state and goes wholesale.
	completed, found := e.consumeInstallLog(version)
	if !found {
		warnings = append(warnings, fmt.Sprintf("channel %s has no install record, skipping per-component cleanup", version))
	}
	for _, name := range completed {
		comp := snapshot.Component(name)
		if comp == nil {
			warnings = append(warnings, fmt.Sprintf("install record of %s names %q but its snapshot does not, skipping it", version, name))
			continue
		}
		installedFile := comp.InstalledFile()
		if installedFile.Library {
			libPath := filepath.Join(p.ChannelLibDir(version), installedFile.Name)
			if err := e.FS.Remove(libPath); err != nil {
				logger.Debug().Err(err).Str("path", libPath).Msg("library already gone")
			}
			continue
		}
		if err := e.Builder.UninstallExecutable(comp.PackageName(), sysroot); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not cleanly unregister %q, its files go with the sysroot: %v", comp.Name, err))
		}
	}

	if e.symlinkTargetName(p.StablePointer()) == version {
		if err := e.removeSymlink(p.StablePointer()); err != nil {
			return warnings, errors.Wrapf(err, errors.ErrUninstallFailed, "failed to remove stable pointer")
		}
	}
	if e.symlinkTargetName(p.DefaultPointer()) == version {
		if err := e.removeSymlink(p.DefaultPointer()); err != nil {
			return warnings, errors.Wrapf(err, errors.ErrUninstallFailed, "failed to remove default pointer")
		}
	}

	local.RemoveChannel(installed.Name)
	if err := e.SaveLocalManifest(local); err != nil {
		return warnings, err
	}

	// The sysroot goes last. Everything above is re-runnable if this
	// fails.
	if err := e.FS.RemoveAll(sysroot); err != nil {
		return warnings, errors.Wrapf(err, errors.ErrUninstallFailed, "failed to remove sysroot %s", sysroot)
	}

	logger.Info().Str("channel", version).Msg("channel uninstalled")
	return warnings, nil
}

// consumeInstallLog returns the component names the install script
// recorded, from the completion marker of a finished install or the
// progress log of an interrupted one. The file is deleted once read,
// so a retried uninstall after a partial failure falls through to
// wholesale directory removal.
func (e *Env) consumeInstallLog(version string) ([]string, bool) {
	logger := logging.GetLogger("uninstall")
	p := e.Paths()
	for _, path := range []string{p.CompleteMarker(version), p.ProgressFile(version)} {
		data, err := e.FS.ReadFile(path)
		if err != nil {
			continue
		}
		if err := e.FS.Remove(path); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("could not delete install record")
		}
		var names []string
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				names = append(names, line)
			}
		}
		return names, true
	}
	return nil, false
}

// readSnapshot loads the installed-channel record from a sysroot.
func (e *Env) readSnapshot(version string) (*manifest.Channel, error) {
	path := e.Paths().Snapshot(version)
	data, err := e.FS.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSnapshotMissing, "no snapshot at %s", path)
	}
	var ch manifest.Channel
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSnapshotInvalid, "snapshot at %s is malformed", path)
	}
	return &ch, nil
}
